package database

import (
	"database/sql"
	"fmt"

	"bankledger/internal/models"
)

func (t *Tx) FindOrCreateCategory(name string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(`SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("query category: %w", err)
	}

	result, err := t.tx.Exec(`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			if err := t.tx.QueryRow(`SELECT id FROM categories WHERE name = ?`, name).Scan(&id); err != nil {
				return 0, fmt.Errorf("re-query category: %w", err)
			}
			return id, nil
		}
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) FindOrCreateCategoryByName(name string) (int64, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("query category: %w", err)
	}

	result, err := db.Exec(`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) ListCategories() ([]models.Category, error) {
	rows, err := db.Query(`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
