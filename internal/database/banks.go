package database

import (
	"database/sql"
	"fmt"

	"bankledger/internal/models"
)

// FindOrCreateBank resolves a bank by its normalized name key, inserting
// it if unseen. "BCC" and "BC C" resolve to the same row; the stored name
// keeps the spacing of whichever spelling arrived first.
func (t *Tx) FindOrCreateBank(name string) (int64, error) {
	key := models.NormalizeBankKey(name)

	var id int64
	err := t.tx.QueryRow(`SELECT id FROM banks WHERE name_key = ?`, key).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("query bank: %w", err)
	}

	result, err := t.tx.Exec(`
		INSERT INTO banks (name, name_key) VALUES (?, ?)
	`, name, key)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with another insert; the row exists now.
			if err := t.tx.QueryRow(`SELECT id FROM banks WHERE name_key = ?`, key).Scan(&id); err != nil {
				return 0, fmt.Errorf("re-query bank: %w", err)
			}
			return id, nil
		}
		return 0, fmt.Errorf("insert bank: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) ListBanks() ([]models.Bank, error) {
	rows, err := db.Query(`
		SELECT id, name, created_at
		FROM banks
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query banks: %w", err)
	}
	defer rows.Close()

	var banks []models.Bank
	for rows.Next() {
		var b models.Bank
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}
