package database

import (
	"database/sql"
	"fmt"

	"bankledger/internal/models"
)

// MerchantIDByName looks a merchant up by its exact name. Returns
// (0, false, nil) when no such merchant exists.
func (t *Tx) MerchantIDByName(name string) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRow(`SELECT id FROM merchants WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query merchant: %w", err)
	}
	return id, true, nil
}

// CreateMerchant inserts a new merchant with its enrichment fields already
// resolved. On a name collision the existing row wins and its id is returned.
func (t *Tx) CreateMerchant(m models.Merchant) (int64, error) {
	result, err := t.tx.Exec(`
		INSERT INTO merchants (name, mcc_code, category_id, needs_categorization, country_code, city)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.Name, m.MCCCode, m.CategoryID, m.NeedsCategorization, m.CountryCode, m.City)
	if err != nil {
		if isUniqueViolation(err) {
			var id int64
			if err := t.tx.QueryRow(`SELECT id FROM merchants WHERE name = ?`, m.Name).Scan(&id); err != nil {
				return 0, fmt.Errorf("re-query merchant: %w", err)
			}
			return id, nil
		}
		return 0, fmt.Errorf("insert merchant: %w", err)
	}
	return result.LastInsertId()
}

// ListMerchantsNeedingCategorization returns merchants the automatic
// categorizer could not place, oldest first.
func (db *DB) ListMerchantsNeedingCategorization() ([]models.Merchant, error) {
	rows, err := db.Query(`
		SELECT id, name, mcc_code, category_id, needs_categorization, country_code, city, created_at
		FROM merchants
		WHERE needs_categorization = 1
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query merchants: %w", err)
	}
	defer rows.Close()

	var merchants []models.Merchant
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		merchants = append(merchants, m)
	}
	return merchants, rows.Err()
}

// SetMerchantCategory assigns a category to a merchant and clears its
// needs-categorization flag.
func (db *DB) SetMerchantCategory(merchantID, categoryID int64) error {
	result, err := db.Exec(`
		UPDATE merchants SET category_id = ?, needs_categorization = 0 WHERE id = ?
	`, categoryID, merchantID)
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("merchant %d not found", merchantID)
	}
	return nil
}

func (db *DB) GetMerchant(id int64) (models.Merchant, error) {
	row := db.QueryRow(`
		SELECT id, name, mcc_code, category_id, needs_categorization, country_code, city, created_at
		FROM merchants
		WHERE id = ?
	`, id)
	m, err := scanMerchant(row)
	if err == sql.ErrNoRows {
		return m, fmt.Errorf("merchant not found")
	}
	return m, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMerchant(r rowScanner) (models.Merchant, error) {
	var m models.Merchant
	err := r.Scan(&m.ID, &m.Name, &m.MCCCode, &m.CategoryID, &m.NeedsCategorization, &m.CountryCode, &m.City, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return m, err
	}
	if err != nil {
		return m, fmt.Errorf("scan merchant: %w", err)
	}
	return m, nil
}
