package database

import (
	"database/sql"
	"fmt"

	"bankledger/internal/models"
)

// FindOrCreateAccount resolves an account by its number, inserting it
// with the statement currency if unseen. The currency of an existing
// account is never updated.
func (t *Tx) FindOrCreateAccount(accountNumber, currency string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(`SELECT id FROM accounts WHERE account_number = ?`, accountNumber).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("query account: %w", err)
	}

	result, err := t.tx.Exec(`
		INSERT INTO accounts (account_number, currency) VALUES (?, ?)
	`, accountNumber, currency)
	if err != nil {
		if isUniqueViolation(err) {
			if err := t.tx.QueryRow(`SELECT id FROM accounts WHERE account_number = ?`, accountNumber).Scan(&id); err != nil {
				return 0, fmt.Errorf("re-query account: %w", err)
			}
			return id, nil
		}
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) GetAccountByNumber(accountNumber string) (models.Account, error) {
	var a models.Account
	err := db.QueryRow(`
		SELECT id, account_number, currency, created_at
		FROM accounts
		WHERE account_number = ?
	`, accountNumber).Scan(&a.ID, &a.AccountNumber, &a.Currency, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return a, fmt.Errorf("account not found")
	}
	if err != nil {
		return a, fmt.Errorf("query account: %w", err)
	}
	return a, nil
}

func (db *DB) ListAccounts() ([]models.Account, error) {
	rows, err := db.Query(`
		SELECT id, account_number, currency, created_at
		FROM accounts
		ORDER BY account_number
	`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.AccountNumber, &a.Currency, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
