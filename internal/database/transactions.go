package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bankledger/internal/models"
)

// ExistingTriples returns the deduplication keys already present for the
// given accounts and content hashes. Loaded once per batch, restricted to the
// batch's own hashes so the preload stays bounded as the ledger grows.
func (t *Tx) ExistingTriples(accountIDs []int64, hashes []string) (map[models.TripleKey]bool, error) {
	triples := make(map[models.TripleKey]bool)
	if len(accountIDs) == 0 || len(hashes) == 0 {
		return triples, nil
	}

	var args []any
	for _, id := range accountIDs {
		args = append(args, id)
	}
	for _, h := range hashes {
		args = append(args, h)
	}

	rows, err := t.tx.Query(`
		SELECT account_id, daily_sequence, transaction_hash
		FROM transactions
		WHERE account_id IN (`+placeholders(len(accountIDs))+`)
		  AND transaction_hash IN (`+placeholders(len(hashes))+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query transaction keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k models.TripleKey
		if err := rows.Scan(&k.AccountID, &k.DailySequence, &k.Hash); err != nil {
			return nil, fmt.Errorf("scan transaction key: %w", err)
		}
		triples[k] = true
	}
	return triples, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// InsertTransaction appends a ledger row. A collision on the
// (account, daily sequence, hash) key returns ErrDuplicate.
func (t *Tx) InsertTransaction(txn models.Transaction) (int64, error) {
	var txnAmount, txnCurrency any
	if txn.TransactionAmount != nil {
		txnAmount = txn.TransactionAmount.String()
		txnCurrency = txn.TransactionCurrency
	}

	result, err := t.tx.Exec(`
		INSERT INTO transactions (
			account_id, merchant_id, bank_id,
			txn_date, amount, account_currency,
			transaction_amount, transaction_currency,
			bank_name, payment_method, description,
			daily_sequence, transaction_hash, import_batch_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.AccountID, txn.MerchantID, txn.BankID,
		txn.Date, txn.Amount.String(), txn.AccountCurrency,
		txnAmount, txnCurrency,
		txn.BankName, txn.PaymentMethod, txn.Description,
		txn.DailySequence, txn.Hash, txn.ImportBatchID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return result.LastInsertId()
}

// ListTransactionsByAccount returns an account's ledger rows, oldest first,
// with the daily sequence preserving within-day statement order.
func (db *DB) ListTransactionsByAccount(accountID int64) ([]models.Transaction, error) {
	rows, err := db.Query(`
		SELECT id, account_id, merchant_id, bank_id,
		       txn_date, amount, account_currency,
		       transaction_amount, transaction_currency,
		       bank_name, payment_method, description,
		       daily_sequence, transaction_hash, import_batch_id, created_at
		FROM transactions
		WHERE account_id = ?
		ORDER BY txn_date, daily_sequence, id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var (
			txn         models.Transaction
			amount      string
			txnAmount   sql.NullString
			txnCurrency sql.NullString
		)
		if err := rows.Scan(
			&txn.ID, &txn.AccountID, &txn.MerchantID, &txn.BankID,
			&txn.Date, &amount, &txn.AccountCurrency,
			&txnAmount, &txnCurrency,
			&txn.BankName, &txn.PaymentMethod, &txn.Description,
			&txn.DailySequence, &txn.Hash, &txn.ImportBatchID, &txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		if txnAmount.Valid {
			d, err := decimal.NewFromString(txnAmount.String)
			if err != nil {
				return nil, fmt.Errorf("parse transaction amount %q: %w", txnAmount.String, err)
			}
			txn.TransactionAmount = &d
			txn.TransactionCurrency = txnCurrency.String
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// CountTransactionsByBatch reports how many rows a given ingestion run inserted.
func (db *DB) CountTransactionsByBatch(batchID string) (int, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM transactions WHERE import_batch_id = ?
	`, batchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
