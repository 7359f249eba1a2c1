package database

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"bankledger/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Init(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func TestFindOrCreateBankNormalizesName(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var first, second int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		var err error
		first, err = tx.FindOrCreateBank("BC C")
		if err != nil {
			return err
		}
		second, err = tx.FindOrCreateBank("bcc")
		return err
	})
	if err != nil {
		t.Fatalf("find or create bank: %v", err)
	}
	if first != second {
		t.Errorf("spacing variants got distinct ids %d and %d", first, second)
	}

	banks, err := db.ListBanks()
	if err != nil {
		t.Fatalf("list banks: %v", err)
	}
	if len(banks) != 1 {
		t.Fatalf("got %d banks, want 1", len(banks))
	}
	if banks[0].Name != "BC C" {
		t.Errorf("stored name %q, want first-seen spelling %q", banks[0].Name, "BC C")
	}
}

func TestFindOrCreateAccountKeepsCurrency(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var first, second int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		var err error
		first, err = tx.FindOrCreateAccount("KZ123", "USD")
		if err != nil {
			return err
		}
		second, err = tx.FindOrCreateAccount("KZ123", "EUR")
		return err
	})
	if err != nil {
		t.Fatalf("find or create account: %v", err)
	}
	if first != second {
		t.Errorf("same number got distinct ids %d and %d", first, second)
	}

	acct, err := db.GetAccountByNumber("KZ123")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acct.Currency != "USD" {
		t.Errorf("currency %q, want original USD", acct.Currency)
	}
}

func TestCreateMerchantAndCategorize(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var merchantID int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		_, found, err := tx.MerchantIDByName("103 COFFEE")
		if err != nil {
			return err
		}
		if found {
			t.Error("merchant found before insert")
		}
		merchantID, err = tx.CreateMerchant(models.Merchant{
			Name:                "103 COFFEE",
			MCCCode:             "5814",
			NeedsCategorization: true,
			CountryCode:         "MY",
			City:                "Kuala Lumpur",
		})
		return err
	})
	if err != nil {
		t.Fatalf("create merchant: %v", err)
	}

	pending, err := db.ListMerchantsNeedingCategorization()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != merchantID {
		t.Fatalf("pending = %+v, want the new merchant", pending)
	}

	catID, err := db.FindOrCreateCategoryByName("Coffee")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := db.SetMerchantCategory(merchantID, catID); err != nil {
		t.Fatalf("set category: %v", err)
	}

	m, err := db.GetMerchant(merchantID)
	if err != nil {
		t.Fatalf("get merchant: %v", err)
	}
	if m.NeedsCategorization {
		t.Error("needs_categorization still set after assignment")
	}
	if m.CategoryID == nil || *m.CategoryID != catID {
		t.Errorf("category id = %v, want %d", m.CategoryID, catID)
	}
	if m.City != "Kuala Lumpur" || m.CountryCode != "MY" {
		t.Errorf("location = %q/%q, want Kuala Lumpur/MY", m.City, m.CountryCode)
	}
}

func TestInsertTransactionDuplicateKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	txn := models.Transaction{
		Date:            "2025-10-16",
		Amount:          decimal.RequireFromString("3.26"),
		AccountCurrency: "USD",
		Description:     "16.10.2025 -3.26 USD 103 COFFEE",
		DailySequence:   0,
		Hash:            "abc123",
		ImportBatchID:   "batch-1",
	}

	err := db.WithTx(ctx, func(tx *Tx) error {
		accountID, err := tx.FindOrCreateAccount("KZ123", "USD")
		if err != nil {
			return err
		}
		txn.AccountID = accountID

		if _, err := tx.InsertTransaction(txn); err != nil {
			return err
		}

		// Same key again must come back as a duplicate.
		if _, err := tx.InsertTransaction(txn); !errors.Is(err, ErrDuplicate) {
			t.Errorf("second insert error = %v, want ErrDuplicate", err)
		}

		// Bumping the daily sequence makes it a distinct row.
		txn.DailySequence = 1
		_, err = tx.InsertTransaction(txn)
		return err
	})
	if err != nil {
		t.Fatalf("insert transactions: %v", err)
	}

	rows, err := db.ListTransactionsByAccount(txn.AccountID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].DailySequence != 0 || rows[1].DailySequence != 1 {
		t.Errorf("sequences = %d,%d, want 0,1", rows[0].DailySequence, rows[1].DailySequence)
	}
	if !rows[0].Amount.Equal(decimal.RequireFromString("3.26")) {
		t.Errorf("amount round-trip = %s, want 3.26", rows[0].Amount)
	}
}

func TestExistingTriples(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var accountID int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		var err error
		accountID, err = tx.FindOrCreateAccount("KZ999", "USD")
		if err != nil {
			return err
		}
		_, err = tx.InsertTransaction(models.Transaction{
			AccountID:       accountID,
			Date:            "2025-10-16",
			Amount:          decimal.RequireFromString("10.00"),
			AccountCurrency: "USD",
			Description:     "x",
			DailySequence:   0,
			Hash:            "h1",
			ImportBatchID:   "batch-1",
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	err = db.WithTx(ctx, func(tx *Tx) error {
		triples, err := tx.ExistingTriples([]int64{accountID}, []string{"h1", "h2"})
		if err != nil {
			return err
		}
		if !triples[models.TripleKey{AccountID: accountID, DailySequence: 0, Hash: "h1"}] {
			t.Error("seeded triple not reported")
		}
		if triples[models.TripleKey{AccountID: accountID, DailySequence: 1, Hash: "h1"}] {
			t.Error("unseeded triple reported")
		}

		// Rows whose hash is not in the batch stay out of the preload.
		other, err := tx.ExistingTriples([]int64{accountID}, []string{"h2"})
		if err != nil {
			return err
		}
		if len(other) != 0 {
			t.Errorf("foreign hashes should load no triples, got %d", len(other))
		}

		empty, err := tx.ExistingTriples(nil, []string{"h1"})
		if err != nil {
			return err
		}
		if len(empty) != 0 {
			t.Errorf("no accounts should mean no triples, got %d", len(empty))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("existing triples: %v", err)
	}
}

func TestJobLifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateJob("ingest_statement", map[string]string{"path": "/tmp/statement.txt"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	job, err := db.ClaimNextJob()
	if err != nil {
		t.Fatalf("claim job: %v", err)
	}
	if job == nil || job.ID != id {
		t.Fatalf("claimed %+v, want job %d", job, id)
	}
	if job.Status != "running" || job.Attempts != 1 {
		t.Errorf("status=%s attempts=%d, want running/1", job.Status, job.Attempts)
	}

	if err := db.UpdateJobProgress(id, 50); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if err := db.CompleteJob(id, `{"imported":3}`); err != nil {
		t.Fatalf("complete job: %v", err)
	}

	job, err = db.GetJob(id)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != "completed" || job.Progress != 100 {
		t.Errorf("status=%s progress=%d, want completed/100", job.Status, job.Progress)
	}

	// Queue is empty now.
	next, err := db.ClaimNextJob()
	if err != nil {
		t.Fatalf("claim next: %v", err)
	}
	if next != nil {
		t.Errorf("claimed %+v from empty queue", next)
	}
}
