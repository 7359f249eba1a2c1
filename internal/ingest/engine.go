package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bankledger/internal/category"
	"bankledger/internal/database"
	"bankledger/internal/geo"
	"bankledger/internal/logger"
	"bankledger/internal/models"
	"bankledger/internal/parser"
)

// ErrMissingAccountNumber aborts an ingestion whose statement header has no
// account number. Without it neither entity resolution nor the deduplication
// key can be built.
var ErrMissingAccountNumber = errors.New("statement has no account number")

// StoreTx is the transactional surface the engine writes through.
type StoreTx interface {
	FindOrCreateAccount(accountNumber, currency string) (int64, error)
	FindOrCreateBank(name string) (int64, error)
	FindOrCreateCategory(name string) (int64, error)
	MerchantIDByName(name string) (int64, bool, error)
	CreateMerchant(m models.Merchant) (int64, error)
	ExistingTriples(accountIDs []int64, hashes []string) (map[models.TripleKey]bool, error)
	InsertTransaction(txn models.Transaction) (int64, error)
}

// Store runs a function against the ledger inside one transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(StoreTx) error) error
}

type dbStore struct {
	db *database.DB
}

func (s dbStore) WithTx(ctx context.Context, fn func(StoreTx) error) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		return fn(tx)
	})
}

// NewStore adapts the sqlite database to the engine's Store interface.
func NewStore(db *database.DB) Store {
	return dbStore{db: db}
}

// Batch is one statement's worth of parsed input, handed to Ingest as a unit.
type Batch struct {
	Statement models.RawStatement
	Records   []models.TransactionRecord
}

// Result summarizes one ingestion run. Total = Imported + Duplicates.
type Result struct {
	BatchID    string
	Total      int
	Imported   int
	Duplicates int
}

// ProgressFunc receives periodic progress updates during ingestion.
// A failing callback never aborts the run.
type ProgressFunc func(done, total int) error

type Engine struct {
	store    Store
	resolver *geo.Resolver
}

func NewEngine(store Store, resolver *geo.Resolver) *Engine {
	return &Engine{store: store, resolver: resolver}
}

// Ingest writes a batch into the ledger inside a single transaction.
// Re-ingesting the same statement is a no-op: every record gets a positional
// per-day sequence and a content hash, and rows whose
// (account, sequence, hash) key already exists are counted as duplicates.
func (e *Engine) Ingest(ctx context.Context, batch Batch, progress ProgressFunc) (Result, error) {
	number := batch.Statement.AccountNumber
	if number == "" || number == parser.UnknownField {
		return Result{}, ErrMissingAccountNumber
	}

	res := Result{
		BatchID: uuid.NewString(),
		Total:   len(batch.Records),
	}
	log := logger.Ctx(ctx).With("batch_id", res.BatchID)

	hashes := make([]string, len(batch.Records))
	for i, rec := range batch.Records {
		hashes[i] = recordHash(rec)
	}

	err := e.store.WithTx(ctx, func(tx StoreTx) error {
		accountID, err := tx.FindOrCreateAccount(number, batch.Statement.Currency)
		if err != nil {
			return err
		}

		seen, err := tx.ExistingTriples([]int64{accountID}, hashes)
		if err != nil {
			return err
		}

		// Progress is reported roughly every tenth of the batch.
		stride := len(batch.Records) / 10
		if stride < 1 {
			stride = 1
		}

		nextSeq := make(map[string]int)
		for i, rec := range batch.Records {
			seq := nextSeq[rec.Date]
			nextSeq[rec.Date]++

			key := models.TripleKey{
				AccountID:     accountID,
				DailySequence: seq,
				Hash:          hashes[i],
			}
			if seen[key] {
				res.Duplicates++
				report(progress, i+1, len(batch.Records), stride)
				continue
			}

			txn := models.Transaction{
				AccountID:           accountID,
				Date:                rec.Date,
				Amount:              rec.Amount,
				AccountCurrency:     rec.AccountCurrency,
				TransactionAmount:   rec.TransactionAmount,
				TransactionCurrency: rec.TransactionCurrency,
				BankName:            rec.Merchant.BankName,
				PaymentMethod:       rec.Merchant.PaymentMethod,
				Description:         rec.Description,
				DailySequence:       key.DailySequence,
				Hash:                key.Hash,
				ImportBatchID:       res.BatchID,
			}

			if rec.Merchant.BankName != "" {
				bankID, err := tx.FindOrCreateBank(rec.Merchant.BankName)
				if err != nil {
					return err
				}
				txn.BankID = &bankID
			}
			if rec.Merchant.MerchantName != "" {
				merchantID, err := e.resolveMerchant(tx, rec.Merchant)
				if err != nil {
					return err
				}
				txn.MerchantID = &merchantID
			}

			if _, err := tx.InsertTransaction(txn); err != nil {
				if errors.Is(err, database.ErrDuplicate) {
					res.Duplicates++
					report(progress, i+1, len(batch.Records), stride)
					continue
				}
				return fmt.Errorf("record %d: %w", i, err)
			}
			seen[key] = true
			res.Imported++
			report(progress, i+1, len(batch.Records), stride)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Info("batch_ingested",
		"account", number,
		"total", res.Total,
		"imported", res.Imported,
		"duplicates", res.Duplicates)
	return res, nil
}

// resolveMerchant returns the id for a merchant name, creating the merchant
// with its category and location enrichment on first sight. Enrichment runs
// once; later transactions reuse the stored row untouched.
func (e *Engine) resolveMerchant(tx StoreTx, details models.MerchantDetails) (int64, error) {
	id, found, err := tx.MerchantIDByName(details.MerchantName)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}

	m := models.Merchant{
		Name:    details.MerchantName,
		MCCCode: details.MCCCode,
	}
	if name, ok := category.AutoCategorize(details.MerchantName, details.MCCCode); ok {
		catID, err := tx.FindOrCreateCategory(name)
		if err != nil {
			return 0, err
		}
		m.CategoryID = &catID
	} else {
		m.NeedsCategorization = true
	}
	if e.resolver != nil && details.LocationText != "" {
		loc := e.resolver.Resolve(details.LocationText)
		m.CountryCode = loc.CountryCode
		m.City = loc.City
	}
	return tx.CreateMerchant(m)
}

func report(progress ProgressFunc, done, total, stride int) {
	if progress == nil {
		return
	}
	if done%stride == 0 || done == total {
		// Progress reporting is advisory only.
		_ = progress(done, total)
	}
}

// recordHash fingerprints a record's content. Fields are delimiter-joined so
// adjacent values cannot bleed into each other.
func recordHash(rec models.TransactionRecord) string {
	txnAmount := ""
	if rec.TransactionAmount != nil {
		txnAmount = rec.TransactionAmount.String()
	}
	fields := []string{
		rec.Date,
		rec.Amount.String(),
		txnAmount,
		rec.TransactionCurrency,
		rec.Merchant.BankName,
		rec.Merchant.PaymentMethod,
		rec.Description,
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}
