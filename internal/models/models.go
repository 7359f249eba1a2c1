package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// NormalizeBankKey builds the whitespace-insensitive, case-insensitive
// natural key a bank is matched by. The stored name keeps original spacing.
func NormalizeBankKey(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	return strings.ToLower(stripped)
}

// TransactionType classifies a statement transaction. The parser maps the
// free-text type token onto one of these; anything unrecognized is TypeOther.
type TransactionType string

const (
	TypePurchase          TransactionType = "purchase"
	TypePurchaseWithBonus TransactionType = "purchase_with_bonus"
	TypeTransfer          TransactionType = "transfer"
	TypeRefund            TransactionType = "refund"
	TypeReplenishment     TransactionType = "replenishment"
	TypeCashWithdrawal    TransactionType = "cash_withdrawal"
	TypeFee               TransactionType = "fee"
	TypeOther             TransactionType = "other"
)

// Persistable reports whether transactions of this type are kept in the
// ledger. Only purchases are; everything else is filtered out during parsing.
func (t TransactionType) Persistable() bool {
	return t == TypePurchase || t == TypePurchaseWithBonus
}

// Payment method literals as they appear in merchant details.
const (
	PaymentApplePay  = "APPLE PAY"
	PaymentGooglePay = "GOOGLE PAY"
)

// RawStatement holds the header fields extracted from a statement document.
// Built once per document and not modified afterwards.
type RawStatement struct {
	Holder         string
	AccountNumber  string
	Currency       string // ISO 4217
	PeriodFrom     string // YYYY-MM-DD
	PeriodTo       string // YYYY-MM-DD
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
}

// TransactionRecord is one transaction as parsed from the statement text,
// before entity resolution. Transient: discarded after ingestion.
type TransactionRecord struct {
	Date            string // YYYY-MM-DD, statements carry no time of day
	Type            TransactionType
	Amount          decimal.Decimal // account currency, unsigned
	AccountCurrency string
	// Original amount/currency for foreign-currency purchases, if present.
	TransactionAmount   *decimal.Decimal
	TransactionCurrency string
	// RawDetails is the trailing merchant-details string still to be parsed.
	RawDetails string
	// Description keeps the full original text block for audit and hashing.
	Description string

	Merchant MerchantDetails
}

// MerchantDetails is the decomposition of a transaction's trailing details
// string. Empty strings mean the field was absent.
type MerchantDetails struct {
	MerchantName  string
	MCCCode       string // 4-digit code as written
	BankName      string // acquiring bank, original spacing preserved
	PaymentMethod string // PaymentApplePay, PaymentGooglePay or a card reference
	// LocationText is the candidate string handed to the geographic resolver.
	// Not persisted; location is always re-derived from it.
	LocationText string
}

// ParsedLocation is the geographic resolution of a merchant string. City is
// the canonical gazetteer name, never the raw input. Empty means unresolved.
type ParsedLocation struct {
	CountryCode string // ISO 3166-1 alpha-2
	City        string
}

// Bank is a persisted acquiring bank. Uniqueness is by whitespace-insensitive,
// case-insensitive name; Name keeps the spacing of the first insert.
type Bank struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Account is a persisted bank account, unique by account number.
type Account struct {
	ID            int64
	AccountNumber string
	Currency      string
	CreatedAt     time.Time
}

// Category is a persisted merchant category, unique by name.
type Category struct {
	ID   int64
	Name string
}

// Merchant is a persisted merchant, unique by the exact name string produced
// by the parser. Country and city are filled once at creation from the
// geographic resolver; CategoryID from the categorizer.
type Merchant struct {
	ID                  int64
	Name                string
	MCCCode             string
	CategoryID          *int64
	NeedsCategorization bool
	CountryCode         string
	City                string
	CreatedAt           time.Time
}

// Transaction is a persisted ledger row. Append-only.
// (AccountID, DailySequence, Hash) is the deduplication key.
type Transaction struct {
	ID                  int64
	AccountID           int64
	MerchantID          *int64
	BankID              *int64
	Date                string // YYYY-MM-DD
	Amount              decimal.Decimal
	AccountCurrency     string
	TransactionAmount   *decimal.Decimal
	TransactionCurrency string
	BankName            string
	PaymentMethod       string
	Description         string
	DailySequence       int
	Hash                string // hex SHA-256 digest
	ImportBatchID       string // uuid of the ingestion run that inserted the row
	CreatedAt           time.Time
}

// TripleKey identifies a transaction for deduplication.
type TripleKey struct {
	AccountID     int64
	DailySequence int
	Hash          string
}

// Job represents a background job in the queue
type Job struct {
	ID          int64
	JobType     string
	Payload     string // JSON payload
	Status      string // pending, running, completed, failed
	Progress    int    // 0-100
	Result      string // JSON result or error message
	Attempts    int
	MaxAttempts int
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}
