package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"bankledger/internal/logger"
	"bankledger/internal/models"
	"bankledger/internal/reflow"
)

// Section header phrases that open the transaction section of a statement.
var sectionHeaderPhrases = []string{
	"Card transactions",
	"Transactions for the period",
}

var (
	blockStartPattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}`)
	pageBreakPattern  = regexp.MustCompile(`^(?:\f|Page \d+(?: of \d+)?$)`)

	primaryAmountPattern   = regexp.MustCompile(`(-?\d+\.\d{2})\s+([A-Z]{3})`)
	secondaryAmountPattern = regexp.MustCompile(`\((\d+\.\d{2})\s+([A-Z]{3})\)`)

	// Prefix-anchored strips applied in fixed order when carving the
	// merchant-details remainder out of a block. Anchoring keeps them from
	// eating merchant text that happens to look like an amount or a date.
	dateStripPattern      = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}\s*`)
	amountStripPattern    = regexp.MustCompile(`^-?\d+\.\d{2}\s+[A-Z]{3}\s*`)
	secondaryStripPattern = regexp.MustCompile(`^\(\d+\.\d{2}\s+[A-Z]{3}\)\s*`)
)

// typeTokens maps statement type phrases to transaction types. Checked in
// this order; the first substring hit wins. "Purchase with bonuses" must
// precede "Purchase".
var typeTokens = []struct {
	token string
	typ   models.TransactionType
}{
	{"Purchase with bonuses", models.TypePurchaseWithBonus},
	{"Purchase", models.TypePurchase},
	{"Transfer", models.TypeTransfer},
	{"Refund", models.TypeRefund},
	{"Account replenishment", models.TypeReplenishment},
	{"Cash withdrawal", models.TypeCashWithdrawal},
}

// ExtractTransactions walks the reflowed statement lines once, splitting the
// transaction section into per-transaction blocks and parsing each. Blocks of
// non-purchase types are filtered out by design; blocks that fail to parse
// are skipped with a log line and never fail the document.
func ExtractTransactions(lines []string) []models.TransactionRecord {
	log := logger.Default()

	var (
		records   []models.TransactionRecord
		block     []string
		inSection bool
		blocks    int
		skipped   int
		filtered  int
	)

	flush := func() {
		if block == nil {
			return
		}
		blocks++
		text := reflow.Join(block)
		block = nil

		rec, err := parseBlock(text)
		if err != nil {
			skipped++
			log.Warn("block_skipped", "error", err.Error(), "block", text)
			return
		}
		if rec == nil {
			filtered++
			return
		}
		records = append(records, *rec)
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if !inSection {
			if isSectionHeader(line) {
				inSection = true
			}
			continue
		}

		switch {
		case isSectionHeader(line), pageBreakPattern.MatchString(line):
			// Terminates the current block without starting a new one.
			flush()
		case blockStartPattern.MatchString(line):
			flush()
			block = []string{line}
		case block != nil:
			block = append(block, line)
		}
	}
	flush()

	log.Info("transactions_extracted",
		"blocks", blocks, "parsed", len(records), "skipped", skipped, "filtered", filtered)
	return records
}

func isSectionHeader(line string) bool {
	for _, phrase := range sectionHeaderPhrases {
		if strings.Contains(line, phrase) {
			return true
		}
	}
	return false
}

// parseBlock parses one joined transaction block. A nil record with nil error
// means the block was a recognized non-purchase type and is filtered out.
func parseBlock(text string) (*models.TransactionRecord, error) {
	dateToken := blockStartPattern.FindString(text)
	date, err := time.Parse(dateLayout, dateToken)
	if err != nil {
		return nil, fmt.Errorf("parse block date %q: %w", dateToken, err)
	}

	amountMatch := primaryAmountPattern.FindStringSubmatch(text)
	if amountMatch == nil {
		return nil, fmt.Errorf("no amount in block")
	}
	amount := parseAmount(amountMatch[1])

	typ, typeToken := detectType(text, strings.HasPrefix(amountMatch[1], "-"))
	if !typ.Persistable() {
		return nil, nil
	}

	rec := models.TransactionRecord{
		Date:            date.Format("2006-01-02"),
		Type:            typ,
		Amount:          amount.Abs(),
		AccountCurrency: amountMatch[2],
		Description:     text,
	}

	if m := secondaryAmountPattern.FindStringSubmatch(text); m != nil {
		sec := parseAmount(m[1])
		rec.TransactionAmount = &sec
		rec.TransactionCurrency = m[2]
	}

	details := dateStripPattern.ReplaceAllString(text, "")
	details = amountStripPattern.ReplaceAllString(details, "")
	details = secondaryStripPattern.ReplaceAllString(details, "")
	if typeToken != "" {
		tokenStrip := regexp.MustCompile(`^` + regexp.QuoteMeta(typeToken) + `\s*`)
		details = tokenStrip.ReplaceAllString(details, "")
		// The type token precedes the amounts in some blocks; with the token
		// gone the amounts sit at the prefix and strip on the second pass.
		details = amountStripPattern.ReplaceAllString(details, "")
		details = secondaryStripPattern.ReplaceAllString(details, "")
	}
	rec.RawDetails = strings.TrimSpace(details)
	rec.Merchant = ParseMerchantDetails(rec.RawDetails)

	return &rec, nil
}

// detectType finds the first type token present in the block. Card purchases
// are printed without a type word in this format, so a debit block with no
// token is a purchase; anything else unmatched stays Other.
func detectType(text string, debit bool) (models.TransactionType, string) {
	for _, tt := range typeTokens {
		if strings.Contains(text, tt.token) {
			return tt.typ, tt.token
		}
	}
	if debit {
		return models.TypePurchase, ""
	}
	return models.TypeOther, ""
}
