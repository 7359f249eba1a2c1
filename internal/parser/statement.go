package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bankledger/internal/models"
)

// UnknownField is the sentinel for header fields the statement did not carry.
const UnknownField = "Unknown"

const dateLayout = "02.01.2006"

// Header field patterns. Extraction never fails: every field degrades to a
// documented default when its pattern finds nothing.
var (
	iinLinePattern = regexp.MustCompile(`^IIN:`)

	// Account number patterns, tried in order across all lines. The first
	// pattern is scanned against the whole document before the fallback is.
	accountNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`Account number:\s*([A-Z0-9]+)`),
		regexp.MustCompile(`№\s*([A-Z0-9]+)`),
	}

	currencyPattern = regexp.MustCompile(`Account currency:\s*([A-Z]{3})`)
	periodPattern   = regexp.MustCompile(`For the period:\s*from\s*(\d{2}\.\d{2}\.\d{4})\s*to\s*(\d{2}\.\d{2}\.\d{4})`)
	balancePattern  = regexp.MustCompile(`Available as of [^:]*:\s*([\d,]+\.\d{2})\s+[A-Z]{3}`)
)

// ExtractStatement pulls the header fields from reflowed statement lines.
// Fields are extracted independently and order-insensitively; a miss resolves
// to a default, never an error. The opening balance is not derivable from
// this statement format and is always zero.
func ExtractStatement(lines []string) models.RawStatement {
	stmt := models.RawStatement{
		Holder:        UnknownField,
		AccountNumber: UnknownField,
		Currency:      "USD",
	}

	// Holder is the line immediately preceding the IIN line.
	for i, line := range lines {
		if iinLinePattern.MatchString(strings.TrimSpace(line)) && i > 0 {
			stmt.Holder = strings.TrimSpace(lines[i-1])
			break
		}
	}

	if num := firstMatch(lines, accountNumberPatterns); num != "" {
		stmt.AccountNumber = num
	}

	for _, line := range lines {
		if m := currencyPattern.FindStringSubmatch(line); m != nil {
			stmt.Currency = m[1]
			break
		}
	}

	stmt.PeriodFrom, stmt.PeriodTo = extractPeriod(lines)

	for _, line := range lines {
		if m := balancePattern.FindStringSubmatch(line); m != nil {
			stmt.ClosingBalance = parseAmount(m[1])
			break
		}
	}

	return stmt
}

// firstMatch evaluates the pattern chain in order: each pattern is scanned
// across all lines before the next pattern is tried.
func firstMatch(lines []string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		for _, line := range lines {
			if m := p.FindStringSubmatch(line); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// extractPeriod returns the statement period, defaulting to the last month
// when absent. The default is deliberate graceful degradation, not a failure.
func extractPeriod(lines []string) (from, to string) {
	for _, line := range lines {
		if m := periodPattern.FindStringSubmatch(line); m != nil {
			f, errF := time.Parse(dateLayout, m[1])
			t, errT := time.Parse(dateLayout, m[2])
			if errF == nil && errT == nil {
				return f.Format("2006-01-02"), t.Format("2006-01-02")
			}
		}
	}
	now := time.Now()
	return now.AddDate(0, -1, 0).Format("2006-01-02"), now.Format("2006-01-02")
}

// parseAmount converts "1,234.56" to a decimal, stripping thousands commas.
func parseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
