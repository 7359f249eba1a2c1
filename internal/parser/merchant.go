package parser

import (
	"regexp"
	"strings"

	"bankledger/internal/models"
)

var (
	mccPattern       = regexp.MustCompile(`MCC:\s*(\d+)`)
	bankPattern      = regexp.MustCompile(`,\s*([^,]+),\s*MCC:`)
	twoLetterPattern = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// Placeholder bank names that mean "no acquiring bank on the statement",
// compared whitespace-insensitively and case-insensitively.
var absentBankKeys = map[string]bool{
	"banknotspecified": true,
	"банкнеуказан":     true,
}

// paymentLiterals in the order they are probed for.
var paymentLiterals = []string{models.PaymentApplePay, models.PaymentGooglePay}

// ParseMerchantDetails decomposes the trailing details string of a purchase
// block. The merchant name keeps location tokens; city and country are only
// ever derived from LocationText by the geographic resolver, never split off
// here.
func ParseMerchantDetails(details string) models.MerchantDetails {
	var md models.MerchantDetails

	if m := mccPattern.FindStringSubmatch(details); m != nil {
		md.MCCCode = m[1]
	}
	for _, lit := range paymentLiterals {
		if strings.Contains(details, lit) {
			md.PaymentMethod = lit
			break
		}
	}
	if m := bankPattern.FindStringSubmatch(details); m != nil {
		name := strings.TrimSpace(m[1])
		if !absentBankKeys[models.NormalizeBankKey(name)] {
			md.BankName = name
		}
	}

	if strings.Contains(details, ",") {
		md.MerchantName = commaMerchantName(details)
		md.LocationText = md.MerchantName
		return md
	}

	name, location := spaceMerchantName(details)
	md.MerchantName = name
	md.LocationText = location
	return md
}

// commaMerchantName joins the leading comma segments, stopping before the
// first segment that carries metadata (MCC, bank, payment method).
func commaMerchantName(details string) string {
	var kept []string
	for _, seg := range strings.Split(details, ",") {
		seg = strings.TrimSpace(seg)
		if isMetadataSegment(seg) {
			break
		}
		if seg != "" {
			kept = append(kept, seg)
		}
	}
	return strings.Join(kept, ", ")
}

func isMetadataSegment(seg string) bool {
	if strings.Contains(seg, "MCC:") || strings.Contains(seg, "Bank") || strings.Contains(seg, "Банк") {
		return true
	}
	for _, lit := range paymentLiterals {
		if strings.Contains(seg, lit) {
			return true
		}
	}
	return false
}

// spaceMerchantName handles the comma-free format: metadata suffixes are
// stripped and, when the string ends in a two-letter country-like token, the
// first word is the merchant and the rest goes to the resolver whole. The
// gazetteer decides where the merchant ends and the city begins, not word
// counting.
func spaceMerchantName(details string) (name, location string) {
	rest := mccPattern.ReplaceAllString(details, "")
	for _, lit := range paymentLiterals {
		rest = strings.ReplaceAll(rest, lit, "")
	}
	rest = strings.TrimSpace(rest)

	words := strings.Fields(rest)
	if len(words) >= 2 && twoLetterPattern.MatchString(words[len(words)-1]) {
		return words[0], strings.Join(words[1:], " ")
	}
	return rest, rest
}
