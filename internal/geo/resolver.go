package geo

import (
	"strings"

	"bankledger/internal/models"
)

// Resolver derives country and canonical city from the tail of a merchant
// string. The last token must be a whitelisted ISO country code; the country
// anchors the parse, and without it no city is guessed either.
type Resolver struct {
	gaz *Gazetteer
}

// NewResolver wraps a loaded gazetteer.
func NewResolver(g *Gazetteer) *Resolver {
	return &Resolver{gaz: g}
}

// Window sizes tried against the gazetteer, longest first: many city names
// are multi-word and the longest match must win ("KUALA LUMPUR" before
// "LUMPUR").
var windowSizes = [...]int{3, 2, 1}

// Resolve parses candidate text like "103 COFFEE CHOW KIT KUALA LUMPUR MY".
// A zero ParsedLocation means no trustworthy country anchor was found;
// country without city is a valid outcome for unresolvable city names.
func (r *Resolver) Resolve(candidate string) models.ParsedLocation {
	tokens := strings.Fields(strings.ToUpper(candidate))
	if len(tokens) == 0 {
		return models.ParsedLocation{}
	}

	country := tokens[len(tokens)-1]
	if len(country) != 2 || !ValidCountryCode(country) {
		return models.ParsedLocation{}
	}
	rest := tokens[:len(tokens)-1]

	for _, size := range windowSizes {
		if size > len(rest) {
			continue
		}
		window := strings.Join(rest[len(rest)-size:], " ")
		if canonical, ok := r.gaz.CityInCountry(window, country); ok {
			return models.ParsedLocation{CountryCode: country, City: canonical}
		}
	}

	// Second pass: tolerate direction prefixes, truncation and small typos.
	for _, size := range windowSizes {
		if size > len(rest) {
			continue
		}
		window := strings.Join(rest[len(rest)-size:], " ")
		if canonical, ok := r.fuzzyCityInCountry(window, country); ok {
			return models.ParsedLocation{CountryCode: country, City: canonical}
		}
	}

	return models.ParsedLocation{CountryCode: country}
}

var directionPrefixes = [...]string{"NORTH ", "SOUTH ", "EAST ", "WEST "}

// fuzzyCityInCountry retries a failed exact lookup with progressively looser
// rules. Each rule returns the canonical dataset entry, never the raw input.
func (r *Resolver) fuzzyCityInCountry(candidate, country string) (string, bool) {
	// "SOUTH JAKARTA" -> "JAKARTA" when the prefixed form is not listed.
	for _, prefix := range directionPrefixes {
		if stripped, ok := strings.CutPrefix(candidate, prefix); ok {
			if canonical, found := r.gaz.CityInCountry(stripped, country); found {
				return canonical, true
			}
		}
	}

	// Short candidates make prefix and typo rules guesswork; stop here.
	if len(candidate) < 5 {
		return "", false
	}

	// Truncated name: the candidate is a prefix of a listed variant
	// ("PODGORIC" cut off at a column boundary).
	for _, variant := range r.gaz.variants(country) {
		if len(variant) > len(candidate) && strings.HasPrefix(variant, candidate) {
			return r.canonicalOf(variant, country), true
		}
	}

	// Trailing typo: equal except for the last one or two characters.
	stem := candidate[:len(candidate)-2]
	for _, variant := range r.gaz.variants(country) {
		if len(variant) < len(candidate)-2 || len(variant) > len(candidate)+2 {
			continue
		}
		if strings.HasPrefix(variant, stem) {
			return r.canonicalOf(variant, country), true
		}
	}

	return "", false
}

func (r *Resolver) canonicalOf(variant, country string) string {
	canonical, _ := r.gaz.CityInCountry(variant, country)
	return canonical
}
