package reflow

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Layout-based text extraction breaks lines at arbitrary points, including
// mid-word. Join undoes that: it walks consecutive line pairs and decides for
// each break whether the word continues (no separator), a split abbreviation
// continues ("MC" + "C: 5719"), or a plain space belongs there.

// abbrevPattern matches a line that looks like the tail of a split
// abbreviation: one or two capitals, optionally followed by a non-letter and
// more text ("C: 5719", "U Ltd", "CC").
var abbrevPattern = regexp.MustCompile(`^[A-Z]{1,2}(?:[^A-Za-z].*)?$`)

var (
	hyphenGapPattern  = regexp.MustCompile(`-\s+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Join recombines raw extracted lines into a single logical string.
// An empty input yields ""; a single line is returned unchanged.
func Join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	if len(lines) == 1 {
		return lines[0]
	}

	out := strings.TrimSpace(lines[0])
	for _, line := range lines[1:] {
		next := strings.TrimSpace(line)
		if next == "" {
			continue
		}
		if out == "" {
			out = next
			continue
		}
		out = joinPair(out, next)
	}

	out = hyphenGapPattern.ReplaceAllString(out, "-")
	out = whitespacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// joinPair concatenates prev and next with the appropriate separator.
func joinPair(prev, next string) string {
	last, _ := utf8.DecodeLastRuneInString(prev)
	first, _ := utf8.DecodeRuneInString(next)

	switch {
	case unicode.IsLower(first):
		// Word wrapped mid-way: either a hyphenated break or a bare one.
		if last == '-' {
			return prev[:len(prev)-1] + next
		}
		if unicode.IsLetter(last) {
			return prev + next
		}
		return prev + " " + next

	case !unicode.IsLetter(first):
		// Punctuation or digit at line start continues the previous token.
		return prev + next

	case unicode.IsUpper(last) && abbrevPattern.MatchString(next):
		// Split all-caps abbreviation, e.g. "BC" + "C" -> "BCC".
		return prev + next

	default:
		return prev + " " + next
	}
}
