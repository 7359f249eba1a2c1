package reflow

import "testing"

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{
			name:     "empty input",
			lines:    nil,
			expected: "",
		},
		{
			name:     "single line unchanged",
			lines:    []string{"  Available as of 01.11.2025:  "},
			expected: "  Available as of 01.11.2025:  ",
		},
		{
			name:     "split abbreviation",
			lines:    []string{"MC", "C: 5719"},
			expected: "MCC: 5719",
		},
		{
			name:     "hyphenated word wrap",
			lines:    []string{"becom-", "ing problem"},
			expected: "becoming problem",
		},
		{
			name:     "uppercase to uppercase keeps space",
			lines:    []string{"MUJI-TRX", "KUALA LUMPUR MY"},
			expected: "MUJI-TRX KUALA LUMPUR MY",
		},
		{
			name:     "uppercase end lowercase start joins",
			lines:    []string{"PAYPAL", "payment received"},
			expected: "PAYPALpayment received",
		},
		{
			name:     "lowercase to lowercase joins",
			lines:    []string{"internatio", "nal transfer"},
			expected: "international transfer",
		},
		{
			name:     "two letter abbreviation tail",
			lines:    []string{"E", "U Ltd"},
			expected: "EU Ltd",
		},
		{
			name:     "abbreviation without remainder",
			lines:    []string{"BC", "C"},
			expected: "BCC",
		},
		{
			name:     "digit start continues token",
			lines:    []string{"Account number: KZ4", "5678"},
			expected: "Account number: KZ45678",
		},
		{
			name:     "long capital word is not an abbreviation",
			lines:    []string{"COFFEE", "HOUSE"},
			expected: "COFFEE HOUSE",
		},
		{
			name:     "blank lines are skipped",
			lines:    []string{"first part", "", "SECOND"},
			expected: "first part SECOND",
		},
		{
			name:     "whitespace runs collapse",
			lines:    []string{"Purchase   -3.26", "USD"},
			expected: "Purchase -3.26 USD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Join(tt.lines)
			if got != tt.expected {
				t.Errorf("Join(%q): got %q, want %q", tt.lines, got, tt.expected)
			}
		})
	}
}
