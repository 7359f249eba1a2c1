package category

import "testing"

func TestAutoCategorize(t *testing.T) {
	tests := []struct {
		name     string
		merchant string
		mcc      string
		expected string
		ok       bool
	}{
		{
			name:     "mcc lookup wins",
			merchant: "103 COFFEE CHOW KIT KUALA LUMPUR MY",
			mcc:      "5411",
			expected: "Groceries",
			ok:       true,
		},
		{
			name:     "mcc takes precedence over keywords",
			merchant: "STARBUCKS RESERVE",
			mcc:      "5812",
			expected: "Restaurants",
			ok:       true,
		},
		{
			name:     "keyword fallback when mcc unmapped",
			merchant: "103 COFFEE CHOW KIT",
			mcc:      "0000",
			expected: "Coffee",
			ok:       true,
		},
		{
			name:     "keyword fallback without mcc",
			merchant: "GRAND CITY HOTEL",
			mcc:      "",
			expected: "Hotels",
			ok:       true,
		},
		{
			name:     "keyword match is case-insensitive",
			merchant: "corner cafe podgorica",
			mcc:      "",
			expected: "Coffee",
			ok:       true,
		},
		{
			name:     "earlier rule wins over later",
			merchant: "COFFEE SHOP", // Coffee before Shopping
			mcc:      "",
			expected: "Coffee",
			ok:       true,
		},
		{
			name:     "no match",
			merchant: "ACME WIDGETS",
			mcc:      "",
			expected: "",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AutoCategorize(tt.merchant, tt.mcc)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("AutoCategorize(%q, %q): got (%q, %v), want (%q, %v)",
					tt.merchant, tt.mcc, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
