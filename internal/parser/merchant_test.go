package parser

import (
	"testing"

	"bankledger/internal/models"
)

func TestParseMerchantDetails(t *testing.T) {
	tests := []struct {
		name     string
		details  string
		expected models.MerchantDetails
	}{
		{
			name:    "comma format with all metadata",
			details: "103 COFFEE CHOW KIT KUALA LUMPUR MY, Malayan Banking Berhad, MCC: 5411, APPLE PAY",
			expected: models.MerchantDetails{
				MerchantName:  "103 COFFEE CHOW KIT KUALA LUMPUR MY",
				MCCCode:       "5411",
				BankName:      "Malayan Banking Berhad",
				PaymentMethod: models.PaymentApplePay,
				LocationText:  "103 COFFEE CHOW KIT KUALA LUMPUR MY",
			},
		},
		{
			name:    "placeholder bank treated as absent",
			details: "CORNER SHOP PODGORICA ME, Bank not specified, MCC: 5999",
			expected: models.MerchantDetails{
				MerchantName: "CORNER SHOP PODGORICA ME",
				MCCCode:      "5999",
				LocationText: "CORNER SHOP PODGORICA ME",
			},
		},
		{
			name:    "cyrillic placeholder bank treated as absent",
			details: "MAGAZIN PODGORICA ME, Банк не указан, MCC: 5411",
			expected: models.MerchantDetails{
				MerchantName: "MAGAZIN PODGORICA ME",
				MCCCode:      "5411",
				LocationText: "MAGAZIN PODGORICA ME",
			},
		},
		{
			name:    "multi-segment merchant name",
			details: "CAFE 103, CHOW KIT, Kaspi Bank, MCC: 5814, GOOGLE PAY",
			expected: models.MerchantDetails{
				MerchantName:  "CAFE 103, CHOW KIT",
				MCCCode:       "5814",
				BankName:      "Kaspi Bank",
				PaymentMethod: models.PaymentGooglePay,
				LocationText:  "CAFE 103, CHOW KIT",
			},
		},
		{
			name:    "space format with trailing country token",
			details: "MUJI-TRX KUALA LUMPUR MY MCC: 5719",
			expected: models.MerchantDetails{
				MerchantName: "MUJI-TRX",
				MCCCode:      "5719",
				LocationText: "KUALA LUMPUR MY",
			},
		},
		{
			name:    "space format without country token",
			details: "SPOTIFY",
			expected: models.MerchantDetails{
				MerchantName: "SPOTIFY",
				LocationText: "SPOTIFY",
			},
		},
		{
			name:    "space format payment suffix stripped",
			details: "GRAB RIDES SG APPLE PAY",
			expected: models.MerchantDetails{
				MerchantName:  "GRAB",
				PaymentMethod: models.PaymentApplePay,
				LocationText:  "RIDES SG",
			},
		},
		{
			name:     "empty details yield no merchant",
			details:  "",
			expected: models.MerchantDetails{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMerchantDetails(tt.details)
			if got != tt.expected {
				t.Errorf("ParseMerchantDetails(%q):\n got  %+v\n want %+v", tt.details, got, tt.expected)
			}
		})
	}
}

func TestNormalizeBankKey(t *testing.T) {
	if models.NormalizeBankKey("BC C") != models.NormalizeBankKey("BCC") {
		t.Error("whitespace-insensitive keys must match")
	}
	if models.NormalizeBankKey("Bank Not  Specified") != "banknotspecified" {
		t.Errorf("got %q", models.NormalizeBankKey("Bank Not  Specified"))
	}
	if models.NormalizeBankKey("Банк не указан") != "банкнеуказан" {
		t.Errorf("got %q", models.NormalizeBankKey("Банк не указан"))
	}
}
