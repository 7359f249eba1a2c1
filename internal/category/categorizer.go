package category

import "strings"

// AutoCategorize maps a merchant to a category name. Precedence: exact MCC
// lookup first, then case-insensitive keyword match against the merchant
// name in the fixed rule order. ok is false when neither table matches; the
// caller then flags the merchant for manual categorization.
func AutoCategorize(merchantName, mccCode string) (string, bool) {
	if name, ok := mccCategories[mccCode]; ok {
		return name, true
	}

	upper := strings.ToUpper(merchantName)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(upper, kw) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// mccCategories is a curated subset of the 4-digit MCC registry, reduced to
// the codes that actually show up on card statements.
var mccCategories = map[string]string{
	// Food
	"5411": "Groceries",
	"5412": "Groceries",
	"5422": "Groceries",
	"5441": "Groceries",
	"5451": "Groceries",
	"5462": "Bakeries",
	"5499": "Groceries",
	"5811": "Restaurants",
	"5812": "Restaurants",
	"5813": "Bars",
	"5814": "Fast Food",

	// Transport
	"4111": "Transport",
	"4112": "Transport",
	"4121": "Taxi",
	"4131": "Transport",
	"4511": "Flights",
	"4722": "Travel",
	"5541": "Fuel",
	"5542": "Fuel",
	"7523": "Parking",

	// Shopping
	"5200": "Home",
	"5311": "Shopping",
	"5331": "Shopping",
	"5399": "Shopping",
	"5641": "Clothing",
	"5651": "Clothing",
	"5661": "Clothing",
	"5691": "Clothing",
	"5712": "Home",
	"5719": "Home",
	"5732": "Electronics",
	"5942": "Books",
	"5943": "Office Supplies",
	"5977": "Beauty",
	"5999": "Shopping",

	// Health
	"5912": "Pharmacies",
	"8011": "Healthcare",
	"8021": "Healthcare",
	"8062": "Healthcare",
	"8099": "Healthcare",

	// Services
	"4812": "Telecom",
	"4814": "Telecom",
	"4899": "Subscriptions",
	"4900": "Utilities",
	"5968": "Subscriptions",
	"7011": "Hotels",
	"7230": "Beauty",
	"7298": "Beauty",
	"7299": "Services",
	"7372": "Software",
	"7832": "Entertainment",
	"7994": "Entertainment",
	"7995": "Entertainment",
	"8299": "Education",
}

// keywordRules is the fallback when the MCC is missing or unmapped. Rules are
// evaluated in this order and the first hit wins, so more specific categories
// go first.
var keywordRules = []struct {
	category string
	keywords []string
}{
	{"Coffee", []string{"COFFEE", "CAFE", "STARBUCKS", "ESPRESSO"}},
	{"Fast Food", []string{"MCDONALD", "KFC", "BURGER", "PIZZA", "KEBAB"}},
	{"Restaurants", []string{"RESTAURANT", "RESTORAN", "BISTRO", "SUSHI"}},
	{"Groceries", []string{"SUPERMARKET", "MARKET", "GROCER", "FOODSTORE", "MINIMART"}},
	{"Taxi", []string{"TAXI", "UBER", "BOLT", "GRAB", "YANDEX GO"}},
	{"Fuel", []string{"PETROL", "FUEL", "SHELL", "PETRONAS"}},
	{"Pharmacies", []string{"PHARMACY", "APTEKA", "DRUGSTORE"}},
	{"Hotels", []string{"HOTEL", "HOSTEL", "RESORT"}},
	{"Subscriptions", []string{"NETFLIX", "SPOTIFY", "YOUTUBE", "ICLOUD", "GOOGLE ONE"}},
	{"Telecom", []string{"MOBILE", "TELEKOM", "TELECOM", "CELCOM"}},
	{"Clothing", []string{"UNIQLO", "ZARA", "H&M", "FASHION"}},
	{"Shopping", []string{"STORE", "SHOP", "MALL", "MUJI"}},
}
