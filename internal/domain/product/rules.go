package product

import "github.com/shopspring/decimal"

// Field names as they appear in payloads and field error maps.
const (
	FieldName        = "name"
	FieldSKU         = "sku"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldQuantity    = "quantity"
)

// Canonical limits. The server enforces them; clients read them from Rules.
const (
	NameMinLength      = 2
	NameMaxLength      = 255
	SKUMaxLength       = 255
	PriceDecimalPlaces = 2
	QuantityMax        = 2147483647
	LowStockThreshold  = 10
)

var maxPrice = decimal.RequireFromString("999999.99")

// RuleSet is the shared rule table served to clients so that form hints
// match what the store enforces.
type RuleSet struct {
	NameMinLength      int    `json:"nameMinLength"`
	NameMaxLength      int    `json:"nameMaxLength"`
	SKUMaxLength       int    `json:"skuMaxLength"`
	PriceMinExclusive  string `json:"priceMinExclusive"`
	PriceMax           string `json:"priceMax"`
	PriceDecimalPlaces int    `json:"priceDecimalPlaces"`
	QuantityMin        int    `json:"quantityMin"`
	QuantityMax        int    `json:"quantityMax"`
	LowStockThreshold  int    `json:"lowStockThreshold"`
}

// Rules returns the rule table applied by Validate.
func Rules() RuleSet {
	return RuleSet{
		NameMinLength:      NameMinLength,
		NameMaxLength:      NameMaxLength,
		SKUMaxLength:       SKUMaxLength,
		PriceMinExclusive:  "0.00",
		PriceMax:           maxPrice.StringFixed(PriceDecimalPlaces),
		PriceDecimalPlaces: PriceDecimalPlaces,
		QuantityMin:        0,
		QuantityMax:        QuantityMax,
		LowStockThreshold:  LowStockThreshold,
	}
}
