package product

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is an exact fixed-point amount with two fractional digits.
type Price struct {
	amount decimal.Decimal
}

// NewPrice wraps d, rounding half-up to two places.
func NewPrice(d decimal.Decimal) Price {
	return Price{amount: d.Round(PriceDecimalPlaces)}
}

// ParsePrice reads a stored price. It performs no business validation; use
// ValidatePrice for caller input.
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Price{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	return NewPrice(d), nil
}

// Decimal returns the underlying amount.
func (p Price) Decimal() decimal.Decimal { return p.amount }

// String renders the price with exactly two fractional digits, e.g. "10.50".
func (p Price) String() string { return p.amount.StringFixed(PriceDecimalPlaces) }

// MarshalJSON encodes the price as a fixed two-decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
