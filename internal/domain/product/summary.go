package product

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Summary aggregates the catalog for dashboard cards.
type Summary struct {
	TotalProducts int
	TotalValue    decimal.Decimal
	AveragePrice  decimal.Decimal
	LowStock      int
	OutOfStock    int
	InStockRatio  decimal.Decimal
}

// Summarize computes a Summary over products. An empty catalog yields zero
// values rather than a division error.
func Summarize(products []*Product) Summary {
	s := Summary{
		TotalProducts: len(products),
		TotalValue:    decimal.Zero,
		AveragePrice:  decimal.Zero,
		InStockRatio:  decimal.Zero,
	}
	if len(products) == 0 {
		return s
	}

	priceSum := decimal.Zero
	for _, p := range products {
		amount := p.Price.Decimal()
		priceSum = priceSum.Add(amount)
		s.TotalValue = s.TotalValue.Add(amount.Mul(decimal.NewFromInt(int64(p.Quantity))))
		if p.Quantity < LowStockThreshold {
			s.LowStock++
		}
		if p.Quantity == 0 {
			s.OutOfStock++
		}
	}

	total := decimal.NewFromInt(int64(s.TotalProducts))
	s.AveragePrice = priceSum.DivRound(total, PriceDecimalPlaces)
	inStock := decimal.NewFromInt(int64(s.TotalProducts - s.OutOfStock))
	s.InStockRatio = inStock.Mul(decimal.NewFromInt(100)).DivRound(total, 1)
	return s
}

// MarshalJSON renders amounts as fixed-point strings.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalProducts int    `json:"totalProducts"`
		TotalValue    string `json:"totalValue"`
		AveragePrice  string `json:"averagePrice"`
		LowStock      int    `json:"lowStock"`
		OutOfStock    int    `json:"outOfStock"`
		InStockRatio  string `json:"inStockRatio"`
	}{
		TotalProducts: s.TotalProducts,
		TotalValue:    s.TotalValue.StringFixed(PriceDecimalPlaces),
		AveragePrice:  s.AveragePrice.StringFixed(PriceDecimalPlaces),
		LowStock:      s.LowStock,
		OutOfStock:    s.OutOfStock,
		InStockRatio:  s.InStockRatio.StringFixed(1),
	})
}
