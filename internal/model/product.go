package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Product is a sellable item. Names are unique regardless of case.
type Product struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Cost     decimal.Decimal
	ID       int64
}

// Margin returns the unit profit margin as a percentage of price.
// A zero price yields a zero margin.
func (p *Product) Margin() decimal.Decimal {
	if p.Price.IsZero() {
		return decimal.Zero
	}
	return p.Price.Sub(p.Cost).Div(p.Price).Mul(hundred)
}

// ProductTotal pairs a product with the sum of all of its sales.
type ProductTotal struct {
	Product    Product
	Revenue    decimal.Decimal
	SalesCount int
}
