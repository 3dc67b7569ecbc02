package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale represents a single sales transaction for one product.
type Sale struct {
	Date      time.Time
	Revenue   decimal.Decimal
	Cost      decimal.Decimal
	Profit    decimal.Decimal // Always Revenue - Cost, see Recompute
	ID        int64
	ProductID int64
	Quantity  int

	// Populated by list queries that join the product table
	ProductName string
	Category    string
}

// NewSale builds a sale with its profit derived from revenue and cost.
func NewSale(productID int64, date time.Time, quantity int, revenue, cost decimal.Decimal) Sale {
	s := Sale{
		ProductID: productID,
		Date:      DateOnly(date),
		Quantity:  quantity,
		Revenue:   revenue,
		Cost:      cost,
	}
	s.Recompute()
	return s
}

// Recompute derives Profit from Revenue and Cost. Callers never set Profit directly.
func (s *Sale) Recompute() {
	s.Profit = s.Revenue.Sub(s.Cost)
}

// RevenueFloat returns the revenue as a float64 for statistical work.
func (s *Sale) RevenueFloat() float64 {
	return s.Revenue.InexactFloat64()
}

// CostFloat returns the cost as a float64 for statistical work.
func (s *Sale) CostFloat() float64 {
	return s.Cost.InexactFloat64()
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
