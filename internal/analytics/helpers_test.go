package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

func sale(date time.Time, revenue, cost float64) model.Sale {
	return model.NewSale(1, date, 1, decimal.NewFromFloat(revenue), decimal.NewFromFloat(cost))
}

// salesWithRevenues builds sales one day apart, newest first.
func salesWithRevenues(newest time.Time, revenues ...float64) []model.Sale {
	out := make([]model.Sale, len(revenues))
	for i, r := range revenues {
		out[i] = sale(newest.AddDate(0, 0, -i), r, 0)
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
