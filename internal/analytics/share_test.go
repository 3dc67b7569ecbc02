package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

func total(name, category string, revenue int64) model.ProductTotal {
	return model.ProductTotal{
		Product: model.Product{Name: name, Category: category},
		Revenue: decimal.NewFromInt(revenue),
	}
}

func TestMarketShare(t *testing.T) {
	entries := MarketShare([]model.ProductTotal{
		total("Wireless Mouse X", "mouse", 300),
		total("Gaming Headset Pro", "headset", 100),
		total("Unsold Webcam", "camera", 0),
		total("4K Monitor Ultra", "monitor", 600),
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "4K Monitor Ultra", entries[0].Name)
	assert.Equal(t, "monitor", entries[0].Category)
	assert.InDelta(t, 60, entries[0].Percentage, 1e-9)
	assert.Equal(t, "Wireless Mouse X", entries[1].Name)
	assert.InDelta(t, 30, entries[1].Percentage, 1e-9)
	assert.InDelta(t, 10, entries[2].Percentage, 1e-9)

	sum := 0.0
	for _, e := range entries {
		sum += e.Percentage
	}
	assert.InDelta(t, 100, sum, 1e-9)

	top, ok := TopShare(entries)
	assert.True(t, ok)
	assert.Equal(t, "4K Monitor Ultra", top.Name)
}

func TestMarketShare_NoSales(t *testing.T) {
	entries := MarketShare([]model.ProductTotal{total("A", "x", 0), total("B", "y", 0)})
	assert.Empty(t, entries)

	_, ok := TopShare(entries)
	assert.False(t, ok)
}

func TestMarketShare_TiesOrderedByName(t *testing.T) {
	entries := MarketShare([]model.ProductTotal{total("Zeta", "", 50), total("Alpha", "", 50)})

	require.Len(t, entries, 2)
	assert.Equal(t, "Alpha", entries[0].Name)
	assert.InDelta(t, 50, entries[1].Percentage, 1e-9)
}

func TestMarketShare_SingleProductFromAggregate(t *testing.T) {
	sales := salesWithRevenues(day(2025, 2, 1), 1500, 3000, 4500)
	summary := Aggregate(sales)

	entries := MarketShare([]model.ProductTotal{{
		Product: model.Product{Name: "Wireless Mouse X"},
		Revenue: decimal.NewFromFloat(summary.TotalRevenue),
	}})

	require.Len(t, entries, 1)
	assert.InDelta(t, 100, entries[0].Percentage, 1e-9)
}
