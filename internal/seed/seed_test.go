package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/testutil"
)

type countingProgress struct{ steps int }

func (c *countingProgress) Add(n int) error {
	c.steps += n
	return nil
}

var end = time.Date(2025, 6, 30, 15, 4, 5, 0, time.UTC)

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 5)
	for _, p := range catalog {
		assert.True(t, p.Price.GreaterThan(p.Cost), p.Name)
		assert.NotEmpty(t, p.Category)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	products := Catalog()
	for i := range products {
		products[i].ID = int64(i + 1)
	}
	opts := Options{End: end, Days: 30, Seed: 42}

	a := NewGenerator(opts)
	b := NewGenerator(opts)
	for _, date := range a.Dates() {
		assert.Equal(t, a.Day(date, products), b.Day(date, products))
	}
}

func TestGenerator_Bounds(t *testing.T) {
	products := Catalog()
	for i := range products {
		products[i].ID = int64(i + 1)
	}
	gen := NewGenerator(Options{End: end, Days: 60, Seed: 7, MaxPerDay: 3, MaxQuantity: 4})

	dates := gen.Dates()
	require.Len(t, dates, 61)
	assert.Equal(t, model.DateOnly(end), dates[len(dates)-1])
	assert.Equal(t, model.DateOnly(end).AddDate(0, 0, -60), dates[0])

	for _, date := range dates {
		perProduct := make(map[int64]int)
		for _, s := range gen.Day(date, products) {
			perProduct[s.ProductID]++
			assert.Equal(t, date, s.Date)
			assert.GreaterOrEqual(t, s.Quantity, 1)
			assert.LessOrEqual(t, s.Quantity, 4)
			assert.True(t, s.Profit.Equal(s.Revenue.Sub(s.Cost)))
		}
		for _, n := range perProduct {
			assert.LessOrEqual(t, n, 3)
		}
	}
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, DefaultDays, opts.Days)
	assert.Equal(t, DefaultMaxPerDay, opts.MaxPerDay)
	assert.Equal(t, DefaultMaxQuantity, opts.MaxQuantity)
	assert.NotZero(t, opts.Seed)
	assert.Equal(t, DefaultDays+1, Options{}.TotalDays())
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("append creates catalog once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		progress := &countingProgress{}
		opts := Options{End: end, Days: 10, Seed: 1}

		first, err := Run(ctx, db.Storage, opts, progress)
		require.NoError(t, err)
		assert.Equal(t, 5, first.Created)
		assert.Equal(t, 11, progress.steps)

		second, err := Run(ctx, db.Storage, opts, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Created)

		totals, err := db.Storage.GetSalesTotals(ctx, service.SaleFilter{})
		require.NoError(t, err)
		assert.Equal(t, first.Sales+second.Sales, totals.Count)
		assert.True(t, totals.Revenue.Equal(first.Revenue.Add(second.Revenue)))
	})

	t.Run("clear replaces existing sales", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		opts := Options{End: end, Days: 5, Seed: 3}

		first, err := Run(ctx, db.Storage, opts, nil)
		require.NoError(t, err)

		opts.Clear = true
		second, err := Run(ctx, db.Storage, opts, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(first.Sales), second.Cleared)
		assert.Equal(t, first.Sales, second.Sales, "same seed, same data")

		sales, err := db.Storage.ListSales(ctx, service.SaleFilter{})
		require.NoError(t, err)
		assert.Len(t, sales, second.Sales)
		for _, s := range sales {
			assert.False(t, s.Date.After(model.DateOnly(end)))
			assert.False(t, s.Date.Before(model.DateOnly(end).AddDate(0, 0, -5)))
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Run(canceled, db.Storage, Options{End: end, Days: 5, Seed: 3}, nil)
		assert.Error(t, err)
	})
}
