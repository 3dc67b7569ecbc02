package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, SummaryStats{}, Aggregate(nil))
	assert.Equal(t, SummaryStats{}, Aggregate([]model.Sale{}))
}

func TestAggregate(t *testing.T) {
	d := day(2025, 1, 10)
	sales := []model.Sale{
		sale(d, 100, 60),
		sale(d, 200, 120),
		sale(d, 300, 180),
		sale(d, 400, 240),
	}

	got := Aggregate(sales)

	assert.Equal(t, 4, got.Count)
	assert.InDelta(t, 1000, got.TotalRevenue, 1e-9)
	assert.InDelta(t, 600, got.TotalCost, 1e-9)
	assert.InDelta(t, 400, got.GrossProfit, 1e-9)
	assert.InDelta(t, 40, got.ProfitMargin, 1e-9)
	assert.InDelta(t, 250, got.Mean, 1e-9)
	assert.InDelta(t, 250, got.Median, 1e-9)
	assert.InDelta(t, 111.80339887, got.StdDev, 1e-6)
}

func TestAggregate_ZeroRevenueMargin(t *testing.T) {
	d := day(2025, 1, 1)
	got := Aggregate([]model.Sale{sale(d, 0, 5), sale(d, 0, 10)})

	assert.InDelta(t, -15, got.GrossProfit, 1e-9)
	assert.Zero(t, got.ProfitMargin)
}

func TestAggregate_TotalMatchesSum(t *testing.T) {
	cases := [][]float64{
		{1},
		{3.5, 2.25},
		{85000, 1500, 3500, 25000, 5000, 1500},
		{0.01, 0.02, 0.03, 1000000},
	}

	for _, revenues := range cases {
		sales := salesWithRevenues(day(2025, 5, 1), revenues...)
		got := Aggregate(sales)

		want := 0.0
		for _, r := range revenues {
			want += r
		}
		require.Equal(t, len(revenues), got.Count)
		assert.InDelta(t, want, got.TotalRevenue, 1e-6)
		assert.InDelta(t, got.TotalRevenue/float64(got.Count), got.Mean, 1e-9)
	}
}

func TestDescribe_MedianOddAndUnsorted(t *testing.T) {
	values := []float64{9, 1, 5}
	st := Describe(values)

	assert.InDelta(t, 5, st.Median, 1e-9)
	assert.Equal(t, []float64{9, 1, 5}, values, "input must not be reordered")
}

func TestDescribe_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Describe(nil))
}
