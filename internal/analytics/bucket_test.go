package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

func TestBucketMonthly_EmptyHasTwelveChronologicalBuckets(t *testing.T) {
	asOf := day(2025, 6, 30)
	series := BucketMonthly(nil, asOf)

	require.Len(t, series.Buckets, MonthlyWindowBuckets)
	require.Len(t, series.Indices, MonthlyWindowBuckets)
	for i, b := range series.Buckets {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, i, series.Indices[i])
		assert.Zero(t, b.TotalRevenue)
		if i > 0 {
			assert.True(t, b.Start.After(series.Buckets[i-1].Start), "bucket %d out of order", i)
		}
	}

	last := series.Buckets[MonthlyWindowBuckets-1]
	assert.Equal(t, asOf, last.End)
	assert.Equal(t, day(2025, 5, 31), last.Start)
	assert.Equal(t, "May", last.Label)

	first := series.Buckets[0]
	assert.Equal(t, day(2024, 7, 5), first.Start)
	assert.Equal(t, "July", first.Label)
}

func TestBucketMonthly_Placement(t *testing.T) {
	asOf := day(2025, 6, 30)

	tests := []struct {
		name    string
		date    time.Time
		wantPos int
		ignored bool
	}{
		{name: "anchor day", date: asOf, wantPos: 11},
		{name: "anchor with time of day", date: asOf.Add(15 * time.Hour), wantPos: 11},
		{name: "shared boundary goes to newer bucket", date: asOf.AddDate(0, 0, -30), wantPos: 11},
		{name: "day past boundary", date: asOf.AddDate(0, 0, -31), wantPos: 10},
		{name: "oldest edge", date: asOf.AddDate(0, 0, -360), wantPos: 0},
		{name: "beyond window", date: asOf.AddDate(0, 0, -361), ignored: true},
		{name: "future sale", date: asOf.AddDate(0, 0, 1), ignored: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := BucketMonthly([]model.Sale{sale(tt.date, 42, 0)}, asOf)

			total := 0.0
			for _, b := range series.Buckets {
				total += b.TotalRevenue
			}
			if tt.ignored {
				assert.Zero(t, total)
				return
			}
			assert.InDelta(t, 42, series.Buckets[tt.wantPos].TotalRevenue, 1e-9)
			assert.InDelta(t, 42, total, 1e-9)
		})
	}
}

func TestBucketMonthly_SumsWithinBucket(t *testing.T) {
	asOf := day(2025, 6, 30)
	sales := []model.Sale{
		sale(asOf, 10, 0),
		sale(asOf.AddDate(0, 0, -5), 15, 0),
		sale(asOf.AddDate(0, 0, -45), 100, 0),
	}

	series := BucketMonthly(sales, asOf)
	assert.InDelta(t, 25, series.Buckets[11].TotalRevenue, 1e-9)
	assert.InDelta(t, 100, series.Buckets[10].TotalRevenue, 1e-9)
}

// Thirty-day steps do not follow calendar months; near the end of March the
// walk back skips February entirely.
func TestBucketMonthly_ThirtyDayLabelQuirk(t *testing.T) {
	series := BucketMonthly(nil, day(2025, 3, 31))
	labels := series.Labels()

	assert.Equal(t, "March", labels[11])
	assert.Equal(t, "January", labels[10])
	assert.Equal(t, "December", labels[9])
	assert.NotContains(t, labels[9:], "February")
}
