package analytics

import (
	"time"

	"github.com/Veraticus/tally/internal/model"
)

const (
	// MonthlyWindowBuckets is the number of buckets in a trailing monthly series.
	MonthlyWindowBuckets = 12
	// BucketSpanDays approximates a calendar month. Boundaries are walked back
	// from the anchor in fixed steps, so labels can repeat or skip a month.
	BucketSpanDays = 30
)

// MonthlyBucket is one fixed-width window of a trailing series.
type MonthlyBucket struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Label        string    `json:"label"`
	Index        int       `json:"index"`
	TotalRevenue float64   `json:"total_revenue"`
}

// MonthlySeries is an ordered, oldest-first run of buckets. Indices parallels
// Buckets and is the independent variable for forecasting.
type MonthlySeries struct {
	Buckets []MonthlyBucket `json:"buckets"`
	Indices []int           `json:"indices"`
}

// Len returns the number of points in the series.
func (s MonthlySeries) Len() int {
	return len(s.Buckets)
}

// Points returns the series as parallel x (index) and y (revenue) slices.
func (s MonthlySeries) Points() (xs, ys []float64) {
	xs = make([]float64, len(s.Buckets))
	ys = make([]float64, len(s.Buckets))
	for i, b := range s.Buckets {
		xs[i] = float64(b.Index)
		if i < len(s.Indices) {
			xs[i] = float64(s.Indices[i])
		}
		ys[i] = b.TotalRevenue
	}
	return xs, ys
}

// Labels returns the bucket labels in order.
func (s MonthlySeries) Labels() []string {
	out := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Label
	}
	return out
}

// BucketMonthly sums revenue into twelve 30-day buckets ending at asOf.
//
// Bucket k, counting back from the most recent, spans
// [asOf - 30(k+1) days, asOf - 30k days]. A sale dated on a shared boundary
// lands in the more recent bucket. Sales after asOf or older than the oldest
// bucket are ignored. The result always has twelve buckets, oldest first.
func BucketMonthly(sales []model.Sale, asOf time.Time) MonthlySeries {
	anchor := model.DateOnly(asOf)

	series := MonthlySeries{
		Buckets: make([]MonthlyBucket, MonthlyWindowBuckets),
		Indices: make([]int, MonthlyWindowBuckets),
	}

	for k := 0; k < MonthlyWindowBuckets; k++ {
		pos := MonthlyWindowBuckets - 1 - k
		end := anchor.AddDate(0, 0, -BucketSpanDays*k)
		start := anchor.AddDate(0, 0, -BucketSpanDays*(k+1))
		series.Buckets[pos] = MonthlyBucket{
			Label: start.Month().String(),
			Index: pos,
			Start: start,
			End:   end,
		}
		series.Indices[pos] = pos
	}

	for i := range sales {
		k, ok := bucketFor(anchor, sales[i].Date)
		if !ok {
			continue
		}
		series.Buckets[MonthlyWindowBuckets-1-k].TotalRevenue += sales[i].RevenueFloat()
	}

	return series
}

// bucketFor returns the recency offset k of the bucket holding date.
func bucketFor(anchor, date time.Time) (int, bool) {
	days := int(anchor.Sub(model.DateOnly(date)).Hours() / 24)
	if days < 0 || days > BucketSpanDays*MonthlyWindowBuckets {
		return 0, false
	}
	if days == 0 {
		return 0, true
	}
	return (days - 1) / BucketSpanDays, true
}
