package analytics

import (
	"math"
	"sort"
)

// Stats holds descriptive statistics over a set of values.
type Stats struct {
	Count  int
	Sum    float64
	Mean   float64
	Median float64
	StdDev float64 // population standard deviation
}

// Describe computes descriptive statistics. An empty slice yields all zeros.
func Describe(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	return Stats{
		Count:  n,
		Sum:    sum,
		Mean:   mean,
		Median: median(values),
		StdDev: math.Sqrt(variance),
	}
}

// median sorts a copy so the caller's slice is left untouched.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ratio divides, returning 0 when the denominator is 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
