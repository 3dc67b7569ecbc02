package analytics

import (
	"fmt"
	"math"
)

// HistogramBins is the fixed number of bins in a revenue distribution.
const HistogramBins = 10

// Bin is one equal-width histogram bucket.
type Bin struct {
	Label string  `json:"label"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram is an ordered set of bins spanning the observed range.
type Histogram struct {
	Bins []Bin `json:"bins"`
}

// Total returns the number of values counted across all bins.
func (h Histogram) Total() int {
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}

// MaxCount returns the largest single bin count.
func (h Histogram) MaxCount() int {
	peak := 0
	for _, b := range h.Bins {
		if b.Count > peak {
			peak = b.Count
		}
	}
	return peak
}

// BinDistribution splits values into ten equal-width bins over [min, max].
// The maximum lands in the last bin. When every value is equal the width is
// zero and all values are counted in the first bin. Empty input yields no bins.
func BinDistribution(values []float64) Histogram {
	if len(values) == 0 {
		return Histogram{Bins: []Bin{}}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	width := (hi - lo) / HistogramBins

	bins := make([]Bin, HistogramBins)
	for i := range bins {
		low := lo + float64(i)*width
		high := lo + float64(i+1)*width
		bins[i] = Bin{
			Label: fmt.Sprintf("%d-%d", int(low), int(high)),
			Low:   low,
			High:  high,
		}
	}

	for _, v := range values {
		bins[binIndex(v, lo, width)].Count++
	}

	return Histogram{Bins: bins}
}

func binIndex(v, lo, width float64) int {
	if width == 0 {
		return 0
	}
	idx := int((v - lo) / width)
	switch {
	case idx < 0:
		return 0
	case idx >= HistogramBins:
		return HistogramBins - 1
	default:
		return idx
	}
}
