package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinDistribution_Empty(t *testing.T) {
	h := BinDistribution(nil)
	assert.Empty(t, h.Bins)
	assert.Zero(t, h.Total())
}

func TestBinDistribution_DegenerateRange(t *testing.T) {
	h := BinDistribution([]float64{10, 10, 10, 10, 10})

	require.Len(t, h.Bins, HistogramBins)
	populated := 0
	for _, b := range h.Bins {
		if b.Count > 0 {
			populated++
		}
	}
	assert.Equal(t, 1, populated)
	assert.Equal(t, 5, h.Bins[0].Count)
	assert.Equal(t, 10.0, h.Bins[0].Low)
	assert.Equal(t, 10.0, h.Bins[0].High)
	assert.Equal(t, "10-10", h.Bins[0].Label)
}

func TestBinDistribution_EqualWidth(t *testing.T) {
	values := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	h := BinDistribution(values)

	require.Len(t, h.Bins, HistogramBins)
	assert.Equal(t, "0-10", h.Bins[0].Label)
	assert.Equal(t, "90-100", h.Bins[9].Label)
	for i := 0; i < 9; i++ {
		assert.Equal(t, 1, h.Bins[i].Count, "bin %d", i)
	}
	assert.Equal(t, 2, h.Bins[9].Count, "maximum belongs to the last bin")
	assert.Equal(t, len(values), h.Total())
	assert.Equal(t, 2, h.MaxCount())
}

func TestBinDistribution_TruncatedLabels(t *testing.T) {
	h := BinDistribution([]float64{0.5, 10.5})

	assert.Equal(t, "0-1", h.Bins[0].Label)
	assert.Equal(t, "9-10", h.Bins[9].Label)
	assert.Equal(t, 1, h.Bins[0].Count)
	assert.Equal(t, 1, h.Bins[9].Count)
}
