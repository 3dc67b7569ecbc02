package analytics

import (
	"sort"

	"github.com/Veraticus/tally/internal/model"
)

// ShareEntry is a product's slice of total revenue.
type ShareEntry struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// MarketShare computes each selling product's percentage of combined revenue,
// ordered by descending revenue. Products without positive revenue are left out.
func MarketShare(totals []model.ProductTotal) []ShareEntry {
	entries := make([]ShareEntry, 0, len(totals))
	sum := 0.0
	for i := range totals {
		rev := totals[i].Revenue.InexactFloat64()
		if rev <= 0 {
			continue
		}
		sum += rev
		entries = append(entries, ShareEntry{
			Name:     totals[i].Product.Name,
			Category: totals[i].Product.Category,
			Revenue:  rev,
		})
	}

	denom := sum
	if denom == 0 {
		denom = 1
	}
	for i := range entries {
		entries[i].Percentage = entries[i].Revenue / denom * 100
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Revenue != entries[j].Revenue {
			return entries[i].Revenue > entries[j].Revenue
		}
		return entries[i].Name < entries[j].Name
	})

	return entries
}

// TopShare returns the leading entry, if any.
func TopShare(entries []ShareEntry) (ShareEntry, bool) {
	if len(entries) == 0 {
		return ShareEntry{}, false
	}
	return entries[0], true
}
