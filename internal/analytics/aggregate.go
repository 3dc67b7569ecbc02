package analytics

import "github.com/Veraticus/tally/internal/model"

// SummaryStats is the headline rollup of a set of sales.
type SummaryStats struct {
	Count        int     `json:"count"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalCost    float64 `json:"total_cost"`
	GrossProfit  float64 `json:"gross_profit"`
	ProfitMargin float64 `json:"profit_margin"` // percent of revenue
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
}

// Aggregate rolls up revenue, cost, and profit and describes the revenue
// distribution of the given sales.
func Aggregate(sales []model.Sale) SummaryStats {
	if len(sales) == 0 {
		return SummaryStats{}
	}

	revenues := Revenues(sales)
	totalCost := 0.0
	for i := range sales {
		totalCost += sales[i].CostFloat()
	}

	st := Describe(revenues)
	gross := st.Sum - totalCost

	return SummaryStats{
		Count:        st.Count,
		TotalRevenue: st.Sum,
		TotalCost:    totalCost,
		GrossProfit:  gross,
		ProfitMargin: ratio(gross, st.Sum) * 100,
		Mean:         st.Mean,
		Median:       st.Median,
		StdDev:       st.StdDev,
	}
}

// Revenues extracts revenue values in input order.
func Revenues(sales []model.Sale) []float64 {
	out := make([]float64, len(sales))
	for i := range sales {
		out[i] = sales[i].RevenueFloat()
	}
	return out
}
