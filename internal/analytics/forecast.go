package analytics

// ForecastHorizon is the number of future periods projected.
const ForecastHorizon = 3

// ForecastResult is a fitted linear trend and its projections.
type ForecastResult struct {
	Slope       float64                  `json:"slope"`
	Intercept   float64                  `json:"intercept"`
	Predictions [ForecastHorizon]float64 `json:"predictions"`
	WindowSize  int                      `json:"window_size"`
}

// Horizon returns the x values the predictions were made for.
func (r ForecastResult) Horizon() [ForecastHorizon]int {
	var out [ForecastHorizon]int
	for i := range out {
		out[i] = r.WindowSize + i
	}
	return out
}

// Forecast fits an ordinary least-squares line to the series and projects the
// next three periods. With fewer than two points no fit is attempted and the
// zero result is returned.
func Forecast(series MonthlySeries) ForecastResult {
	n := series.Len()
	if n < 2 {
		return ForecastResult{WindowSize: n}
	}

	xs, ys := series.Points()
	slope, intercept := FitLinear(xs, ys)

	res := ForecastResult{
		Slope:      slope,
		Intercept:  intercept,
		WindowSize: n,
	}
	for i := range res.Predictions {
		res.Predictions[i] = intercept + slope*float64(n+i)
	}
	return res
}

// FitLinear returns the closed-form OLS slope and intercept of ys on xs.
// If xs has no variance the slope is 0 and the intercept is mean(ys).
func FitLinear(xs, ys []float64) (slope, intercept float64) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n == 0 {
		return 0, 0
	}
	xs, ys = xs[:n], ys[:n]

	mx, my := mean(xs), mean(ys)
	var cov, varX float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		cov += dx * (ys[i] - my)
		varX += dx * dx
	}

	slope = ratio(cov, varX)
	return slope, my - slope*mx
}
