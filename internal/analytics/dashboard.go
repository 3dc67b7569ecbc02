package analytics

import (
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// DashboardInput is the record snapshot a dashboard is computed from.
type DashboardInput struct {
	AsOf        time.Time
	GeneratedAt time.Time
	Sales       []model.Sale         // filtered sales for summary and distribution
	Trend       []model.Sale         // sales covering the trailing window
	Recent      []model.Sale         // newest first, for evaluation
	Totals      []model.ProductTotal // per-product totals for market share
	EvalWindow  int                  // 0 means EvaluationWindow
}

// SalesSection is the summary and distribution part of a dashboard.
type SalesSection struct {
	Header       ReportHeader `json:"header"`
	Summary      SummaryStats `json:"summary"`
	Distribution Histogram    `json:"distribution"`
}

// TrendSection is the monthly series and its forecast.
type TrendSection struct {
	Header   ReportHeader   `json:"header"`
	Series   MonthlySeries  `json:"series"`
	Forecast ForecastResult `json:"forecast"`
}

// MarketSection lists market share by product.
type MarketSection struct {
	Header  ReportHeader `json:"header"`
	Entries []ShareEntry `json:"entries"`
}

// EvaluationSection holds the heuristic classifier score.
type EvaluationSection struct {
	Header     ReportHeader `json:"header"`
	Evaluation Evaluation   `json:"evaluation"`
}

// Dashboard bundles every report computed from one snapshot.
type Dashboard struct {
	Sales      SalesSection      `json:"sales"`
	Trend      TrendSection      `json:"trend"`
	Market     MarketSection     `json:"market"`
	Evaluation EvaluationSection `json:"evaluation"`
}

// BuildSales computes the sales section.
func BuildSales(sales []model.Sale, at time.Time) SalesSection {
	return SalesSection{
		Header:       NewReportHeader(TitleSales, at),
		Summary:      Aggregate(sales),
		Distribution: BinDistribution(Revenues(sales)),
	}
}

// BuildTrend computes the trend section anchored at asOf.
func BuildTrend(sales []model.Sale, asOf, at time.Time) TrendSection {
	series := BucketMonthly(sales, asOf)
	return TrendSection{
		Header:   NewReportHeader(TitlePrediction, at),
		Series:   series,
		Forecast: Forecast(series),
	}
}

// BuildMarket computes the market share section.
func BuildMarket(totals []model.ProductTotal, at time.Time) MarketSection {
	return MarketSection{
		Header:  NewReportHeader(TitleMarket, at),
		Entries: MarketShare(totals),
	}
}

// BuildEvaluation computes the heuristic evaluation section over the first
// window recent sales.
func BuildEvaluation(recent []model.Sale, window int, at time.Time) EvaluationSection {
	return EvaluationSection{
		Header:     NewReportHeader(TitleEvaluation, at),
		Evaluation: EvaluateHeuristicWindow(recent, window),
	}
}

// BuildDashboard runs every report over the snapshot. Trend falls back to
// Sales when no separate trend window was supplied.
func BuildDashboard(in DashboardInput) Dashboard {
	trend := in.Trend
	if trend == nil {
		trend = in.Sales
	}
	return Dashboard{
		Sales:      BuildSales(in.Sales, in.GeneratedAt),
		Trend:      BuildTrend(trend, in.AsOf, in.GeneratedAt),
		Market:     BuildMarket(in.Totals, in.GeneratedAt),
		Evaluation: BuildEvaluation(in.Recent, in.EvalWindow, in.GeneratedAt),
	}
}
