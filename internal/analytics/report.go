package analytics

import "time"

// Report titles used by the dashboard sections.
const (
	TitleSales      = "Sales Analysis Report"
	TitleMarket     = "Market Share Analysis Report"
	TitlePrediction = "Sales Prediction Report (Linear Regression)"
	TitleEvaluation = "Model Evaluation Report"
)

// TimestampLayout formats report generation times.
const TimestampLayout = "2006-01-02 15:04:05"

// ReportHeader carries the presentation metadata shared by every report.
type ReportHeader struct {
	GeneratedAt time.Time `json:"generated_at"`
	Title       string    `json:"title"`
}

// NewReportHeader stamps a header with the given title and time.
func NewReportHeader(title string, at time.Time) ReportHeader {
	return ReportHeader{Title: title, GeneratedAt: at}
}

// DisplayTitle returns the title as shown to readers.
func (h ReportHeader) DisplayTitle() string {
	return "Report: " + h.Title
}

// Timestamp returns the generation time in TimestampLayout.
func (h ReportHeader) Timestamp() string {
	return h.GeneratedAt.Format(TimestampLayout)
}
