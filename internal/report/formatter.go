// Package report renders analytics results for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/analytics"
	"github.com/Veraticus/tally/internal/cli"
)

const barWidth = 30

// Formatter renders dashboard sections as styled text.
type Formatter struct {
	styles   *Styles
	currency string
}

// NewFormatter creates a formatter that prefixes money with currency.
func NewFormatter(currency string) *Formatter {
	return &Formatter{
		styles:   NewStyles(),
		currency: currency,
	}
}

// WithWidth returns a formatter whose boxes fit the given terminal width.
func (f *Formatter) WithWidth(width int) *Formatter {
	return &Formatter{
		styles:   f.styles.WithWidth(width),
		currency: f.currency,
	}
}

// Money formats v with the formatter's currency, two decimals and thousands separators.
func (f *Formatter) Money(v float64) string {
	return f.currency + FormatAmount(decimal.NewFromFloat(v))
}

// FormatAmount renders d with two decimals and comma thousands separators.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// Header renders a report title and timestamp.
func (f *Formatter) Header(h analytics.ReportHeader) string {
	title := f.styles.Title.UnsetMargins().Render(h.DisplayTitle())
	generated := f.styles.Subtle.Render("Generated: " + h.Timestamp())
	return title + "\n" + generated
}

// Dashboard renders every section.
func (f *Formatter) Dashboard(d analytics.Dashboard) string {
	return strings.Join([]string{
		f.Summary(d.Sales),
		f.Distribution(d.Sales),
		f.Trend(d.Trend),
		f.Market(d.Market),
		f.Evaluation(d.Evaluation),
	}, "\n\n")
}

// Summary renders the headline statistics of a sales section.
func (f *Formatter) Summary(section analytics.SalesSection) string {
	s := section.Summary
	if s.Count == 0 {
		return f.Header(section.Header) + "\n" + f.box(cli.ChartIcon+" Summary", f.styles.Subtle.Render("No sales recorded"))
	}

	profitStyle := f.styles.Success
	if s.GrossProfit < 0 {
		profitStyle = f.styles.Error
	}

	lines := []string{
		f.row("Sales", fmt.Sprintf("%d", s.Count)),
		f.row("Total revenue", f.styles.Figure.Render(f.Money(s.TotalRevenue))),
		f.row("Total cost", f.Money(s.TotalCost)),
		f.row("Gross profit", profitStyle.Render(f.Money(s.GrossProfit))),
		f.row("Profit margin", fmt.Sprintf("%.2f%%", s.ProfitMargin)),
		"",
		f.row("Mean sale", f.Money(s.Mean)),
		f.row("Median sale", f.Money(s.Median)),
		f.row("Std deviation", f.Money(s.StdDev)),
	}

	return f.Header(section.Header) + "\n" + f.box(cli.ChartIcon+" Summary", strings.Join(lines, "\n"))
}

// Distribution renders the revenue histogram of a sales section.
func (f *Formatter) Distribution(section analytics.SalesSection) string {
	hist := section.Distribution
	if len(hist.Bins) == 0 {
		return f.box(cli.ChartIcon+" Revenue Distribution", f.styles.Subtle.Render("No sales recorded"))
	}

	labelWidth := 0
	for _, b := range hist.Bins {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
	}

	peak := hist.MaxCount()
	lines := make([]string, 0, len(hist.Bins))
	for _, b := range hist.Bins {
		lines = append(lines, fmt.Sprintf("%*s %s %d",
			labelWidth, b.Label, f.bar(float64(b.Count), float64(peak)), b.Count))
	}

	return f.box(cli.ChartIcon+" Revenue Distribution", strings.Join(lines, "\n"))
}

// Trend renders the monthly series and the three projected periods.
func (f *Formatter) Trend(section analytics.TrendSection) string {
	series := section.Series
	peak := 0.0
	for _, b := range series.Buckets {
		peak = max(peak, b.TotalRevenue)
	}
	for _, p := range section.Forecast.Predictions {
		peak = max(peak, p)
	}

	lines := make([]string, 0, series.Len()+len(section.Forecast.Predictions)+3)
	for _, b := range series.Buckets {
		lines = append(lines, fmt.Sprintf("%2d %-9s %s %s",
			b.Index, b.Label, f.bar(b.TotalRevenue, peak), f.Money(b.TotalRevenue)))
	}

	fc := section.Forecast
	if fc.WindowSize < 2 {
		lines = append(lines, "", f.styles.Subtle.Render("Not enough data to forecast"))
	} else {
		lines = append(lines, "")
		horizon := fc.Horizon()
		for i, p := range fc.Predictions {
			lines = append(lines, f.styles.Forecast.Render(fmt.Sprintf("%2d %-9s %s %s",
				horizon[i], "forecast", f.bar(max(p, 0), peak), f.Money(p))))
		}
		lines = append(lines, "", f.styles.Subtle.Render(fmt.Sprintf("Trend: %s per period (intercept %s)",
			f.Money(fc.Slope), f.Money(fc.Intercept))))
	}

	return f.Header(section.Header) + "\n" + f.box(cli.TrendIcon+" Monthly Revenue", strings.Join(lines, "\n"))
}

// Market renders market share by product.
func (f *Formatter) Market(section analytics.MarketSection) string {
	if len(section.Entries) == 0 {
		return f.Header(section.Header) + "\n" + f.box(cli.PieIcon+" Market Share", f.styles.Subtle.Render("No product has revenue yet"))
	}

	nameWidth := 0
	for _, e := range section.Entries {
		nameWidth = max(nameWidth, lipgloss.Width(e.Name))
	}

	lines := make([]string, 0, len(section.Entries))
	for _, e := range section.Entries {
		lines = append(lines, fmt.Sprintf("%-*s %s %6.2f%%  %s",
			nameWidth, e.Name, f.bar(e.Percentage, 100), e.Percentage, f.Money(e.Revenue)))
	}

	if top, ok := analytics.TopShare(section.Entries); ok {
		lines = append(lines, "", f.styles.Info.Render(fmt.Sprintf("Leader: %s (%s)", top.Name, top.Category)))
	}

	return f.Header(section.Header) + "\n" + f.box(cli.PieIcon+" Market Share", strings.Join(lines, "\n"))
}

// Evaluation renders the confusion matrix and derived metrics.
func (f *Formatter) Evaluation(section analytics.EvaluationSection) string {
	ev := section.Evaluation
	if ev.Counts.Total() == 0 {
		return f.Header(section.Header) + "\n" + f.box(cli.TargetIcon+" Heuristic Evaluation",
			f.styles.Subtle.Render("At least two sales are needed to evaluate"))
	}

	cell := f.styles.MatrixCell
	matrix := []string{
		cell.Render("") + cell.Render("pred. up") + cell.Render("pred. down"),
		cell.Render("actual up") + cell.Render(fmt.Sprint(ev.Counts.TruePositive)) + cell.Render(fmt.Sprint(ev.Counts.FalseNegative)),
		cell.Render("actual down") + cell.Render(fmt.Sprint(ev.Counts.FalsePositive)) + cell.Render(fmt.Sprint(ev.Counts.TrueNegative)),
	}

	metrics := []string{
		f.row("Accuracy", f.styles.Figure.Render(fmt.Sprintf("%.2f%%", ev.Accuracy*100))),
		f.row("Precision", fmt.Sprintf("%.2f%%", ev.Precision*100)),
		f.row("Recall", fmt.Sprintf("%.2f%%", ev.Recall*100)),
		f.row("F1 score", fmt.Sprintf("%.2f%%", ev.F1*100)),
		f.row("Mean revenue", f.Money(ev.MeanRevenue)),
		f.row("Sample size", fmt.Sprintf("%d sales", ev.SampleSize)),
	}

	body := strings.Join(matrix, "\n") + "\n\n" + strings.Join(metrics, "\n")
	return f.Header(section.Header) + "\n" + f.box(cli.TargetIcon+" Heuristic Evaluation", body)
}

func (f *Formatter) row(label, value string) string {
	return f.styles.Label.Render(label) + value
}

func (f *Formatter) box(title, content string) string {
	boxTitle := f.styles.Title.UnsetMargins().Render(title)
	return f.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitle, content))
}

// bar draws value as a share of peak.
func (f *Formatter) bar(value, peak float64) string {
	filled := 0
	if peak > 0 {
		filled = int(float64(barWidth) * value / peak)
	}
	filled = min(max(filled, 0), barWidth)
	return f.styles.BarFill.Render(strings.Repeat("█", filled)) +
		f.styles.BarEmpty.Render(strings.Repeat("░", barWidth-filled))
}
