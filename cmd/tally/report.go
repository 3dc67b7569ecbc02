package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/analytics"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/report"
)

// Report kinds accepted by 'tally report'.
const (
	reportSummary      = "summary"
	reportTrend        = "trend"
	reportDistribution = "distribution"
	reportMarket       = "market"
	reportEval         = "eval"
	reportAll          = "all"
)

var reportKinds = []string{reportSummary, reportTrend, reportDistribution, reportMarket, reportEval, reportAll}

func reportCmd() *cobra.Command {
	var (
		flags  saleFilterFlags
		asOf   string
		format string
	)

	cmd := &cobra.Command{
		Use:       "report [" + strings.Join(reportKinds, "|") + "]",
		Short:     "Print sales analytics",
		ValidArgs: reportKinds,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		Long: `Compute analytics over the recorded sales and print them.

  summary       totals, averages, median and spread of sale revenue
  trend         revenue in twelve 30-day buckets and a three-step forecast
  distribution  sale revenue histogram
  market        revenue share per product
  eval          score of the above-the-mean up/down heuristic
  all           every report (default)

Filters apply to summary and distribution only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := reportAll
			if len(args) == 1 {
				kind = args[0]
			}
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q (want text or json)", format)
			}

			filter, err := flags.filter()
			if err != nil {
				return err
			}
			now := time.Now()
			anchor, err := resolveAsOf(asOf, now)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := openRecordStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			settings := config.LoadReport(viper.GetViper())
			dashboard, _, err := loadDashboard(ctx, store, dashboardQuery{
				AsOf:       anchor,
				Filter:     filter,
				EvalWindow: settings.EvalWindow,
			}, now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				return writeReportJSON(out, dashboard, kind)
			}
			fmt.Fprintln(out, renderReport(report.NewFormatter(settings.Currency), dashboard, kind))
			return nil
		},
	}

	addSaleFilterFlags(cmd, &flags)
	cmd.Flags().StringVar(&asOf, "as-of", "", "Anchor date for the trend, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json)")

	return cmd
}

func renderReport(f *report.Formatter, d analytics.Dashboard, kind string) string {
	switch kind {
	case reportSummary:
		return f.Summary(d.Sales)
	case reportTrend:
		return f.Trend(d.Trend)
	case reportDistribution:
		return f.Distribution(d.Sales)
	case reportMarket:
		return f.Market(d.Market)
	case reportEval:
		return f.Evaluation(d.Evaluation)
	default:
		return f.Dashboard(d)
	}
}

func reportValue(d analytics.Dashboard, kind string) any {
	switch kind {
	case reportSummary:
		return struct {
			Header  analytics.ReportHeader `json:"header"`
			Summary analytics.SummaryStats `json:"summary"`
		}{d.Sales.Header, d.Sales.Summary}
	case reportDistribution:
		return struct {
			Header       analytics.ReportHeader `json:"header"`
			Distribution analytics.Histogram    `json:"distribution"`
		}{d.Sales.Header, d.Sales.Distribution}
	case reportTrend:
		return d.Trend
	case reportMarket:
		return d.Market
	case reportEval:
		return d.Evaluation
	default:
		return d
	}
}

func writeReportJSON(w io.Writer, d analytics.Dashboard, kind string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reportValue(d, kind)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
