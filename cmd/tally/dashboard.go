package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/analytics"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/tui"
)

// dashboardSalesLimit caps the rows shown on the Data tab.
const dashboardSalesLimit = 500

func dashboardCmd() *cobra.Command {
	var flags saleFilterFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Long: `Browse sales, market share, recent sales and the heuristic evaluation
in a tabbed terminal UI. Press r to reload and q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := flags.filter()
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
			loader := func(ctx context.Context) (analytics.Dashboard, []model.Sale, error) {
				now := time.Now()
				d, sales, err := loadDashboard(ctx, store, dashboardQuery{
					AsOf:       model.DateOnly(now),
					Filter:     filter,
					EvalWindow: settings.EvalWindow,
				}, now)
				if len(sales) > dashboardSalesLimit {
					sales = sales[:dashboardSalesLimit]
				}
				return d, sales, err
			}

			return tui.Run(ctx,
				tui.WithLoader(loader),
				tui.WithCurrency(settings.Currency),
			)
		},
	}

	addSaleFilterFlags(cmd, &flags)

	return cmd
}
