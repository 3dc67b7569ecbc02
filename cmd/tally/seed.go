package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/report"
	"github.com/Veraticus/tally/internal/seed"
)

func seedCmd() *cobra.Command {
	var (
		opts       seed.Options
		end        string
		force      bool
		noSnapshot bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate sample products and sales",
		Long: `Create the sample product catalog (if missing) and generate random daily
sales for the trailing period. Pass --seed to reproduce a previous run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			endDate, err := parseDate(end)
			if err != nil {
				return err
			}
			if endDate != nil {
				opts.End = *endDate
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if opts.Clear && !force {
				ok, err := cli.Confirm(cmd.Context(), cmd.InOrStdin(), out, "Delete every existing sale before seeding?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Seeding cancelled.")
					return nil
				}
			}

			if opts.Clear && !noSnapshot {
				mgr, err := snapshotManager(store)
				if err != nil {
					return err
				}
				snap, err := mgr.Auto(cmd.Context(), "seed")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Saved snapshot %q; restore it with 'tally snapshot restore %s'", snap.ID, snap.ID)))
			}

			handler := cli.NewInterruptHandler(out, "Seeding interrupted.",
				"Sales for completed days were kept; with --clear nothing was changed.")
			ctx := handler.HandleInterrupts(cmd.Context())

			bar := cli.NewProgressBar(out, opts.TotalDays(), "Seeding sales")
			start := time.Now()

			result, err := seed.Run(ctx, store, opts, bar)
			if err != nil {
				if handler.WasInterrupted() || errors.Is(err, ctx.Err()) {
					return nil
				}
				return fmt.Errorf("seeding failed: %w", err)
			}
			_ = bar.Finish()

			symbol := currency()
			summary := fmt.Sprintf("Products: %d (%d new)\nSales:    %d\nRevenue:  %s\nSeed:     %d\nTook:     %s",
				result.Products, result.Created, result.Sales,
				symbol+report.FormatAmount(result.Revenue), result.Seed,
				time.Since(start).Round(time.Millisecond))
			if opts.Clear {
				summary += fmt.Sprintf("\nCleared:  %d existing sales", result.Cleared)
			}

			fmt.Fprintln(out, cli.RenderBox("Seed complete", summary))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", seed.DefaultDays, "Days of history to generate")
	cmd.Flags().IntVar(&opts.MaxPerDay, "max-per-day", seed.DefaultMaxPerDay, "Maximum sales per product per day")
	cmd.Flags().IntVar(&opts.MaxQuantity, "max-quantity", seed.DefaultMaxQuantity, "Maximum units per sale")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().StringVar(&end, "end", "", "Last day to generate, YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "Replace all existing sales")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the --clear confirmation prompt")
	cmd.Flags().BoolVar(&noSnapshot, "no-snapshot", false, "Do not snapshot the database before --clear")

	return cmd
}
