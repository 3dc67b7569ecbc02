package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/report"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

func salesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sales",
		Aliases: []string{"sale"},
		Short:   "Record and browse sales",
		Long:    `List, add, update, and delete sales. Profit is always revenue minus cost.`,
	}

	cmd.AddCommand(listSalesCmd())
	cmd.AddCommand(addSaleCmd())
	cmd.AddCommand(updateSaleCmd())
	cmd.AddCommand(deleteSaleCmd())

	return cmd
}

func writeSales(out io.Writer, sales []model.Sale, symbol string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Date"),
		headerStyle.Render("Product"),
		headerStyle.Render("Qty"),
		headerStyle.Render("Revenue"),
		headerStyle.Render("Cost"),
		headerStyle.Render("Profit"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 4),
		strings.Repeat("-", 10),
		strings.Repeat("-", 24),
		strings.Repeat("-", 3),
		strings.Repeat("-", 14),
		strings.Repeat("-", 14),
		strings.Repeat("-", 14))

	for _, s := range sales {
		name := s.ProductName
		if name == "" {
			name = fmt.Sprintf("#%d", s.ProductID)
		}
		profit := symbol + report.FormatAmount(s.Profit)
		if s.Profit.IsNegative() {
			profit = cli.ErrorStyle.Render(profit)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			s.ID, s.Date.Format(dateLayout), name, s.Quantity,
			symbol+report.FormatAmount(s.Revenue),
			symbol+report.FormatAmount(s.Cost),
			profit)
	}
}

func writeTotals(out io.Writer, totals service.SalesTotals, symbol string) {
	fmt.Fprintf(out, "\n%s %s  %s %s  %s %s  %s %s\n",
		cli.BoldStyle.Render("Sales:"), strconv.Itoa(totals.Count),
		cli.BoldStyle.Render("Revenue:"), cli.FigureStyle.Render(symbol+report.FormatAmount(totals.Revenue)),
		cli.BoldStyle.Render("Profit:"), symbol+report.FormatAmount(totals.Profit),
		cli.BoldStyle.Render("Avg margin:"), totals.AvgMargin.StringFixed(2)+"%")
}

func listSalesCmd() *cobra.Command {
	var (
		flags saleFilterFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sales",
		Long:  `Display sales newest first, followed by totals for every matching sale.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter, err := flags.filter()
			if err != nil {
				return err
			}
			filter.Limit = limit

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sales, err := store.ListSales(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list sales: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(sales) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No sales found. Use 'tally sales add' or 'tally seed' to record some."))
				return nil
			}

			totals, err := store.GetSalesTotals(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to total sales: %w", err)
			}

			symbol := currency()
			writeSales(out, sales, symbol)
			writeTotals(out, totals, symbol)
			return nil
		},
	}

	addSaleFilterFlags(cmd, &flags)
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum sales to list (0 for all)")

	return cmd
}

func addSaleFilterFlags(cmd *cobra.Command, flags *saleFilterFlags) {
	cmd.Flags().Int64Var(&flags.productID, "product", 0, "Only sales of this product ID")
	cmd.Flags().StringVar(&flags.category, "category", "", "Only sales in this category")
	cmd.Flags().StringVar(&flags.search, "search", "", "Match product name or category")
	cmd.Flags().StringVar(&flags.from, "from", "", "Earliest sale date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "Latest sale date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.minProfit, "min-profit", "", "Only sales with at least this profit")
}

// saleFlags holds the editable sale fields as raw flag values.
type saleFlags struct {
	product  string
	date     string
	revenue  string
	cost     string
	quantity int
}

// resolveProduct finds a product by numeric ID or by name.
func resolveProduct(ctx context.Context, store service.Storage, ref string) (*model.Product, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return store.GetProduct(ctx, id)
	}
	return store.GetProductByName(ctx, ref)
}

// apply copies every set flag onto sale. When quantity or product changes and
// revenue or cost is not given, they are derived from the product's unit prices.
func (f saleFlags) apply(ctx context.Context, store service.Storage, sale *model.Sale) error {
	if f.product != "" || sale.ProductID == 0 {
		if f.product == "" {
			return fmt.Errorf("--product is required")
		}
		product, err := resolveProduct(ctx, store, f.product)
		if err != nil {
			return fmt.Errorf("failed to find product %q: %w", f.product, err)
		}
		sale.ProductID = product.ID
		sale.ProductName = product.Name
	}

	date, err := parseDate(f.date)
	if err != nil {
		return err
	}
	if date != nil {
		sale.Date = *date
	} else if sale.Date.IsZero() {
		sale.Date = model.DateOnly(time.Now())
	}

	repriced := f.quantity > 0 || f.product != ""
	if f.quantity > 0 {
		sale.Quantity = f.quantity
	}

	revenue, err := parseAmount("revenue", f.revenue)
	if err != nil {
		return err
	}
	cost, err := parseAmount("cost", f.cost)
	if err != nil {
		return err
	}

	if repriced && (revenue == nil || cost == nil) {
		product, err := store.GetProduct(ctx, sale.ProductID)
		if err != nil {
			return fmt.Errorf("failed to get product %d: %w", sale.ProductID, err)
		}
		qty := int64(sale.Quantity)
		if revenue == nil {
			r := product.Price.Mul(decimal.NewFromInt(qty))
			revenue = &r
		}
		if cost == nil {
			c := product.Cost.Mul(decimal.NewFromInt(qty))
			cost = &c
		}
	}
	if revenue != nil {
		sale.Revenue = *revenue
	}
	if cost != nil {
		sale.Cost = *cost
	}

	sale.Recompute()
	return nil
}

func saleError(err error) error {
	if errors.Is(err, storage.ErrInvalidSale) {
		return common.NewUserError("invalid sale", err)
	}
	return err
}

func addSaleCmd() *cobra.Command {
	flags := saleFlags{quantity: 1}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a sale",
		Long: `Record a sale of a product. Revenue and cost default to the product's
unit price and unit cost multiplied by the quantity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var sale model.Sale
			if err := flags.apply(ctx, store, &sale); err != nil {
				return err
			}
			if err := store.CreateSale(ctx, &sale); err != nil {
				return saleError(err)
			}

			symbol := currency()
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded sale %d: %d × %s on %s, profit %s",
				sale.ID, sale.Quantity, sale.ProductName, sale.Date.Format(dateLayout),
				symbol+report.FormatAmount(sale.Profit))))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.product, "product", "", "Product ID or name (required)")
	cmd.Flags().IntVar(&flags.quantity, "quantity", 1, "Units sold")
	cmd.Flags().StringVar(&flags.revenue, "revenue", "", "Total revenue (default: price × quantity)")
	cmd.Flags().StringVar(&flags.cost, "cost", "", "Total cost (default: unit cost × quantity)")
	cmd.Flags().StringVar(&flags.date, "date", "", "Sale date YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("product")

	return cmd
}

func updateSaleCmd() *cobra.Command {
	var flags saleFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a sale",
		Long:  `Change any field of a recorded sale. Profit is recomputed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "sale")
			if err != nil {
				return err
			}
			if flags == (saleFlags{}) {
				return fmt.Errorf("must specify --product, --quantity, --revenue, --cost or --date to update")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sale, err := store.GetSale(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get sale %d: %w", id, err)
			}
			if err := flags.apply(ctx, store, sale); err != nil {
				return err
			}
			if err := store.UpdateSale(ctx, sale); err != nil {
				return saleError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated sale %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.product, "product", "", "Product ID or name")
	cmd.Flags().IntVar(&flags.quantity, "quantity", 0, "Units sold")
	cmd.Flags().StringVar(&flags.revenue, "revenue", "", "Total revenue")
	cmd.Flags().StringVar(&flags.cost, "cost", "", "Total cost")
	cmd.Flags().StringVar(&flags.date, "date", "", "Sale date YYYY-MM-DD")

	return cmd
}

func deleteSaleCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "sale")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if !force {
				ok, err := cli.Confirm(ctx, cmd.InOrStdin(), out, fmt.Sprintf("Delete sale %d?", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Deletion cancelled.")
					return nil
				}
			}

			if err := store.DeleteSale(ctx, id); err != nil {
				return fmt.Errorf("failed to delete sale: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted sale %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
