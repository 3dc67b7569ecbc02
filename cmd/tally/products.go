package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/report"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(cli.PrimaryColor)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Manage the product catalog",
		Long:    `List, add, update, show, and delete the products that sales are recorded against.`,
	}

	cmd.AddCommand(listProductsCmd())
	cmd.AddCommand(addProductCmd())
	cmd.AddCommand(updateProductCmd())
	cmd.AddCommand(deleteProductCmd())
	cmd.AddCommand(showProductCmd())

	return cmd
}

func currency() string {
	return config.LoadReport(viper.GetViper()).Currency
}

func listProductsCmd() *cobra.Command {
	var filter service.ProductFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Long:  `Display products with their price, cost, margin and total revenue.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			products, err := store.ListProducts(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(products) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No products found. Use 'tally products add' to create one."))
				return nil
			}

			writeProducts(out, products, currency())
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "Match name or category")
	cmd.Flags().StringVar(&filter.Category, "category", "", "Only products in this category")
	cmd.Flags().StringVar(&filter.SortBy, "sort", service.SortByName, "Sort by name, category, price or margin")

	return cmd
}

func writeProducts(out io.Writer, products []model.ProductTotal, symbol string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Name"),
		headerStyle.Render("Category"),
		headerStyle.Render("Price"),
		headerStyle.Render("Cost"),
		headerStyle.Render("Margin"),
		headerStyle.Render("Sales"),
		headerStyle.Render("Revenue"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 4),
		strings.Repeat("-", 24),
		strings.Repeat("-", 12),
		strings.Repeat("-", 12),
		strings.Repeat("-", 12),
		strings.Repeat("-", 7),
		strings.Repeat("-", 5),
		strings.Repeat("-", 14))

	for _, pt := range products {
		p := pt.Product
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s%%\t%d\t%s\n",
			p.ID, p.Name, p.Category,
			symbol+report.FormatAmount(p.Price),
			symbol+report.FormatAmount(p.Cost),
			p.Margin().StringFixed(1),
			pt.SalesCount,
			symbol+report.FormatAmount(pt.Revenue))
	}
}

// productFlags holds the editable product fields as raw flag values.
type productFlags struct {
	name     string
	category string
	price    string
	cost     string
}

// apply copies every set flag onto p.
func (f productFlags) apply(p *model.Product) error {
	if f.name != "" {
		p.Name = f.name
	}
	if f.category != "" {
		p.Category = f.category
	}
	price, err := parseAmount("price", f.price)
	if err != nil {
		return err
	}
	if price != nil {
		p.Price = *price
	}
	cost, err := parseAmount("cost", f.cost)
	if err != nil {
		return err
	}
	if cost != nil {
		p.Cost = *cost
	}
	return nil
}

func (f productFlags) empty() bool {
	return f.name == "" && f.category == "" && f.price == "" && f.cost == ""
}

func productError(err error, name string) error {
	switch {
	case errors.Is(err, common.ErrDuplicateEntry):
		return common.NewUserError(fmt.Sprintf("a product named %q already exists", name), err)
	case errors.Is(err, storage.ErrInvalidProduct):
		return common.NewUserError("invalid product", err)
	default:
		return err
	}
}

func addProductCmd() *cobra.Command {
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new product",
		Long:  `Create a product. The price must exceed the cost.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags.name = args[0]

			var product model.Product
			if err := flags.apply(&product); err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateProduct(ctx, &product); err != nil {
				return productError(err, product.Name)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created product %q (ID: %d, margin %s%%)",
				product.Name, product.ID, product.Margin().StringFixed(1))))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.category, "category", "", "Product category (required)")
	cmd.Flags().StringVar(&flags.price, "price", "", "Unit price (required)")
	cmd.Flags().StringVar(&flags.cost, "cost", "", "Unit cost (required)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("cost")

	return cmd
}

func updateProductCmd() *cobra.Command {
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product",
		Long:  `Change the name, category, price, or cost of an existing product.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			if flags.empty() {
				return fmt.Errorf("must specify --name, --category, --price or --cost to update")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			product, err := store.GetProduct(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get product %d: %w", id, err)
			}
			if err := flags.apply(product); err != nil {
				return err
			}

			if err := store.UpdateProduct(ctx, product); err != nil {
				return productError(err, product.Name)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated product %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "New product name")
	cmd.Flags().StringVar(&flags.category, "category", "", "New category")
	cmd.Flags().StringVar(&flags.price, "price", "", "New unit price")
	cmd.Flags().StringVar(&flags.cost, "cost", "", "New unit cost")

	return cmd
}

func deleteProductCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Long:  `Delete a product. All of its sales are deleted with it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			product, err := store.GetProduct(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get product %d: %w", id, err)
			}

			out := cmd.OutOrStdout()
			if !force {
				ok, err := cli.Confirm(ctx, cmd.InOrStdin(), out,
					fmt.Sprintf("Delete product %q and all of its sales?", product.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Deletion cancelled.")
					return nil
				}
			}

			if err := store.DeleteProduct(ctx, id); err != nil {
				return fmt.Errorf("failed to delete product: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted product %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func showProductCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show product details",
		Long:  `Display a product's pricing and margin along with its most recent sales.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			product, err := store.GetProduct(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get product %d: %w", id, err)
			}
			history, err := store.GetSalesHistory(ctx, id, limit)
			if err != nil {
				return fmt.Errorf("failed to get sales history: %w", err)
			}

			symbol := currency()
			details := strings.Join([]string{
				fmt.Sprintf("Category: %s", product.Category),
				fmt.Sprintf("Price:    %s", symbol+report.FormatAmount(product.Price)),
				fmt.Sprintf("Cost:     %s", symbol+report.FormatAmount(product.Cost)),
				fmt.Sprintf("Margin:   %s%%", product.Margin().StringFixed(2)),
			}, "\n")

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderBox(product.Name, details))
			fmt.Fprintln(out)

			if len(history) == 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render("No sales recorded for this product."))
				return nil
			}

			fmt.Fprintln(out, cli.SubtitleStyle.Render("Recent sales"))
			writeSales(out, history, symbol)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", storage.DefaultHistoryLimit, "Number of recent sales to show")

	return cmd
}
