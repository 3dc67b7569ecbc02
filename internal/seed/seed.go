// Package seed generates sample products and sales for demos and manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Defaults for Options.
const (
	DefaultDays        = 365
	DefaultMaxPerDay   = 5
	DefaultMaxQuantity = 10
)

// Options controls sample generation.
type Options struct {
	End         time.Time // Last day to generate; defaults to today
	Seed        uint64    // Zero picks a random seed
	Days        int       // Days before End to cover
	MaxPerDay   int       // Upper bound of sales per product per day
	MaxQuantity int       // Upper bound of units per sale
	Clear       bool      // Delete existing sales first
}

func (o Options) withDefaults() Options {
	if o.End.IsZero() {
		o.End = time.Now()
	}
	o.End = model.DateOnly(o.End)
	if o.Days <= 0 {
		o.Days = DefaultDays
	}
	if o.MaxPerDay <= 0 {
		o.MaxPerDay = DefaultMaxPerDay
	}
	if o.MaxQuantity <= 0 {
		o.MaxQuantity = DefaultMaxQuantity
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	return o
}

// TotalDays is the number of calendar days Generate covers, End included.
func (o Options) TotalDays() int {
	return o.withDefaults().Days + 1
}

// Progress receives one step per generated day. *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(num int) error
}

// Result summarizes a seeding run.
type Result struct {
	Revenue  decimal.Decimal
	Seed     uint64
	Products int
	Created  int // Products newly created
	Sales    int
	Cleared  int64
}

// Catalog returns the sample product line.
func Catalog() []model.Product {
	product := func(name, category string, price, cost int64) model.Product {
		return model.Product{
			Name:     name,
			Category: category,
			Price:    decimal.NewFromInt(price),
			Cost:     decimal.NewFromInt(cost),
		}
	}
	return []model.Product{
		product("Gaming Laptop Pro", "laptop", 85000, 60000),
		product("Wireless Mouse X", "mouse", 1500, 800),
		product("Mechanical Keyboard RGB", "keyboard", 3500, 2000),
		product("4K Monitor Ultra", "monitor", 25000, 18000),
		product("Gaming Headset Pro", "headset", 5000, 3000),
	}
}

// Generator produces deterministic sales for a given seed.
type Generator struct {
	rng  *rand.Rand
	opts Options
}

// NewGenerator creates a generator. Zero option values take their defaults.
func NewGenerator(opts Options) *Generator {
	opts = opts.withDefaults()
	return &Generator{
		rng:  rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		opts: opts,
	}
}

// Options returns the resolved options.
func (g *Generator) Options() Options {
	return g.opts
}

// Day generates the sales for one calendar day: between zero and MaxPerDay
// sales per product, each for 1..MaxQuantity units at list price and cost.
func (g *Generator) Day(date time.Time, products []model.Product) []model.Sale {
	var sales []model.Sale
	for _, p := range products {
		n := g.rng.IntN(g.opts.MaxPerDay + 1)
		for i := 0; i < n; i++ {
			quantity := 1 + g.rng.IntN(g.opts.MaxQuantity)
			qty := decimal.NewFromInt(int64(quantity))
			sales = append(sales, model.NewSale(p.ID, date, quantity, p.Price.Mul(qty), p.Cost.Mul(qty)))
		}
	}
	return sales
}

// Dates returns every day from End minus Days through End, oldest first.
func (g *Generator) Dates() []time.Time {
	start := g.opts.End.AddDate(0, 0, -g.opts.Days)
	dates := make([]time.Time, 0, g.opts.Days+1)
	for d := start; !d.After(g.opts.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// EnsureCatalog creates any catalog products missing from the store and
// returns the full catalog with IDs.
func EnsureCatalog(ctx context.Context, store service.Storage) ([]model.Product, int, error) {
	catalog := Catalog()
	created := 0

	for i := range catalog {
		existing, err := store.GetProductByName(ctx, catalog[i].Name)
		switch {
		case err == nil:
			catalog[i] = *existing
		case errors.Is(err, common.ErrNotFound):
			if err := store.CreateProduct(ctx, &catalog[i]); err != nil {
				return nil, created, fmt.Errorf("failed to create %q: %w", catalog[i].Name, err)
			}
			created++
		default:
			return nil, created, fmt.Errorf("failed to look up %q: %w", catalog[i].Name, err)
		}
	}

	return catalog, created, nil
}

// Run seeds the store. With Clear set, existing sales are replaced atomically;
// otherwise each day is saved as its own batch.
func Run(ctx context.Context, store service.Storage, opts Options, progress Progress) (Result, error) {
	gen := NewGenerator(opts)
	opts = gen.Options()

	products, created, err := EnsureCatalog(ctx, store)
	if err != nil {
		return Result{}, err
	}

	result := Result{Seed: opts.Seed, Products: len(products), Created: created}

	if opts.Clear {
		err = runReplace(ctx, store, gen, products, progress, &result)
	} else {
		err = runAppend(ctx, store, gen, products, progress, &result)
	}
	if err != nil {
		return result, err
	}

	common.LogInfo("Seeded sales", common.Fields{
		"sales":    result.Sales,
		"products": result.Products,
		"cleared":  result.Cleared,
		"seed":     result.Seed,
	})
	return result, nil
}

func runReplace(ctx context.Context, store service.Storage, gen *Generator, products []model.Product, progress Progress, result *Result) error {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if result.Cleared, err = tx.DeleteAllSales(ctx); err != nil {
		return err
	}

	for _, date := range gen.Dates() {
		if err = ctx.Err(); err != nil {
			return err
		}
		for _, sale := range gen.Day(date, products) {
			if err = tx.CreateSale(ctx, &sale); err != nil {
				return err
			}
			record(result, sale)
		}
		step(progress)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed data: %w", err)
	}
	return nil
}

func runAppend(ctx context.Context, store service.Storage, gen *Generator, products []model.Product, progress Progress, result *Result) error {
	for _, date := range gen.Dates() {
		if err := ctx.Err(); err != nil {
			return err
		}
		sales := gen.Day(date, products)
		if len(sales) > 0 {
			if err := store.SaveSales(ctx, sales); err != nil {
				return fmt.Errorf("failed to save sales for %s: %w", date.Format("2006-01-02"), err)
			}
			for _, sale := range sales {
				record(result, sale)
			}
		}
		step(progress)
	}
	return nil
}

func record(result *Result, sale model.Sale) {
	result.Sales++
	result.Revenue = result.Revenue.Add(sale.Revenue)
}

func step(progress Progress) {
	if progress == nil {
		return
	}
	if err := progress.Add(1); err != nil {
		slog.Debug("progress update failed", "error", err)
	}
}
