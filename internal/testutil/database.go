// Package testutil provides test utilities for tally.
// It sets up isolated, migrated databases and seeds them with products and sales.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage  service.Storage
	t        *testing.T
	Products map[string]*model.Product
}

// SetupTestDB creates a new in-memory test database holding the given products.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.Laptop, testutil.Mouse)
//	db.AddSale("Laptop", day, 2)
func SetupTestDB(t *testing.T, products ...model.Product) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Products: products})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Products       []model.Product
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	ctx := context.Background()

	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	db := &TestDB{
		Storage:  store,
		Products: make(map[string]*model.Product, len(opts.Products)),
		t:        t,
	}

	for _, p := range opts.Products {
		product := p
		if err := store.CreateProduct(ctx, &product); err != nil {
			t.Fatalf("failed to seed product %q: %v", p.Name, err)
		}
		db.Products[product.Name] = &product
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// MustProduct returns the seeded product with the given name or fails the test.
func (db *TestDB) MustProduct(name string) *model.Product {
	db.t.Helper()
	p, ok := db.Products[name]
	if !ok {
		db.t.Fatalf("product %q was not seeded", name)
	}
	return p
}

// AddSale records a sale of quantity units at the product's list price and cost.
func (db *TestDB) AddSale(productName string, date time.Time, quantity int) model.Sale {
	db.t.Helper()
	p := db.MustProduct(productName)

	qty := decimal.NewFromInt(int64(quantity))
	sale := model.NewSale(p.ID, date, quantity, p.Price.Mul(qty), p.Cost.Mul(qty))
	if err := db.Storage.CreateSale(context.Background(), &sale); err != nil {
		db.t.Fatalf("failed to add sale for %q: %v", productName, err)
	}
	return sale
}

// Common products used across tests.
var (
	Laptop = model.Product{
		Name:     "Laptop",
		Category: "laptop",
		Price:    decimal.NewFromInt(85000),
		Cost:     decimal.NewFromInt(60000),
	}
	Mouse = model.Product{
		Name:     "Mouse",
		Category: "mouse",
		Price:    decimal.NewFromInt(1500),
		Cost:     decimal.NewFromInt(800),
	}
	Keyboard = model.Product{
		Name:     "Keyboard",
		Category: "keyboard",
		Price:    decimal.NewFromInt(3500),
		Cost:     decimal.NewFromInt(2000),
	}
)
