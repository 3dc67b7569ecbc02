package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// createTestProduct inserts a product priced at price with the given unit cost.
func createTestProduct(t *testing.T, store *SQLiteStorage, name, category string, price, cost int64) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:     name,
		Category: category,
		Price:    decimal.NewFromInt(price),
		Cost:     decimal.NewFromInt(cost),
	}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	return p
}

func createTestSale(t *testing.T, store *SQLiteStorage, productID int64, date time.Time, revenue, cost string) *model.Sale {
	t.Helper()
	sale := model.NewSale(productID, date, 1, decimal.RequireFromString(revenue), decimal.RequireFromString(cost))
	require.NoError(t, store.CreateSale(context.Background(), &sale))
	return &sale
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "a", "b", "tally.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer store.Close()

		assert.Equal(t, dbPath, store.Path())
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})

	t.Run("in memory", func(t *testing.T) {
		store, err := NewSQLiteStorage(":memory:")
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Migrate(context.Background()))
	})
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Migrating twice is a no-op.
	require.NoError(t, store.Migrate(ctx))

	for _, index := range []string{"idx_sales_date", "idx_sales_product_id", "idx_products_category"} {
		var count int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, index).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "index %s", index)
	}
}

func TestMigrationsAreOrdered(t *testing.T) {
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Description)
	}
	assert.Equal(t, ExpectedSchemaVersion, migrations[len(migrations)-1].Version)
}

func TestBeginTx(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	p := createTestProduct(t, store, "Laptop", "Electronics", 1500, 800)
	createTestSale(t, store, p.ID, day(2025, 6, 1), "1500", "800")

	t.Run("rollback keeps existing sales", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		n, err := tx.DeleteAllSales(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		sale := model.NewSale(p.ID, day(2025, 6, 2), 1, decimal.NewFromInt(10), decimal.NewFromInt(5))
		require.NoError(t, tx.CreateSale(ctx, &sale))
		require.NoError(t, tx.Rollback())

		sales, err := store.ListSales(ctx, service.SaleFilter{})
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, day(2025, 6, 1), sales[0].Date)
	})

	t.Run("commit applies writes", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		sale := model.NewSale(p.ID, day(2025, 6, 3), 2, decimal.NewFromInt(3000), decimal.NewFromInt(1600))
		require.NoError(t, tx.CreateSale(ctx, &sale))
		require.NoError(t, tx.Commit())

		sales, err := store.ListSales(ctx, service.SaleFilter{})
		require.NoError(t, err)
		assert.Len(t, sales, 2)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback()

		sale := model.NewSale(999, day(2025, 6, 3), 1, decimal.NewFromInt(1), decimal.Zero)
		assert.ErrorIs(t, tx.CreateSale(ctx, &sale), ErrInvalidSale)
	})
}
