// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// SaleFilter defines filtering options for sale queries.
// Zero values disable the corresponding filter.
type SaleFilter struct {
	From      *time.Time
	To        *time.Time
	MinProfit *decimal.Decimal
	Category  string
	Search    string // Matches product name or category, case-insensitive
	ProductID int64
	Limit     int
}

// Product sort orders accepted by ProductFilter.SortBy.
const (
	SortByName     = "name"
	SortByCategory = "category"
	SortByPrice    = "price"
	SortByMargin   = "margin"
)

// ProductFilter defines filtering options for product queries.
type ProductFilter struct {
	Search   string
	Category string
	SortBy   string
}

// SalesTotals summarizes a filtered set of sales.
type SalesTotals struct {
	Revenue   decimal.Decimal
	Profit    decimal.Decimal
	AvgMargin decimal.Decimal // Profit as a percentage of revenue
	Count     int
}

// RecordStore is the read contract the analytics layer consumes.
type RecordStore interface {
	// ListSales returns matching sales ordered by date descending.
	ListSales(ctx context.Context, filter SaleFilter) ([]model.Sale, error)
	// GetRecentSales returns the newest sales, newest first, ties broken by ID descending.
	GetRecentSales(ctx context.Context, limit int) ([]model.Sale, error)
	// GetProductTotals returns every product with its aggregated sales revenue.
	GetProductTotals(ctx context.Context) ([]model.ProductTotal, error)
	// GetCategories returns the distinct product categories in name order.
	GetCategories(ctx context.Context) ([]string, error)
	Close() error
}

// Storage defines the contract for our writable persistence layer.
type Storage interface {
	RecordStore

	// Product operations
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	GetProductByName(ctx context.Context, name string) (*model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]model.ProductTotal, error)

	// Sale operations
	CreateSale(ctx context.Context, sale *model.Sale) error
	SaveSales(ctx context.Context, sales []model.Sale) error
	GetSale(ctx context.Context, id int64) (*model.Sale, error)
	UpdateSale(ctx context.Context, sale *model.Sale) error
	DeleteSale(ctx context.Context, id int64) error
	DeleteAllSales(ctx context.Context) (int64, error)
	GetSalesHistory(ctx context.Context, productID int64, limit int) ([]model.Sale, error)
	GetSalesTotals(ctx context.Context, filter SaleFilter) (SalesTotals, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction scoped to sale writes.
type Transaction interface {
	Commit() error
	Rollback() error
	CreateSale(ctx context.Context, sale *model.Sale) error
	DeleteAllSales(ctx context.Context) (int64, error)
}
