package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func TestValidateContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, validateContext(context.Background()))
	assert.NoError(t, validateContext(canceled), "canceled context is still valid")
	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
}

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		product *model.Product
		name    string
		wantErr bool
	}{
		{
			name:    "valid",
			product: &model.Product{Name: "Laptop", Category: "Electronics", Price: decimal.NewFromInt(1500), Cost: decimal.NewFromInt(800)},
		},
		{
			name:    "zero cost",
			product: &model.Product{Name: "Sample", Category: "Promo", Price: decimal.NewFromInt(1), Cost: decimal.Zero},
		},
		{
			name:    "whitespace name",
			product: &model.Product{Name: "   ", Category: "Electronics", Price: decimal.NewFromInt(2), Cost: decimal.NewFromInt(1)},
			wantErr: true,
		},
		{
			name:    "cost above price",
			product: &model.Product{Name: "Laptop", Category: "Electronics", Price: decimal.NewFromInt(800), Cost: decimal.NewFromInt(1500)},
			wantErr: true,
		},
		{
			name:    "negative cost",
			product: &model.Product{Name: "Laptop", Category: "Electronics", Price: decimal.NewFromInt(10), Cost: decimal.NewFromInt(-1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProduct(tt.product)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProduct)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSaleFilter(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, validateSaleFilter(service.SaleFilter{}))
	assert.NoError(t, validateSaleFilter(service.SaleFilter{From: &jan, To: &jan}))
	assert.NoError(t, validateSaleFilter(service.SaleFilter{From: &jan, To: &feb}))
	assert.ErrorIs(t, validateSaleFilter(service.SaleFilter{From: &feb, To: &jan}), ErrInvalidDateRange)
	assert.ErrorIs(t, validateSaleFilter(service.SaleFilter{Limit: -5}), ErrInvalidLimit)
}

func TestValidateSort(t *testing.T) {
	for _, sortBy := range []string{"", service.SortByName, service.SortByCategory, service.SortByPrice, service.SortByMargin} {
		assert.NoError(t, validateSort(sortBy))
	}
	assert.ErrorIs(t, validateSort("revenue"), ErrInvalidSort)
}
