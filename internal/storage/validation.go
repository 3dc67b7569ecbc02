// Package storage provides the data persistence layer for tally.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidID        = errors.New("id must be positive")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrInvalidSale      = errors.New("invalid sale")
	ErrInvalidSort      = errors.New("invalid sort order")
	ErrInvalidLimit     = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

// validateProduct enforces non-empty names and a price above cost.
func validateProduct(product *model.Product) error {
	if product == nil {
		return fmt.Errorf("%w: product", ErrNilParameter)
	}
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProduct)
	}
	if strings.TrimSpace(product.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidProduct)
	}
	if product.Price.IsNegative() || product.Cost.IsNegative() {
		return fmt.Errorf("%w: price and cost must not be negative", ErrInvalidProduct)
	}
	if !product.Price.GreaterThan(product.Cost) {
		return fmt.Errorf("%w: price %s must be greater than cost %s",
			ErrInvalidProduct, product.Price.StringFixed(2), product.Cost.StringFixed(2))
	}
	return nil
}

// validateSales validates a slice of sales.
func validateSales(sales []model.Sale) error {
	if sales == nil {
		return fmt.Errorf("%w: sales", ErrNilParameter)
	}
	if len(sales) == 0 {
		return fmt.Errorf("%w: sales", ErrEmptySlice)
	}

	for i := range sales {
		if err := validateSale(&sales[i]); err != nil {
			return fmt.Errorf("sale at index %d: %w", i, err)
		}
	}
	return nil
}

// validateSale validates a single sale. Product existence is checked by the store.
func validateSale(sale *model.Sale) error {
	if sale == nil {
		return fmt.Errorf("%w: sale", ErrNilParameter)
	}
	if sale.ProductID <= 0 {
		return fmt.Errorf("%w: missing product", ErrInvalidSale)
	}
	if sale.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidSale)
	}
	if sale.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidSale)
	}
	if sale.Revenue.IsNegative() || sale.Cost.IsNegative() {
		return fmt.Errorf("%w: revenue and cost must not be negative", ErrInvalidSale)
	}
	return nil
}

func validateSaleFilter(filter service.SaleFilter) error {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidDateRange,
			filter.From.Format(dateLayout), filter.To.Format(dateLayout))
	}
	if filter.Limit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, filter.Limit)
	}
	return nil
}

func validateSort(sortBy string) error {
	switch sortBy {
	case "", service.SortByName, service.SortByCategory, service.SortByPrice, service.SortByMargin:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSort, sortBy)
	}
}
