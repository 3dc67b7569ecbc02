package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// CreateProduct inserts a product and sets its ID.
func (s *SQLiteStorage) CreateProduct(ctx context.Context, product *model.Product) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProduct(product); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name, category, price, cost)
		VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(product.Name), strings.TrimSpace(product.Category), product.Price, product.Cost)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %q", common.ErrDuplicateEntry, product.Name)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get product ID: %w", err)
	}
	product.ID = id

	slog.Info("created product", "name", product.Name, "id", id)
	return nil
}

// GetProduct returns a product by ID.
func (s *SQLiteStorage) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getProductTx(ctx, s.db, `WHERE id = ?`, id)
}

// GetProductByName returns a product by name, ignoring case.
func (s *SQLiteStorage) GetProductByName(ctx context.Context, name string) (*model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getProductTx(ctx, s.db, `WHERE name = ?`, strings.TrimSpace(name))
}

func (s *SQLiteStorage) getProductTx(ctx context.Context, q queryable, where string, args ...any) (*model.Product, error) {
	var p model.Product
	err := q.QueryRowContext(ctx, `SELECT id, name, category, price, cost FROM products `+where, args...).
		Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Cost)
	if notFound(err) {
		return nil, fmt.Errorf("product: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

// UpdateProduct replaces every field of an existing product.
func (s *SQLiteStorage) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := validateID(product.ID, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET name = ?, category = ?, price = ?, cost = ?
		WHERE id = ?`,
		strings.TrimSpace(product.Name), strings.TrimSpace(product.Category), product.Price, product.Cost, product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %q", common.ErrDuplicateEntry, product.Name)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return requireAffected(result, "product")
}

// DeleteProduct removes a product and, through the foreign key, all of its sales.
func (s *SQLiteStorage) DeleteProduct(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if err := requireAffected(result, "product"); err != nil {
		return err
	}

	slog.Info("deleted product", "id", id)
	return nil
}

// ListProducts returns products with their sales totals, filtered and sorted.
func (s *SQLiteStorage) ListProducts(ctx context.Context, filter service.ProductFilter) ([]model.ProductTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateSort(filter.SortBy); err != nil {
		return nil, err
	}

	totals, err := s.GetProductTotals(ctx)
	if err != nil {
		return nil, err
	}

	return filterProducts(totals, filter), nil
}

func filterProducts(totals []model.ProductTotal, filter service.ProductFilter) []model.ProductTotal {
	term := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]model.ProductTotal, 0, len(totals))
	for _, t := range totals {
		if filter.Category != "" && !strings.EqualFold(t.Product.Category, filter.Category) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Product.Name), term) &&
			!strings.Contains(strings.ToLower(t.Product.Category), term) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i].Product, &out[j].Product
		switch filter.SortBy {
		case service.SortByCategory:
			if !strings.EqualFold(a.Category, b.Category) {
				return strings.ToLower(a.Category) < strings.ToLower(b.Category)
			}
		case service.SortByPrice:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case service.SortByMargin:
			if ma, mb := a.Margin(), b.Margin(); !ma.Equal(mb) {
				return ma.GreaterThan(mb)
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	return out
}

// GetProductTotals returns every product with its aggregated sales revenue.
func (s *SQLiteStorage) GetProductTotals(ctx context.Context) ([]model.ProductTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return queryProductTotals(ctx, s.db, sqliteDialect)
}

// GetCategories returns the distinct product categories.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	categories, err := queryCategories(ctx, s.db, sqliteDialect)
	if err != nil {
		return nil, err
	}
	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}
