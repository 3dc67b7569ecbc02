package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// DefaultHistoryLimit is the number of sales shown on a product's detail view.
const DefaultHistoryLimit = 10

// CreateSale inserts a sale, deriving its profit, and sets its ID.
func (s *SQLiteStorage) CreateSale(ctx context.Context, sale *model.Sale) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSale(sale); err != nil {
		return err
	}
	return s.createSaleTx(ctx, s.db, sale)
}

func (s *SQLiteStorage) createSaleTx(ctx context.Context, q queryable, sale *model.Sale) error {
	if err := s.requireProduct(ctx, q, sale.ProductID); err != nil {
		return err
	}
	return insertSale(ctx, q, sale)
}

func insertSale(ctx context.Context, q queryable, sale *model.Sale) error {
	sale.Date = model.DateOnly(sale.Date)
	sale.Recompute()

	result, err := q.ExecContext(ctx, `
		INSERT INTO sales (product_id, date, quantity, revenue, cost, profit)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sale.ProductID, sale.Date.Format(dateLayout), sale.Quantity, sale.Revenue, sale.Cost, sale.Profit)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get sale ID: %w", err)
	}
	sale.ID = id
	return nil
}

// SaveSales inserts a batch of sales in one transaction.
func (s *SQLiteStorage) SaveSales(ctx context.Context, sales []model.Sale) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSales(sales); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	checked := make(map[int64]bool)
	for i := range sales {
		if !checked[sales[i].ProductID] {
			if err = s.requireProduct(ctx, tx, sales[i].ProductID); err != nil {
				return fmt.Errorf("sale at index %d: %w", i, err)
			}
			checked[sales[i].ProductID] = true
		}
		if err = insertSale(ctx, tx, &sales[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sales: %w", err)
	}

	slog.Debug("saved sales batch", "count", len(sales))
	return nil
}

// GetSale returns a sale by ID.
func (s *SQLiteStorage) GetSale(ctx context.Context, id int64) (*model.Sale, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s FROM sales s JOIN products p ON p.id = s.product_id WHERE s.id = ?`,
		sqliteDialect.saleColumns()), id)

	sale, err := scanSale(row)
	if notFound(err) {
		return nil, fmt.Errorf("sale: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}
	return &sale, nil
}

// UpdateSale replaces an existing sale, re-deriving its profit.
func (s *SQLiteStorage) UpdateSale(ctx context.Context, sale *model.Sale) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSale(sale); err != nil {
		return err
	}
	if err := validateID(sale.ID, "id"); err != nil {
		return err
	}
	if err := s.requireProduct(ctx, s.db, sale.ProductID); err != nil {
		return err
	}

	sale.Date = model.DateOnly(sale.Date)
	sale.Recompute()

	result, err := s.db.ExecContext(ctx, `
		UPDATE sales SET product_id = ?, date = ?, quantity = ?, revenue = ?, cost = ?, profit = ?
		WHERE id = ?`,
		sale.ProductID, sale.Date.Format(dateLayout), sale.Quantity, sale.Revenue, sale.Cost, sale.Profit, sale.ID)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	return requireAffected(result, "sale")
}

// DeleteSale removes a sale by ID.
func (s *SQLiteStorage) DeleteSale(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return requireAffected(result, "sale")
}

// DeleteAllSales removes every sale and reports how many were deleted.
func (s *SQLiteStorage) DeleteAllSales(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return deleteAllSalesTx(ctx, s.db)
}

func deleteAllSalesTx(ctx context.Context, q queryable) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM sales`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sales: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sales: %w", err)
	}
	return n, nil
}

// ListSales returns matching sales ordered by date descending.
func (s *SQLiteStorage) ListSales(ctx context.Context, filter service.SaleFilter) ([]model.Sale, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateSaleFilter(filter); err != nil {
		return nil, err
	}

	sales, err := querySales(ctx, s.db, sqliteDialect, filter)
	if err != nil {
		return nil, err
	}
	slog.Debug("listed sales", "count", len(sales))
	return sales, nil
}

// GetRecentSales returns the newest limit sales, newest first.
func (s *SQLiteStorage) GetRecentSales(ctx context.Context, limit int) ([]model.Sale, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return querySales(ctx, s.db, sqliteDialect, service.SaleFilter{Limit: limit})
}

// GetSalesHistory returns a product's newest sales. A non-positive limit uses DefaultHistoryLimit.
func (s *SQLiteStorage) GetSalesHistory(ctx context.Context, productID int64, limit int) ([]model.Sale, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(productID, "productID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return querySales(ctx, s.db, sqliteDialect, service.SaleFilter{ProductID: productID, Limit: limit})
}

// GetSalesTotals sums revenue and profit over every sale matching filter.
// The filter's limit is ignored.
func (s *SQLiteStorage) GetSalesTotals(ctx context.Context, filter service.SaleFilter) (service.SalesTotals, error) {
	if err := validateContext(ctx); err != nil {
		return service.SalesTotals{}, err
	}
	if err := validateSaleFilter(filter); err != nil {
		return service.SalesTotals{}, err
	}

	filter.Limit = 0
	sales, err := querySales(ctx, s.db, sqliteDialect, filter)
	if err != nil {
		return service.SalesTotals{}, err
	}
	return summarize(sales), nil
}

func (s *SQLiteStorage) requireProduct(ctx context.Context, q queryable, productID int64) error {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ?`, productID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: product %d does not exist", ErrInvalidSale, productID)
	}
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return nil
}
