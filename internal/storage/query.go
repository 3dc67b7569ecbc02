package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

const dateLayout = "2006-01-02"

// dialect captures what differs between the SQLite and MySQL record stores.
type dialect struct {
	// numeric wraps a currency column so it compares as a number.
	numeric  func(column string) string
	products string
	sales    string
}

var sqliteDialect = dialect{
	products: "products",
	sales:    "sales",
	numeric: func(column string) string {
		return "CAST(" + column + " AS REAL)"
	},
}

func (d dialect) saleColumns() string {
	return `s.id, s.product_id, s.date, s.quantity, s.revenue, s.cost, s.profit, p.name, p.category`
}

// saleQuery builds the filtered, date-descending sale listing.
func (d dialect) saleQuery(filter service.SaleFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if filter.ProductID > 0 {
		where = append(where, "s.product_id = ?")
		args = append(args, filter.ProductID)
	}
	if filter.Category != "" {
		where = append(where, "p.category = ?")
		args = append(args, filter.Category)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		where = append(where, "(p.name LIKE ? OR p.category LIKE ?)")
		like := "%" + term + "%"
		args = append(args, like, like)
	}
	if filter.From != nil {
		where = append(where, "s.date >= ?")
		args = append(args, filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		where = append(where, "s.date <= ?")
		args = append(args, filter.To.Format(dateLayout))
	}
	if filter.MinProfit != nil {
		where = append(where, d.numeric("s.profit")+" >= ?")
		args = append(args, filter.MinProfit.InexactFloat64())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s s JOIN %s p ON p.id = s.product_id", d.saleColumns(), d.sales, d.products)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY s.date DESC, s.id DESC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	return b.String(), args
}

// totalsQuery lists every product once per sale, with a NULL revenue for
// products that have none.
func (d dialect) totalsQuery() string {
	return fmt.Sprintf(`SELECT p.id, p.name, p.category, p.price, p.cost, s.revenue `+
		`FROM %s p LEFT JOIN %s s ON s.product_id = p.id ORDER BY p.id`, d.products, d.sales)
}

func (d dialect) categoriesQuery() string {
	return fmt.Sprintf(`SELECT DISTINCT category FROM %s ORDER BY category`, d.products)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (model.Sale, error) {
	var sale model.Sale
	err := row.Scan(
		&sale.ID, &sale.ProductID, &sale.Date, &sale.Quantity,
		&sale.Revenue, &sale.Cost, &sale.Profit,
		&sale.ProductName, &sale.Category,
	)
	if err != nil {
		return sale, err
	}
	sale.Date = model.DateOnly(sale.Date)
	return sale, nil
}

func querySales(ctx context.Context, q queryable, d dialect, filter service.SaleFilter) ([]model.Sale, error) {
	query, args := d.saleQuery(filter)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := make([]model.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

// queryProductTotals returns every product with its summed revenue. Sums are
// computed with decimal arithmetic rather than in SQL.
func queryProductTotals(ctx context.Context, q queryable, d dialect) ([]model.ProductTotal, error) {
	rows, err := q.QueryContext(ctx, d.totalsQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to query product totals: %w", err)
	}
	defer rows.Close()

	totals := make([]model.ProductTotal, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			p       model.Product
			revenue decimal.NullDecimal
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Cost, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan product total: %w", err)
		}

		i, ok := index[p.ID]
		if !ok {
			i = len(totals)
			index[p.ID] = i
			totals = append(totals, model.ProductTotal{Product: p})
		}
		if revenue.Valid {
			totals[i].Revenue = totals[i].Revenue.Add(revenue.Decimal)
			totals[i].SalesCount++
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product totals: %w", err)
	}

	return totals, nil
}

func queryCategories(ctx context.Context, q queryable, d dialect) ([]string, error) {
	rows, err := q.QueryContext(ctx, d.categoriesQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// summarize folds sales into totals. AvgMargin is profit over revenue, zero without revenue.
func summarize(sales []model.Sale) service.SalesTotals {
	totals := service.SalesTotals{Count: len(sales)}
	for _, sale := range sales {
		totals.Revenue = totals.Revenue.Add(sale.Revenue)
		totals.Profit = totals.Profit.Add(sale.Profit)
	}
	if !totals.Revenue.IsZero() {
		totals.AvgMargin = totals.Profit.Div(totals.Revenue).Mul(decimal.NewFromInt(100))
	}
	return totals
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
