package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

var (
	// ErrInvalidDSN indicates a MySQL connection string that cannot be used.
	ErrInvalidDSN = errors.New("invalid mysql dsn")
	// ErrInvalidPrefix indicates a table prefix with characters outside [A-Za-z0-9_].
	ErrInvalidPrefix = errors.New("invalid table prefix")

	tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// MySQLStore reads products and sales from an existing dashboard database.
// It never writes.
type MySQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ service.RecordStore = (*MySQLStore)(nil)

// OpenMySQL connects to a MySQL or MariaDB database whose tables are named
// <prefix>product and <prefix>salesdata.
func OpenMySQL(ctx context.Context, dsn, prefix string) (*MySQLStore, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !tablePrefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}

	native, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", native)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	err = common.WithRetry(ctx, func() error {
		return classifyMySQLError(db.PingContext(ctx))
	}, common.RetryOptions{MaxAttempts: 3, InitialDelay: 250 * time.Millisecond})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	return &MySQLStore{db: db, dialect: mysqlDialect(prefix)}, nil
}

// mysqlDialect names the dashboard tables. DECIMAL columns already compare
// as numbers, so numeric is the identity.
func mysqlDialect(prefix string) dialect {
	return dialect{
		products: prefix + "product",
		sales:    prefix + "salesdata",
		numeric:  func(column string) string { return column },
	}
}

// Server errors that retrying cannot fix.
var permanentMySQLErrors = map[uint16]bool{
	1044: true, // ER_DBACCESS_DENIED_ERROR
	1045: true, // ER_ACCESS_DENIED_ERROR
	1049: true, // ER_BAD_DB_ERROR
	1698: true, // ER_ACCESS_DENIED_NO_PASSWORD_ERROR
}

// classifyMySQLError marks authentication and unknown-database failures as
// non-retryable.
func classifyMySQLError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && permanentMySQLErrors[myErr.Number] {
		return &common.RetryableError{Err: err, Retryable: false}
	}
	return err
}

// toMySQLDSN accepts mysql:// or mariadb:// URLs as well as native driver DSNs
// and returns a native DSN that parses DATE columns as UTC times.
func toMySQLDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDSN)
	}

	var cfg *mysql.Config
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}

		cfg = mysql.NewConfig()
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		if cfg.User == "" || cfg.Addr == "" || cfg.DBName == "" {
			return "", fmt.Errorf("%w: user, host and database are required", ErrInvalidDSN)
		}
	} else {
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}
		cfg = parsed
	}

	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.InterpolateParams = true
	return cfg.FormatDSN(), nil
}

// Close closes the connection pool.
func (m *MySQLStore) Close() error {
	return m.db.Close()
}

// ListSales returns matching sales ordered by date descending.
func (m *MySQLStore) ListSales(ctx context.Context, filter service.SaleFilter) ([]model.Sale, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateSaleFilter(filter); err != nil {
		return nil, err
	}
	return querySales(ctx, m.db, m.dialect, filter)
}

// GetRecentSales returns the newest limit sales, newest first.
func (m *MySQLStore) GetRecentSales(ctx context.Context, limit int) ([]model.Sale, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return querySales(ctx, m.db, m.dialect, service.SaleFilter{Limit: limit})
}

// GetProductTotals returns every product with its aggregated sales revenue.
func (m *MySQLStore) GetProductTotals(ctx context.Context) ([]model.ProductTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return queryProductTotals(ctx, m.db, m.dialect)
}

// GetCategories returns the distinct product categories.
func (m *MySQLStore) GetCategories(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return queryCategories(ctx, m.db, m.dialect)
}
