package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/analytics"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

const dateLayout = "2006-01-02"

// envKeyReplacer maps nested keys such as database.path onto TALLY_DATABASE_PATH.
var envKeyReplacer = strings.NewReplacer(".", "_")

// initStorage opens the writable SQLite store and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	db, err := config.LoadDatabase(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if db.Driver != config.DriverSQLite {
		return nil, common.NewUserError("this command needs the sqlite driver; the mysql store is read-only", common.ErrReadOnly)
	}

	store, err := storage.NewSQLiteStorage(db.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openRecordStore opens whichever store the configuration selects, for reading.
func openRecordStore(ctx context.Context) (service.RecordStore, error) {
	db, err := config.LoadDatabase(viper.GetViper())
	if err != nil {
		return nil, err
	}

	switch db.Driver {
	case config.DriverMySQL:
		common.LogDebug("Opening MySQL record store", common.Fields{"table_prefix": db.TablePrefix})
		return storage.OpenMySQL(ctx, db.DSN, db.TablePrefix)
	default:
		return initStorage(ctx)
	}
}

// parseDate parses a YYYY-MM-DD flag value. Empty input yields nil.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return &t, nil
}

// parseAmount parses a decimal flag value. Empty input yields nil.
func parseAmount(name, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return &d, nil
}

func parseID(value, what string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", what, value)
	}
	return id, nil
}

// saleFilterFlags are the filters shared by sales list, report and dashboard.
type saleFilterFlags struct {
	category  string
	search    string
	from      string
	to        string
	minProfit string
	productID int64
}

func (f saleFilterFlags) filter() (service.SaleFilter, error) {
	from, err := parseDate(f.from)
	if err != nil {
		return service.SaleFilter{}, err
	}
	to, err := parseDate(f.to)
	if err != nil {
		return service.SaleFilter{}, err
	}
	minProfit, err := parseAmount("minimum profit", f.minProfit)
	if err != nil {
		return service.SaleFilter{}, err
	}

	return service.SaleFilter{
		ProductID: f.productID,
		Category:  f.category,
		Search:    f.search,
		From:      from,
		To:        to,
		MinProfit: minProfit,
	}, nil
}

// dashboardQuery describes one dashboard snapshot.
type dashboardQuery struct {
	AsOf       time.Time
	Filter     service.SaleFilter
	EvalWindow int
}

// trendWindow returns the range BucketMonthly can place sales into.
func trendWindow(asOf time.Time) service.SaleFilter {
	to := model.DateOnly(asOf)
	from := to.AddDate(0, 0, -analytics.BucketSpanDays*analytics.MonthlyWindowBuckets)
	return service.SaleFilter{From: &from, To: &to}
}

// loadDashboard reads one snapshot from store and computes every report over it.
// The filtered sales are returned alongside for tabular display.
func loadDashboard(ctx context.Context, store service.RecordStore, q dashboardQuery, now time.Time) (analytics.Dashboard, []model.Sale, error) {
	sales, err := store.ListSales(ctx, q.Filter)
	if err != nil {
		return analytics.Dashboard{}, nil, fmt.Errorf("failed to list sales: %w", err)
	}

	trend, err := store.ListSales(ctx, trendWindow(q.AsOf))
	if err != nil {
		return analytics.Dashboard{}, nil, fmt.Errorf("failed to list trend sales: %w", err)
	}

	window := q.EvalWindow
	if window <= 0 {
		window = analytics.EvaluationWindow
	}
	recent, err := store.GetRecentSales(ctx, window)
	if err != nil {
		return analytics.Dashboard{}, nil, fmt.Errorf("failed to get recent sales: %w", err)
	}

	totals, err := store.GetProductTotals(ctx)
	if err != nil {
		return analytics.Dashboard{}, nil, fmt.Errorf("failed to get product totals: %w", err)
	}

	common.LogDebug("Loaded dashboard snapshot", common.Fields{
		"sales":    len(sales),
		"trend":    len(trend),
		"recent":   len(recent),
		"products": len(totals),
	})

	dashboard := analytics.BuildDashboard(analytics.DashboardInput{
		AsOf:        q.AsOf,
		GeneratedAt: now,
		Sales:       sales,
		Trend:       trend,
		Recent:      recent,
		Totals:      totals,
		EvalWindow:  window,
	})
	return dashboard, sales, nil
}

// resolveAsOf returns the parsed --as-of date or today.
func resolveAsOf(value string, now time.Time) (time.Time, error) {
	asOf, err := parseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	if asOf == nil {
		return model.DateOnly(now), nil
	}
	return *asOf, nil
}
