package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/common"
)

// Supported record store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Configuration defaults.
const (
	DefaultDatabasePath = "~/.local/share/tally/tally.db"
	DefaultTablePrefix  = "dashboard_"
	DefaultEvalWindow   = 200
	DefaultCurrency     = "₱"
)

// Database holds the record store settings.
type Database struct {
	Driver      string
	Path        string
	DSN         string
	TablePrefix string
}

// Report holds presentation settings for reports.
type Report struct {
	Currency   string
	EvalWindow int
}

// SetDefaults registers default values for every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.table_prefix", DefaultTablePrefix)
	v.SetDefault("report.eval_window", DefaultEvalWindow)
	v.SetDefault("report.currency", DefaultCurrency)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// LoadDatabase reads and validates the database section.
func LoadDatabase(v *viper.Viper) (Database, error) {
	db := Database{
		Driver:      strings.ToLower(v.GetString("database.driver")),
		Path:        ExpandPath(v.GetString("database.path")),
		DSN:         v.GetString("database.dsn"),
		TablePrefix: v.GetString("database.table_prefix"),
	}

	switch db.Driver {
	case DriverSQLite:
		if db.Path == "" {
			return db, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
		}
	case DriverMySQL:
		if db.DSN == "" {
			return db, fmt.Errorf("%w: database.dsn is required for the mysql driver", common.ErrMissingConfig)
		}
	default:
		return db, fmt.Errorf("%w: unknown database driver %q", common.ErrInvalidConfig, db.Driver)
	}

	return db, nil
}

// LoadReport reads the report section, falling back to defaults for unusable values.
func LoadReport(v *viper.Viper) Report {
	r := Report{
		Currency:   v.GetString("report.currency"),
		EvalWindow: v.GetInt("report.eval_window"),
	}
	if r.EvalWindow <= 0 {
		r.EvalWindow = DefaultEvalWindow
	}
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	return r
}
