package tui

import (
	"context"

	"github.com/Veraticus/tally/internal/analytics"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/tui/themes"
)

// Loader fetches a fresh dashboard and the sales listed on the Data tab.
type Loader func(ctx context.Context) (analytics.Dashboard, []model.Sale, error)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Loader   Loader
	Currency string
	Width    int
	Height   int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Currency: "₱",
		Width:    80,
		Height:   24,
	}
}

// WithLoader sets the data source.
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.Loader = loader
	}
}

// WithCurrency sets the currency symbol used for money.
func WithCurrency(symbol string) Option {
	return func(c *Config) {
		c.Currency = symbol
	}
}

// WithTheme sets a custom theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
