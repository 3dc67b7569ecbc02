// Package tui provides the interactive sales dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoLoader is returned when Run is called without a data source.
var ErrNoLoader = errors.New("a loader is required")

// New builds a dashboard model from options.
func New(ctx context.Context, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Loader == nil {
		return Model{}, ErrNoLoader
	}
	return newModel(ctx, cfg), nil
}

// Run shows the dashboard until the user quits or ctx is canceled.
func Run(ctx context.Context, opts ...Option) error {
	m, err := New(ctx, opts...)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
