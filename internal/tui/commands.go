package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const loadTimeout = 30 * time.Second

// loadDashboard runs the loader in the background.
func (m Model) loadDashboard() tea.Cmd {
	loader := m.config.Loader
	parent := m.ctx
	return func() tea.Msg {
		if loader == nil {
			return dashboardLoadedMsg{err: fmt.Errorf("no data source configured")}
		}

		ctx, cancel := context.WithTimeout(parent, loadTimeout)
		defer cancel()

		dashboard, sales, err := loader(ctx)
		return dashboardLoadedMsg{
			dashboard: dashboard,
			sales:     sales,
			err:       err,
		}
	}
}
