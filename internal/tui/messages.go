package tui

import (
	"github.com/Veraticus/tally/internal/analytics"
	"github.com/Veraticus/tally/internal/model"
)

// dashboardLoadedMsg carries the result of a Loader call.
type dashboardLoadedMsg struct {
	err       error
	dashboard analytics.Dashboard
	sales     []model.Sale
}
