package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/tally/internal/cli"
)

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderTabs(), m.renderBody(), m.renderStatus(), m.help.View(m.keymap)}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := TabSales; t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == m.tab {
			tabs = append(tabs, m.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.TabInactive.Render(label))
		}
	}

	title := m.theme.Title.Render(cli.TallyIcon + " Tally")
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderBody() string {
	if !m.loaded {
		if m.lastError != nil {
			return m.theme.StatusError.Render("Failed to load dashboard: " + m.lastError.Error())
		}
		return m.spinner.View() + " " + m.theme.StatusPending.Render("Loading sales data...")
	}

	switch m.tab {
	case TabSales:
		return m.salesView()
	case TabMarket:
		return m.formatter.Market(m.dashboard.Market)
	case TabData:
		return m.dataView()
	case TabEval:
		return m.evalView()
	default:
		return ""
	}
}

func (m Model) salesView() string {
	d := m.dashboard
	return strings.Join([]string{
		m.formatter.Summary(d.Sales),
		m.formatter.Distribution(d.Sales),
		m.formatter.Trend(d.Trend),
	}, "\n")
}

func (m Model) dataView() string {
	if len(m.records) == 0 {
		return m.theme.Subtitle.Render("No sales recorded yet. Run 'tally seed' to generate sample data.")
	}
	return m.theme.RoundedBox.Render(m.sales.View())
}

func (m Model) evalView() string {
	ev := m.dashboard.Evaluation.Evaluation
	gauge := m.theme.Bold.Render("Accuracy ") + m.accuracy.ViewAs(ev.Accuracy)
	return m.formatter.Evaluation(m.dashboard.Evaluation) + "\n" + gauge
}

func (m Model) renderStatus() string {
	switch {
	case m.loading && m.loaded:
		return m.spinner.View() + " " + m.theme.StatusPending.Render("Reloading...")
	case m.lastError != nil && m.loaded:
		return m.theme.StatusError.Render("Reload failed: " + m.lastError.Error())
	case m.loaded:
		header := m.dashboard.Sales.Header
		return m.theme.StatusInfo.Render(fmt.Sprintf("%d sales", m.dashboard.Sales.Summary.Count)) +
			m.theme.Subtitle.Render(" · generated "+header.Timestamp())
	default:
		return ""
	}
}
