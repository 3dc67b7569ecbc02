package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/tally/internal/analytics"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/report"
	"github.com/Veraticus/tally/internal/tui/themes"
)

// Tab identifies a dashboard page.
type Tab int

const (
	TabSales Tab = iota
	TabMarket
	TabData
	TabEval
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabSales:
		return "Sales"
	case TabMarket:
		return "Market"
	case TabData:
		return "Data"
	case TabEval:
		return "Evaluation"
	default:
		return "Unknown"
	}
}

// chromeHeight is the rows taken by the tab bar, status line and help.
const chromeHeight = 6

// Model holds the dashboard state.
type Model struct {
	ctx       context.Context
	lastError error
	formatter *report.Formatter
	theme     themes.Theme
	config    Config
	keymap    KeyMap
	help      help.Model
	spinner   spinner.Model
	accuracy  progress.Model
	sales     table.Model
	dashboard analytics.Dashboard
	records   []model.Sale
	tab       Tab
	width     int
	height    int
	loading   bool
	loaded    bool
	quitting  bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	m := Model{
		ctx:       ctx,
		config:    cfg,
		theme:     cfg.Theme,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		spinner:   s,
		accuracy:  progress.New(progress.WithDefaultGradient()),
		sales:     newSalesTable(cfg.Theme),
		formatter: report.NewFormatter(cfg.Currency),
		width:     cfg.Width,
		height:    cfg.Height,
		loading:   true,
	}
	m.handleResize()
	return m
}

func newSalesTable(theme themes.Theme) table.Model {
	t := table.New(
		table.WithColumns(salesColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	styles.Selected = theme.Selected
	t.SetStyles(styles)
	return t
}

func salesColumns(width int) []table.Column {
	// ID, date, quantity, revenue, cost and profit are fixed; product takes the rest.
	fixed := 6 + 12 + 5 + 14 + 14 + 14
	product := width - fixed - 14
	if product < 12 {
		product = 12
	}
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Date", Width: 12},
		{Title: "Product", Width: product},
		{Title: "Qty", Width: 5},
		{Title: "Revenue", Width: 14},
		{Title: "Cost", Width: 14},
		{Title: "Profit", Width: 14},
	}
}

// Init starts the spinner and the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadDashboard())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case dashboardLoadedMsg:
		m.handleLoaded(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.lastError = nil
		return m, tea.Batch(m.spinner.Tick, m.loadDashboard())

	case key.Matches(msg, m.keymap.NextTab):
		m.tab = (m.tab + 1) % tabCount
		return m, nil

	case key.Matches(msg, m.keymap.PrevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount
		return m, nil

	case key.Matches(msg, m.keymap.Sales):
		m.tab = TabSales
		return m, nil

	case key.Matches(msg, m.keymap.Market):
		m.tab = TabMarket
		return m, nil

	case key.Matches(msg, m.keymap.Data):
		m.tab = TabData
		return m, nil

	case key.Matches(msg, m.keymap.Eval):
		m.tab = TabEval
		return m, nil
	}

	if m.tab == TabData {
		var cmd tea.Cmd
		m.sales, cmd = m.sales.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleLoaded(msg dashboardLoadedMsg) {
	m.loading = false
	if msg.err != nil {
		m.lastError = msg.err
		return
	}

	m.lastError = nil
	m.loaded = true
	m.dashboard = msg.dashboard
	m.records = msg.sales
	m.sales.SetRows(m.salesRows())
	m.sales.GotoTop()
}

func (m Model) salesRows() []table.Row {
	rows := make([]table.Row, 0, len(m.records))
	for _, s := range m.records {
		name := s.ProductName
		if name == "" {
			name = fmt.Sprintf("#%d", s.ProductID)
		}
		rows = append(rows, table.Row{
			fmt.Sprint(s.ID),
			s.Date.Format("2006-01-02"),
			name,
			fmt.Sprint(s.Quantity),
			m.config.Currency + report.FormatAmount(s.Revenue),
			m.config.Currency + report.FormatAmount(s.Cost),
			m.config.Currency + report.FormatAmount(s.Profit),
		})
	}
	return rows
}

func (m *Model) handleResize() {
	m.help.Width = m.width
	m.formatter = m.formatter.WithWidth(m.width)
	m.accuracy.Width = max(m.width-20, 10)
	m.sales.SetColumns(salesColumns(m.width))
	m.sales.SetHeight(max(m.height-chromeHeight, 3))
}

// Tab returns the active page.
func (m Model) Tab() Tab {
	return m.tab
}

// Loading reports whether a load is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Err returns the last load error, if any.
func (m Model) Err() error {
	return m.lastError
}
