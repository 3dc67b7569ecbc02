package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/analytics"
	"github.com/Veraticus/tally/internal/model"
)

func testSales() []model.Sale {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	s1 := model.NewSale(1, day, 2, decimal.NewFromInt(3000), decimal.NewFromInt(1600))
	s1.ID, s1.ProductName, s1.Category = 2, "Wireless Mouse X", "mouse"
	s2 := model.NewSale(1, day.AddDate(0, 0, -1), 1, decimal.NewFromInt(1500), decimal.NewFromInt(800))
	s2.ID, s2.ProductName, s2.Category = 1, "Wireless Mouse X", "mouse"
	return []model.Sale{s1, s2}
}

func staticLoader(sales []model.Sale, err error) Loader {
	return func(context.Context) (analytics.Dashboard, []model.Sale, error) {
		if err != nil {
			return analytics.Dashboard{}, nil, err
		}
		at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
		d := analytics.BuildDashboard(analytics.DashboardInput{
			AsOf:        at,
			GeneratedAt: at,
			Sales:       sales,
			Trend:       sales,
			Recent:      sales,
		})
		return d, sales, nil
	}
}

func newTestModel(t *testing.T, loader Loader) Model {
	t.Helper()
	m, err := New(context.Background(), WithLoader(loader), WithSize(120, 40))
	require.NoError(t, err)
	return m
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.loadDashboard()()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew_RequiresLoader(t *testing.T) {
	_, err := New(context.Background())
	require.ErrorIs(t, err, ErrNoLoader)
}

func TestModel_TabSwitching(t *testing.T) {
	tests := []struct {
		name  string
		keys  []tea.KeyMsg
		start Tab
		want  Tab
	}{
		{name: "tab advances", start: TabSales, keys: []tea.KeyMsg{{Type: tea.KeyTab}}, want: TabMarket},
		{name: "tab wraps", start: TabEval, keys: []tea.KeyMsg{{Type: tea.KeyTab}}, want: TabSales},
		{name: "shift+tab wraps backwards", start: TabSales, keys: []tea.KeyMsg{{Type: tea.KeyShiftTab}}, want: TabEval},
		{name: "number selects data", start: TabSales, keys: []tea.KeyMsg{runes("3")}, want: TabData},
		{name: "number selects eval", start: TabMarket, keys: []tea.KeyMsg{runes("4")}, want: TabEval},
		{name: "number selects sales", start: TabEval, keys: []tea.KeyMsg{runes("1")}, want: TabSales},
		{name: "combined", start: TabSales, keys: []tea.KeyMsg{runes("2"), {Type: tea.KeyTab}, {Type: tea.KeyTab}}, want: TabEval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loaded(t, newTestModel(t, staticLoader(testSales(), nil)))
			m.tab = tt.start
			for _, k := range tt.keys {
				m, _ = press(m, k)
			}
			assert.Equal(t, tt.want, m.Tab())
		})
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m := newTestModel(t, staticLoader(testSales(), nil))
		m, cmd := press(m, k)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
		assert.Empty(t, m.View())
	}
}

func TestModel_LoadPopulatesTable(t *testing.T) {
	m := newTestModel(t, staticLoader(testSales(), nil))
	assert.True(t, m.Loading())

	m = loaded(t, m)
	assert.False(t, m.Loading())
	require.NoError(t, m.Err())

	rows := m.sales.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0][0])
	assert.Equal(t, "2024-03-15", rows[0][1])
	assert.Equal(t, "Wireless Mouse X", rows[0][2])
	assert.Equal(t, "₱1,400.00", rows[0][6])
	assert.Equal(t, 2, m.dashboard.Sales.Summary.Count)
}

func TestModel_LoadError(t *testing.T) {
	boom := errors.New("database unavailable")
	m := loaded(t, newTestModel(t, staticLoader(nil, boom)))

	require.ErrorIs(t, m.Err(), boom)
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "database unavailable")
}

func TestModel_Reload(t *testing.T) {
	calls := 0
	loader := func(ctx context.Context) (analytics.Dashboard, []model.Sale, error) {
		calls++
		return staticLoader(testSales(), nil)(ctx)
	}

	m := loaded(t, newTestModel(t, loader))
	require.Equal(t, 1, calls)

	m, cmd := press(m, runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())

	// A second reload while one is in flight is ignored.
	_, again := press(m, runes("r"))
	assert.Nil(t, again)

	m = loaded(t, m)
	assert.Equal(t, 2, calls)
	assert.False(t, m.Loading())
}

func TestModel_Resize(t *testing.T) {
	m := newTestModel(t, staticLoader(testSales(), nil))
	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, 200, m.width)
	assert.Equal(t, 180, m.accuracy.Width)
	assert.Equal(t, 200, m.help.Width)
}

func TestModel_ViewPerTab(t *testing.T) {
	tests := []struct {
		want string
		tab  Tab
	}{
		{tab: TabSales, want: "Summary"},
		{tab: TabMarket, want: "Market Share"},
		{tab: TabData, want: "Wireless Mouse X"},
		{tab: TabEval, want: "Accuracy"},
	}

	for _, tt := range tests {
		t.Run(tt.tab.String(), func(t *testing.T) {
			m := loaded(t, newTestModel(t, staticLoader(testSales(), nil)))
			m.tab = tt.tab
			assert.Contains(t, m.View(), tt.want)
		})
	}
}

func TestModel_ViewBeforeLoad(t *testing.T) {
	m := newTestModel(t, staticLoader(testSales(), nil))
	assert.Contains(t, m.View(), "Loading sales data")
}
