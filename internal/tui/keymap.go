package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	NextTab key.Binding
	PrevTab key.Binding
	Sales   key.Binding
	Market  key.Binding
	Data    key.Binding
	Eval    key.Binding
	Up      key.Binding
	Down    key.Binding

	// Application
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("Tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("Shift+Tab", "previous tab"),
		),
		Sales: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "sales"),
		),
		Market: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "market"),
		),
		Data: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "data"),
		),
		Eval: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "evaluation"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Reload, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Up, k.Down},
		{k.Sales, k.Market, k.Data, k.Eval},
		{k.Reload, k.Help, k.Quit},
	}
}
