package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/tally/internal/cli"
)

// Styles contains all styling definitions for report formatting.
type Styles struct {
	// Base styles from CLI package
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style

	// Report-specific styles
	Box        lipgloss.Style
	Figure     lipgloss.Style
	Label      lipgloss.Style
	BarFill    lipgloss.Style
	BarEmpty   lipgloss.Style
	Forecast   lipgloss.Style
	MatrixCell lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	s := &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Info:     cli.InfoStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),
	}

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.SubtleColor).
		Padding(0, 1).
		MarginTop(1)

	s.Figure = cli.FigureStyle

	s.Label = lipgloss.NewStyle().
		Foreground(cli.InfoColor).
		Width(16)

	s.BarFill = lipgloss.NewStyle().
		Foreground(cli.PrimaryColor)

	s.BarEmpty = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#333333"))

	s.Forecast = lipgloss.NewStyle().
		Foreground(cli.AccentColor).
		Italic(true)

	s.MatrixCell = lipgloss.NewStyle().
		Width(12).
		Align(lipgloss.Right)

	return s
}

// WithWidth returns a copy adjusted for the given terminal width.
func (s *Styles) WithWidth(width int) *Styles {
	newStyles := *s
	if width > 0 && width < 100 {
		boxCopy := s.Box
		newStyles.Box = boxCopy.Width(width - 4)
	}
	return &newStyles
}
