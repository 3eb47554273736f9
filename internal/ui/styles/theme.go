// Package styles holds the color theme and the pre-built lipgloss
// styles the views render with.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/models"
)

// Theme is one named color scheme.
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Accent lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// CatppuccinMocha is the default theme.
var CatppuccinMocha = Theme{
	Name: "Catppuccin Mocha",

	Foreground:    lipgloss.Color("#cdd6f4"),
	ForegroundDim: lipgloss.Color("#6c7086"),

	Accent: lipgloss.Color("#89b4fa"),

	Success: lipgloss.Color("#a6e3a1"),
	Warning: lipgloss.Color("#f9e2af"),
	Error:   lipgloss.Color("#f38ba8"),

	Border:      lipgloss.Color("#45475a"),
	BorderFocus: lipgloss.Color("#89b4fa"),
	Selection:   lipgloss.Color("#313244"),
}

// Current is the active theme.
var Current = CatppuccinMocha

// MaxWidth caps the content column on wide terminals.
const MaxWidth = 80

// ContentWidth returns the usable content width for a terminal width.
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally on terminals wider than
// MaxWidth; narrower terminals get the content as-is.
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles are the pre-built styles shared by all views.
type Styles struct {
	Title lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	Done    lipgloss.Style
	Overdue lipgloss.Style

	InputFocused lipgloss.Style

	Help      lipgloss.Style
	StatusBar lipgloss.Style
	ErrorBar  lipgloss.Style

	priority map[models.Priority]lipgloss.Style
}

// NewStyles builds the style set from the current theme.
func NewStyles() *Styles {
	t := Current
	base := lipgloss.NewStyle().Foreground(t.Foreground)

	return &Styles{
		Title: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),

		ListItem:     base.Padding(0, 2),
		ListSelected: base.Foreground(t.Accent).Background(t.Selection).Padding(0, 2).Bold(true),

		Done:    lipgloss.NewStyle().Foreground(t.ForegroundDim).Strikethrough(true),
		Overdue: lipgloss.NewStyle().Foreground(t.Error).Bold(true),

		InputFocused: base.Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderFocus).Padding(0, 1),

		Help:      lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(1, 2),
		StatusBar: lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(0, 1),
		ErrorBar:  lipgloss.NewStyle().Foreground(t.Error).Padding(0, 1),

		priority: map[models.Priority]lipgloss.Style{
			models.PriorityLow:    lipgloss.NewStyle().Foreground(t.ForegroundDim),
			models.PriorityMedium: lipgloss.NewStyle().Foreground(t.Warning),
			models.PriorityHigh:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		},
	}
}

// Priority returns the badge style for a priority, falling back to the
// plain list style for unknown values.
func (s *Styles) Priority(p models.Priority) lipgloss.Style {
	if st, ok := s.priority[p]; ok {
		return st
	}
	return s.ListItem
}
