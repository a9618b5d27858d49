package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	datatable "github.com/johan-st/datatable/internal/table"
)

// palette holds the colors of one theme.
type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	accent    lipgloss.Color
	error     lipgloss.Color
	muted     lipgloss.Color
	text      lipgloss.Color
	bg        lipgloss.Color
	selected  lipgloss.Color
}

var (
	darkPalette = palette{
		primary:   lipgloss.Color("#7C3AED"), // Purple
		secondary: lipgloss.Color("#10B981"), // Green
		accent:    lipgloss.Color("#F59E0B"), // Amber
		error:     lipgloss.Color("#EF4444"), // Red
		muted:     lipgloss.Color("#6B7280"), // Gray
		text:      lipgloss.Color("#F3F4F6"), // Light gray
		bg:        lipgloss.Color("#1F2937"), // Dark gray
		selected:  lipgloss.Color("#374151"),
	}

	lightPalette = palette{
		primary:   lipgloss.Color("#6D28D9"),
		secondary: lipgloss.Color("#047857"),
		accent:    lipgloss.Color("#B45309"),
		error:     lipgloss.Color("#B91C1C"),
		muted:     lipgloss.Color("#6B7280"),
		text:      lipgloss.Color("#111827"),
		bg:        lipgloss.Color("#E5E7EB"),
		selected:  lipgloss.Color("#DDD6FE"),
	}
)

// Styles is the rendered look of the UI for one theme.
type Styles struct {
	Pane      lipgloss.Style
	Modal     lipgloss.Style
	Title     lipgloss.Style
	Table     table.Styles
	StatusBar lipgloss.Style
	StatusKey lipgloss.Style
	Dim       lipgloss.Style
	Selected  lipgloss.Style
	Prompt    lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
}

// NewStyles builds the styles for theme.
func NewStyles(theme datatable.Theme) Styles {
	p := lightPalette
	if theme == datatable.Dark {
		p = darkPalette
	}

	return Styles{
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.muted).
			Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true),

		Table: table.Styles{
			Header: lipgloss.NewStyle().
				Bold(true).
				Foreground(p.text).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(p.muted).
				Padding(0, 1),
			Cell: lipgloss.NewStyle().
				Foreground(p.text).
				Padding(0, 1),
			Selected: lipgloss.NewStyle().
				Background(p.selected).
				Foreground(p.text).
				Bold(true),
		},

		StatusBar: lipgloss.NewStyle().
			Background(p.bg).
			Foreground(p.text).
			Padding(0, 1),

		StatusKey: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),

		Dim: lipgloss.NewStyle().
			Foreground(p.muted),

		Selected: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true),

		HelpKey: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(p.muted),

		Error: lipgloss.NewStyle().
			Foreground(p.error).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(p.secondary),
	}
}
