package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/focusflow/internal/focus"
)

// Palette: calm blues with warm accents.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Yellow
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(18)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Clock = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text).
		Padding(0, 1)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressPaused = lipgloss.NewStyle().
			Background(Warning)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// QualityColor returns the color a quality rating is shown in.
func QualityColor(q focus.Quality) color.Color {
	switch q {
	case focus.QualityHigh:
		return Success
	case focus.QualityMedium:
		return Warning
	case focus.QualityLow:
		return Error
	default:
		return TextDim
	}
}

// Quality renders a quality rating in its color.
func Quality(q focus.Quality) string {
	if q == "" {
		return lipgloss.NewStyle().Foreground(TextDim).Render("unrated")
	}
	return lipgloss.NewStyle().Foreground(QualityColor(q)).Bold(true).Render(string(q))
}

// StateColor returns the color a session state is shown in.
func StateColor(s focus.State) color.Color {
	switch s {
	case focus.StateActive:
		return Secondary
	case focus.StatePaused:
		return Warning
	default:
		return TextDim
	}
}
