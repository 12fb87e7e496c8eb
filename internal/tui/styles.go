package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tock/internal/store"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// labelColors cycles through for chart series.
var labelColors = []lipgloss.Color{
	colorPrimary, colorSecondary, colorAccent, colorWarning, colorHighlight, colorSuccess,
}

// Styles
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	idStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorHighlight)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)
)

var stateStyles = map[store.State]lipgloss.Style{
	store.StateRunning:   lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
	store.StatePaused:    lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
	store.StateCompleted: lipgloss.NewStyle().Foreground(colorMuted),
	store.StateLost:      lipgloss.NewStyle().Bold(true).Foreground(colorError),
}

func stateBadge(s store.State) string {
	style, ok := stateStyles[s]
	if !ok {
		style = errorStyle
	}
	return style.Width(9).Render(string(s))
}
