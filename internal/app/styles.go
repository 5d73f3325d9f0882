package app

import (
	"threadwatch/internal/monitor"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelBorder     = lipgloss.Color("#2D6A80")
	accentPrimary   = lipgloss.Color("#50E3C2")
	accentSecondary = lipgloss.Color("#F6AE2D")
	mutedText       = lipgloss.Color("#8CA1AE")
	warningText     = lipgloss.Color("#FF6B6B")
	successText     = lipgloss.Color("#6AE18A")
	badgeText       = lipgloss.Color("#05090C")
)

var (
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(accentPrimary)

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(mutedText)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(mutedText)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Underline(true).
			Foreground(accentPrimary)

	statusStyle = lipgloss.NewStyle().
			Foreground(accentSecondary).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(warningText).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successText).
			Bold(true)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(accentPrimary).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder).
			Padding(0, 1)

	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warningText).
			Foreground(warningText).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedText)

	eventKindStyle = lipgloss.NewStyle().
			Foreground(accentSecondary)

	historySelectedLineStyle = lipgloss.NewStyle().
					Foreground(accentPrimary).
					Bold(true)
)

func statusBadge(status monitor.Status) string {
	bg := mutedText
	switch status {
	case monitor.StatusConnecting:
		bg = accentSecondary
	case monitor.StatusRunning:
		bg = accentPrimary
	case monitor.StatusCompleted:
		bg = successText
	case monitor.StatusFailed:
		bg = warningText
	}
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(badgeText).
		Background(bg).
		Render(status.String())
}
