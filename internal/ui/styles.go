// Package ui renders the delay experiences in the terminal. It holds
// no gate logic: models render machine snapshots and forward key
// events to the machines.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#7aa2f7")
	colorGreen   = lipgloss.Color("#9ece6a")
	colorYellow  = lipgloss.Color("#e0af68")
	colorTextDim = lipgloss.Color("#787fa0")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	counterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 3).
			Width(60)

	answerCardStyle = cardStyle.
			BorderForeground(colorYellow)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			MarginTop(1)
)
