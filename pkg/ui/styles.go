package ui

import "github.com/charmbracelet/lipgloss"

var (
	cyan   = lipgloss.Color("#00D7D7")
	green  = lipgloss.Color("#5FD700")
	yellow = lipgloss.Color("#FFD700")
	orange = lipgloss.Color("#FF8700")
	red    = lipgloss.Color("#FF005F")
	dim    = lipgloss.Color("#8A8A8A")

	titleStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyan).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Foreground(yellow)

	successStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(orange).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(dim)
)
