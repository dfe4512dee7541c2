package ui

import "github.com/charmbracelet/lipgloss"

// Plain ANSI colors so the palette follows the user's terminal theme.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// ErrorStyle marks failed operations in the REPL and admin output.
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)
