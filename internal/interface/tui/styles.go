package tui

import "github.com/charmbracelet/lipgloss"

// Global styles used across views
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")) // Lighter gray that works better in dark terminals

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	// Message headers
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green")).
			Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("246")).
				Italic(true)

	// Parts
	reasoningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			PaddingLeft(2)

	toolTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow")).
			Bold(true)

	toolBodyStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	toolErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	exitSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("10"))

	exitFailureStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Diffs
	diffFileStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	diffAddedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	diffRemovedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9"))

	// Pager search highlighting (yellow for all matches, green for current)
	matchStyle          = lipgloss.NewStyle().Background(lipgloss.Color("11"))
	matchHighlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("10")).Foreground(lipgloss.Color("0"))
)
