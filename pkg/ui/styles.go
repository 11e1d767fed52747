package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Solarized Dark color palette
	base01 = lipgloss.Color("#586e75") // comments / borders
	base1  = lipgloss.Color("#93a1a1") // emphasized content

	solarBlue   = lipgloss.Color("#268bd2")
	solarCyan   = lipgloss.Color("#2aa198")
	solarGreen  = lipgloss.Color("#859900")
	solarYellow = lipgloss.Color("#b58900")
	solarRed    = lipgloss.Color("#dc322f")

	// Semantic color mappings
	primaryColor   = solarBlue
	secondaryColor = solarCyan
	accentColor    = base1
	mutedColor     = base01
	successColor   = solarGreen
	errorColor     = solarRed
	highlightColor = solarYellow

	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(mutedColor)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(mutedColor)

	activeTabStyle = tabStyle.
			Foreground(primaryColor).
			Bold(true).
			Underline(true)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(mutedColor)

	sectionStyle = lipgloss.NewStyle().
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	valueStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	dimStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	runningStyle = lipgloss.NewStyle().
			Foreground(highlightColor)
)
