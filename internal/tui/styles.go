package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	SubtleColor    = lipgloss.Color("#626262") // Gray
	HighlightColor = lipgloss.Color("#43BF6D") // Green
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	ItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	DetailStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			PaddingLeft(4)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	WarnStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(1, 0)
)
