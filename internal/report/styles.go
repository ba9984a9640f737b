package report

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used when writing to a terminal.
type Theme struct {
	Title     lipgloss.Style
	Moved     lipgloss.Style
	Unmatched lipgloss.Style
	Failed    lipgloss.Style
	Path      lipgloss.Style
	Dim       lipgloss.Style
}

// DefaultTheme is the terminal theme.
var DefaultTheme = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7B61FF")),
	Moved: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#73F59F")).
		Bold(true),
	Unmatched: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")),
	Failed: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF5F87")).
		Bold(true),
	Path: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5A9")),
	Dim: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")),
}

// PlainTheme renders every style as the bare text.
var PlainTheme = Theme{
	Title:     lipgloss.NewStyle(),
	Moved:     lipgloss.NewStyle(),
	Unmatched: lipgloss.NewStyle(),
	Failed:    lipgloss.NewStyle(),
	Path:      lipgloss.NewStyle(),
	Dim:       lipgloss.NewStyle(),
}
