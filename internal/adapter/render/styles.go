// Package render draws prepared plots, either as text in the terminal or as
// PNG images on disk.
package render

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#A8E6CF")
	muted  = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	captionStyle = lipgloss.NewStyle().
			Foreground(muted)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)
