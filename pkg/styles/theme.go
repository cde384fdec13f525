// Package styles defines the colour palette and lipgloss styles shared by
// console output.
package styles

import "github.com/charmbracelet/lipgloss"

// Adaptive colours work on both light and dark terminal backgrounds.
var (
	ColorError    = lipgloss.AdaptiveColor{Light: "#D73737", Dark: "#FF5555"}
	ColorWarning  = lipgloss.AdaptiveColor{Light: "#E67E22", Dark: "#FFB86C"}
	ColorSuccess  = lipgloss.AdaptiveColor{Light: "#27AE60", Dark: "#50FA7B"}
	ColorInfo     = lipgloss.AdaptiveColor{Light: "#2980B9", Dark: "#8BE9FD"}
	ColorPurple   = lipgloss.AdaptiveColor{Light: "#8E44AD", Dark: "#BD93F9"}
	ColorComment  = lipgloss.AdaptiveColor{Light: "#6C7A89", Dark: "#6272A4"}
	ColorBorder   = lipgloss.AdaptiveColor{Light: "#BDC3C7", Dark: "#44475A"}
	ColorTableRow = lipgloss.AdaptiveColor{Light: "#2C3E50", Dark: "#F8F8F2"}
)

var (
	Error    = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	Warning  = lipgloss.NewStyle().Foreground(ColorWarning)
	Success  = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	Info     = lipgloss.NewStyle().Foreground(ColorInfo)
	Command  = lipgloss.NewStyle().Foreground(ColorPurple).Bold(true)
	Progress = lipgloss.NewStyle().Foreground(ColorInfo)
	Comment  = lipgloss.NewStyle().Foreground(ColorComment)

	TableHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorInfo).Padding(0, 1)
	TableCell   = lipgloss.NewStyle().Foreground(ColorTableRow).Padding(0, 1)
	TableTitle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPurple)
	TableBorder = lipgloss.NewStyle().Foreground(ColorBorder)
)
