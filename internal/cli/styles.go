package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	AccentColor  = lipgloss.Color("#E07A5F")
	SuccessColor = lipgloss.Color("#81B29A")
	WarningColor = lipgloss.Color("#F2CC8F")
	ErrorColor   = lipgloss.Color("#E63946")
	SubtleColor  = lipgloss.Color("#6C757D")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	TotalStyle = lipgloss.NewStyle().
			Bold(true)
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
)

// Success renders a confirmation line.
func Success(msg string) string {
	return SuccessStyle.Render(SuccessIcon + " " + msg)
}

// Warning renders a caution line.
func Warning(msg string) string {
	return WarningStyle.Render(WarningIcon + " " + msg)
}

// Failure renders an error line.
func Failure(msg string) string {
	return ErrorStyle.Render(ErrorIcon + " " + msg)
}
