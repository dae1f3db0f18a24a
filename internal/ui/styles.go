// Package ui renders the terminal reports of the wattwise CLI.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorPrimary   = lipgloss.Color("#F59E0B") // Amber
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#FACC15") // Yellow
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorTextDim   = lipgloss.Color("#9CA3AF") // Light gray
	ColorTextMute  = lipgloss.Color("#6B7280") // Muted gray
)

type styleWrapper struct {
	style lipgloss.Style
}

// Render renders str with the style.
func (s styleWrapper) Render(str string) string {
	return s.style.Render(str)
}

// Text styles.
var (
	Bold      = styleWrapper{lipgloss.NewStyle().Bold(true)}
	Dim       = styleWrapper{lipgloss.NewStyle().Foreground(ColorTextDim)}
	Muted     = styleWrapper{lipgloss.NewStyle().Foreground(ColorTextMute)}
	Success   = styleWrapper{lipgloss.NewStyle().Foreground(ColorSuccess)}
	Warning   = styleWrapper{lipgloss.NewStyle().Foreground(ColorWarning)}
	Error     = styleWrapper{lipgloss.NewStyle().Foreground(ColorError)}
	Primary   = styleWrapper{lipgloss.NewStyle().Foreground(ColorPrimary)}
	Secondary = styleWrapper{lipgloss.NewStyle().Foreground(ColorSecondary)}
	Title     = styleWrapper{lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)}
)

// Box frames a report section.
var Box = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorTextMute).
	Padding(0, 1)

// GetCheckMark returns a styled check mark.
func GetCheckMark() string { return Success.Render("✓") }

// GetCrossMark returns a styled cross mark.
func GetCrossMark() string { return Error.Render("✗") }

// GetWarnMark returns a styled warning mark.
func GetWarnMark() string { return Warning.Render("!") }

// ForStatus picks the style matching an appliance or day status.
func ForStatus(status string) styleWrapper {
	switch status {
	case "RUN NOW", "HIGH":
		return Success
	case "WAIT", "MODERATE":
		return Warning
	default:
		return Error
	}
}
