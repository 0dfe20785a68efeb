package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - lime green accent theme.
// Single accent color keeps result pages readable at a glance.
const (
	ColorLime     = "154" // Primary accent (#AFFF00) - highlighted spans, headers
	ColorLimeDim  = "106" // Dimmed lime for secondary accents
	ColorWhite    = "255" // Important text
	ColorGray     = "245" // Labels, secondary text
	ColorDarkGray = "238" // Separators, pagination footer
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds the terminal styles for rendering search results and
// status output.
type Styles struct {
	// Result page styles
	Header    lipgloss.Style // result count line
	VideoID   lipgloss.Style // video id + timestamp location
	Highlight lipgloss.Style // matched span inside a snippet
	Snippet   lipgloss.Style // snippet body

	// Status and message styles
	Label   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns the styled components for TTY output.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		VideoID:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Snippet:   lipgloss.NewStyle(),

		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle(),
		VideoID:   lipgloss.NewStyle(),
		Highlight: lipgloss.NewStyle(),
		Snippet:   lipgloss.NewStyle(),
		Label:     lipgloss.NewStyle(),
		Success:   lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Dim:       lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
