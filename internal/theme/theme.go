// Package theme provides the Lip Gloss color palette and reusable styles
// for the mission console. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Console palette.
var (
	ColorBlack = lipgloss.Color("#0a0a0f")
	ColorBlue  = lipgloss.Color("#00f3ff")
	ColorRed   = lipgloss.Color("#ff003c")
	ColorGreen = lipgloss.Color("#00ff9f")
)

// Rocket colors.
var (
	ColorHull      = lipgloss.Color("#e5e7eb")
	ColorWindow    = ColorBlue
	ColorFlameHot  = lipgloss.Color("#fde047")
	ColorFlameMid  = lipgloss.Color("#f97316")
	ColorFlameCool = lipgloss.Color("#b91c1c")
	ColorExhaust   = lipgloss.Color("#9ca3af")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#1f2937")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = ColorGreen
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = ColorRed
)

// FuelColor returns the gauge color for a fuel percentage.
func FuelColor(fuel float64) lipgloss.Color {
	switch {
	case fuel < 20:
		return ColorDanger
	case fuel < 50:
		return ColorWarning
	default:
		return ColorBlue
	}
}

// FlameColor returns the flame shade for an intensity in [0.3, 1].
func FlameColor(intensity float64) lipgloss.Color {
	switch {
	case intensity >= 0.75:
		return ColorFlameHot
	case intensity >= 0.5:
		return ColorFlameMid
	default:
		return ColorFlameCool
	}
}

// StatusColor returns the color for a reported status string.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "NOMINAL":
		return ColorHealthy
	case "WARNING":
		return ColorDanger
	default:
		return ColorDimmed
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleAlertBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(ColorRed)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBlue)

	StyleLabel = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleValue = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleBanner = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright).
		Background(ColorRed).
		Padding(0, 2)
)
