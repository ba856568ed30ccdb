// Package status renders the top status bar.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/mission-control/telemetry/internal/telemetry"
	"github.com/mission-control/telemetry/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Endpoint string
	Status   telemetry.Status
	// Updates counts applied snapshots; each one flips the live glyph.
	Updates uint64
	Width   int
}

// New creates a status bar model for endpoint.
func New(endpoint string) Model {
	return Model{
		Endpoint: endpoint,
		Status:   telemetry.StatusInit,
	}
}

// Glyph returns the live indicator. It alternates on every update and is
// hollow until the first one arrives.
func (m Model) Glyph() string {
	if m.Updates == 0 {
		return "○"
	}
	if m.Updates%2 == 1 {
		return "●"
	}
	return "◉"
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	live := lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(m.Glyph() + " LIVE")
	status := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.StatusColor(string(m.Status))).
		Render(fmt.Sprintf("[%s]", m.Status))
	endpoint := theme.StyleDimmed.Render(m.Endpoint)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := live + sep + status + sep + endpoint

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
