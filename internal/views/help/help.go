// Package help renders the legend and key reference overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mission-control/telemetry/internal/theme"
)

// Legend explains how readings map onto the rocket.
const Legend = "Rocket altitude = Fuel Level | Tilt = Trajectory"

const markdown = `# Mission Control

` + Legend + `

| Reading | Rocket |
|---|---|
| Fuel level | altitude, flame brightness, exhaust particles above 20% |
| Trajectory | nose tilt, 180° is upright |
| Status WARNING | red hull, shake, instability banner |

## Keys

| Key | Action |
|---|---|
| ` + "`d`" + ` | toggle debug log |
| ` + "`?`" + ` | toggle this help |
| ` + "`j`/`k`" + ` | scroll debug log |
| ` + "`e`" + ` | debug log: errors and stale drops only |
| ` + "`esc`" + ` | close overlay |
| ` + "`q`" + ` | quit |
`

// Markdown returns the raw help document.
func Markdown() string {
	return markdown
}

// Model caches the rendered overlay for the last width drawn.
type Model struct {
	width   int
	view    string
	renders int
}

// New returns an empty help overlay.
func New() *Model {
	return &Model{}
}

// View returns the help overlay at the given width, rendering it only
// when the width changes.
func (m *Model) View(width int) string {
	if m.view == "" || width != m.width {
		m.width = width
		m.view = render(width)
		m.renders++
	}
	return m.view
}

// render draws the overlay. If glamour fails the raw markdown is shown
// instead.
func render(width int) string {
	innerW := width - 8
	if innerW < 30 {
		innerW = 30
	}
	body := Markdown()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(innerW),
	)
	if err == nil {
		if out, rerr := r.Render(body); rerr == nil {
			body = strings.TrimRight(out, "\n")
		}
	}

	return lipgloss.NewStyle().
		Width(innerW+4).
		Padding(0, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBlue).
		Render(body)
}
