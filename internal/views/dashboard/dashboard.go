// Package dashboard renders the telemetry readouts: title, the three
// status cards and the instability banner.
package dashboard

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/mission-control/telemetry/internal/telemetry"
	"github.com/mission-control/telemetry/internal/theme"
)

// Banner is shown while the reported status is WARNING.
const Banner = "WARNING: SYSTEM INSTABILITY DETECTED"

const cardWidth = 22

// Model holds the dashboard state.
type Model struct {
	Width    int
	Snapshot telemetry.Snapshot
	gauge    progress.Model
}

// New creates a dashboard model showing the default snapshot.
func New() Model {
	return Model{
		Snapshot: telemetry.DefaultSnapshot(),
		gauge: progress.New(
			progress.WithSolidFill(string(theme.ColorBlue)),
			progress.WithoutPercentage(),
			progress.WithWidth(cardWidth-4),
		),
	}
}

// SetSnapshot replaces the displayed snapshot.
func (m *Model) SetSnapshot(s telemetry.Snapshot) {
	m.Snapshot = s
}

// View renders title, cards and, when alerting, the banner.
func (m Model) View() string {
	s := m.Snapshot
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		Render("M I S S I O N   C O N T R O L")
	subtitle := theme.StyleDimmed.Render(fmt.Sprintf("Live Telemetry // %s // %s", s.Version, s.NodeName))

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.fuelCard(),
		card("CABIN PRESS", PressureText(s.CabinPressure), s.Status.IsWarning()),
		card("TRAJECTORY", TrajectoryText(s.Trajectory), false),
	)

	sections := []string{title, subtitle, "", cards}
	if s.Status.IsWarning() {
		sections = append(sections, "", theme.StyleBanner.Render("▲ "+Banner))
	}
	width := m.Width
	if width < lipgloss.Width(cards) {
		width = lipgloss.Width(cards)
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (m Model) fuelCard() string {
	fuel := m.Snapshot.FuelLevel
	g := m.gauge
	g.FullColor = string(theme.FuelColor(fuel))
	bar := g.ViewAs(clampPercent(fuel) / 100)
	return cardWithFooter("FUEL CELLS", FuelText(fuel), bar, false)
}

func card(title, value string, alert bool) string {
	return cardWithFooter(title, value, "", alert)
}

func cardWithFooter(title, value, footer string, alert bool) string {
	box := theme.StyleBorder
	if alert {
		box = theme.StyleAlertBorder
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleLabel.Render(title),
		"",
		theme.StyleValue.Render(value),
		footer,
	)
	return box.Width(cardWidth).Padding(0, 1).Render(body)
}

// FuelText formats a fuel level the way the service reports it.
func FuelText(fuel float64) string {
	return strconv.FormatFloat(fuel, 'f', -1, 64) + "%"
}

// PressureText formats cabin pressure with two decimals.
func PressureText(p float64) string {
	return fmt.Sprintf("%.2f PSI", p)
}

// TrajectoryText formats a heading in degrees.
func TrajectoryText(deg float64) string {
	return strconv.FormatFloat(deg, 'f', -1, 64) + "°"
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
