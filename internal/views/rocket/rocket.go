// Package rocket draws the telemetry vehicle: a rocket whose height tracks
// fuel, whose nose leans with trajectory, and whose exhaust shows flame
// intensity and particles.
package rocket

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mission-control/telemetry/internal/telemetry"
	"github.com/mission-control/telemetry/internal/theme"
)

const (
	spriteWidth  = 5
	gutterWidth  = 3
	particleRows = 2
	minIntensity = 0.3
	// leanThreshold is the rotation in degrees past which the nose leans.
	leanThreshold = 8.0
)

var body = []string{
	"     ", // nose, filled by NoseGlyph
	" ╱ ╲ ",
	" │◉│ ",
	" │ │ ",
	"╱│▀│╲",
}

var flameRows = []string{
	" ▓▓▓ ",
	"  ▒  ",
	"  ░  ",
}

var particleOffsets = []int{-2, 2, -1, 1, -3, 3, 0}

type paint int

const (
	paintNone paint = iota
	paintHull
	paintWindow
	paintFlame
	paintExhaust
	paintGauge
	paintMarker
)

type cell struct {
	r rune
	p paint
}

// Model is the rocket pane state. Visual is usually the animated value
// rather than the raw derivation.
type Model struct {
	Visual telemetry.VisualState
	Fuel   float64
	Shake  int // horizontal offset in columns
	Frame  int
}

// NoseGlyph picks the nose for a rotation in degrees; negative leans left.
func NoseGlyph(rotation float64) string {
	switch {
	case rotation <= -leanThreshold:
		return "◤"
	case rotation >= leanThreshold:
		return "◥"
	default:
		return "▲"
	}
}

// noseColumn is the nose position inside the sprite.
func noseColumn(rotation float64) int {
	switch {
	case rotation <= -leanThreshold:
		return 1
	case rotation >= leanThreshold:
		return 3
	default:
		return 2
	}
}

// FlameLength maps a flame intensity to the number of flame rows, 1 to 3.
// Intensities outside [0.3, 1] draw the nearest end.
func FlameLength(intensity float64) int {
	if !(intensity > minIntensity) {
		intensity = minIntensity
	}
	if intensity > 1 {
		intensity = 1
	}
	return 1 + int(math.Round((intensity-minIntensity)/(1-minIntensity)*float64(len(flameRows)-1)))
}

// MaxParticles is how many exhaust dots fit below the flame; larger
// particle counts draw this many.
func MaxParticles() int {
	return particleRows * len(particleOffsets)
}

// BaseRow returns the row, counted from the top of a pane of the given
// height, on which the bottom of the rocket body sits for a vertical
// position percentage.
func BaseRow(position float64, height int) int {
	if height <= len(body) {
		return height - 1
	}
	p := math.Max(0, math.Min(100, position)) / 100
	fromBottom := int(math.Round(p * float64(height-1)))
	row := height - 1 - fromBottom
	if row < len(body)-1 {
		row = len(body) - 1
	}
	return row
}

// AltitudeRow returns the gauge marker row for a fuel level. Full tanks
// put the marker at the top.
func AltitudeRow(fuel float64, height int) int {
	if height <= 1 {
		return 0
	}
	alt := math.Max(0, math.Min(100, 100-fuel)) / 100
	return int(math.Round(alt * float64(height-1)))
}

// View renders the pane.
func (m Model) View(width, height int) string {
	if height < len(body) {
		height = len(body)
	}
	if width < gutterWidth+spriteWidth {
		width = gutterWidth + spriteWidth
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
		for j := range grid[i] {
			grid[i][j] = cell{r: ' '}
		}
	}
	put := func(row, col int, r rune, p paint) {
		if row < 0 || row >= height || col < gutterWidth || col >= width {
			return
		}
		grid[row][col] = cell{r: r, p: p}
	}

	// Altitude gauge.
	marker := AltitudeRow(m.Fuel, height)
	for row := 0; row < height; row++ {
		grid[row][1] = cell{r: '│', p: paintGauge}
	}
	grid[marker][0] = cell{r: '▶', p: paintMarker}

	field := width - gutterWidth
	left := gutterWidth + (field-spriteWidth)/2 + m.Shake
	center := left + spriteWidth/2
	base := BaseRow(m.Visual.VerticalPosition, height)
	top := base - (len(body) - 1)

	for i, line := range body {
		for j, r := range []rune(line) {
			if r == ' ' {
				continue
			}
			p := paintHull
			if r == '◉' {
				p = paintWindow
			}
			put(top+i, left+j, r, p)
		}
	}
	put(top, left+noseColumn(m.Visual.Rotation), []rune(NoseGlyph(m.Visual.Rotation))[0], paintHull)

	flames := FlameLength(m.Visual.FlameIntensity)
	for i := 0; i < flames; i++ {
		for j, r := range []rune(flameRows[i]) {
			if r != ' ' {
				put(base+1+i, left+j, r, paintFlame)
			}
		}
	}

	exhaust := base + 1 + flames
	for i := 0; i < min(m.Visual.ParticleCount, MaxParticles()); i++ {
		off := particleOffsets[(i+m.Frame)%len(particleOffsets)]
		put(exhaust+i%particleRows, center+off, '·', paintExhaust)
	}

	styles := map[paint]lipgloss.Style{
		paintHull:    lipgloss.NewStyle().Foreground(theme.ColorHull),
		paintWindow:  lipgloss.NewStyle().Foreground(theme.ColorWindow),
		paintFlame:   lipgloss.NewStyle().Foreground(theme.FlameColor(m.Visual.FlameIntensity)),
		paintExhaust: lipgloss.NewStyle().Foreground(theme.ColorExhaust),
		paintGauge:   lipgloss.NewStyle().Foreground(theme.ColorBorder),
		paintMarker:  lipgloss.NewStyle().Foreground(theme.ColorBlue),
	}
	if m.Visual.AlertActive {
		styles[paintHull] = lipgloss.NewStyle().Foreground(theme.ColorRed)
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = renderRow(row, styles)
	}
	return strings.Join(lines, "\n")
}

// renderRow styles runs of same-paint cells together.
func renderRow(row []cell, styles map[paint]lipgloss.Style) string {
	var b strings.Builder
	var run []rune
	cur := paintNone
	flush := func() {
		if len(run) == 0 {
			return
		}
		if st, ok := styles[cur]; ok {
			b.WriteString(st.Render(string(run)))
		} else {
			b.WriteString(string(run))
		}
		run = run[:0]
	}
	for _, c := range row {
		if c.p != cur {
			flush()
			cur = c.p
		}
		run = append(run, c.r)
	}
	flush()
	return b.String()
}
