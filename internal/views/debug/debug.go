// Package debug provides a scrollable event log overlay with the poller's
// link counters.
package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mission-control/telemetry/internal/poller"
	"github.com/mission-control/telemetry/internal/theme"
)

// Capacity is how many events the log retains.
const Capacity = 200

// Event kinds.
const (
	KindPoll  = "poll"
	KindError = "err"
	KindStale = "old"
)

// Entry is one logged event.
type Entry struct {
	Time    time.Time
	Kind    string
	Message string
}

// Model is the event log. The zero value is ready to use.
type Model struct {
	ring  [Capacity]Entry
	head  int // index of the oldest entry
	count int

	back       int // lines scrolled back from the newest
	errorsOnly bool

	Health poller.Health
}

// New returns an empty log.
func New() Model {
	return Model{}
}

// Add records an event stamped now.
func (m *Model) Add(kind, message string) {
	m.AddAt(time.Now(), kind, message)
}

// AddAt records an event stamped t, evicting the oldest once full. New
// events snap the view back to the newest line.
func (m *Model) AddAt(t time.Time, kind, message string) {
	e := Entry{Time: t, Kind: kind, Message: message}
	if m.count < Capacity {
		m.ring[(m.head+m.count)%Capacity] = e
		m.count++
	} else {
		m.ring[m.head] = e
		m.head = (m.head + 1) % Capacity
	}
	m.back = 0
}

// Len is the number of retained events.
func (m Model) Len() int { return m.count }

// Entries returns the retained events, oldest first.
func (m Model) Entries() []Entry {
	out := make([]Entry, m.count)
	for i := range out {
		out[i] = m.ring[(m.head+i)%Capacity]
	}
	return out
}

// Last returns the newest event.
func (m Model) Last() (Entry, bool) {
	if m.count == 0 {
		return Entry{}, false
	}
	return m.ring[(m.head+m.count-1)%Capacity], true
}

// visible is the event list after the errors-only filter.
func (m Model) visible() []Entry {
	all := m.Entries()
	if !m.errorsOnly {
		return all
	}
	out := all[:0]
	for _, e := range all {
		if e.Kind == KindError || e.Kind == KindStale {
			out = append(out, e)
		}
	}
	return out
}

// Back reports how many lines the view is scrolled back.
func (m Model) Back() int { return m.back }

// ScrollUp moves towards older events.
func (m *Model) ScrollUp(n int) {
	m.back = min(m.back+n, max(len(m.visible())-1, 0))
}

// ScrollDown moves towards the newest event.
func (m *Model) ScrollDown(n int) {
	m.back = max(m.back-n, 0)
}

// ToggleErrorsOnly switches between all events and failures only.
func (m *Model) ToggleErrorsOnly() {
	m.errorsOnly = !m.errorsOnly
	m.back = 0
}

// ErrorsOnly reports whether the failure filter is on.
func (m Model) ErrorsOnly() bool { return m.errorsOnly }

// View renders the log as an overlay panel of the given outer size.
func (m Model) View(width, height int) string {
	inner := max(width-4, 20)
	rows := max(height-8, 3)

	scope := "all"
	if m.errorsOnly {
		scope = "errors"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.StyleHeader.Render(" DEBUG LOG "),
		theme.StyleDimmed.Render(fmt.Sprintf("  [%s]", scope)),
	)
	footer := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  e:errors  esc:close  %d/%d", m.count, Capacity))

	events := m.visible()
	var body string
	if len(events) == 0 {
		body = theme.StyleDimmed.Render("  No events recorded yet.")
	} else {
		end := len(events) - m.back
		start := max(end-rows, 0)
		lines := make([]string, 0, end-start+1)
		for _, e := range events[start:end] {
			lines = append(lines, formatEntry(e, inner))
		}
		if m.back > 0 {
			lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d newer", m.back)))
		}
		body = strings.Join(lines, "\n")
	}

	return lipgloss.NewStyle().
		Width(inner).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, m.countersLine(), "", body, "", footer))
}

func formatEntry(e Entry, width int) string {
	stamp := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
	kind := lipgloss.NewStyle().
		Foreground(kindColor(e.Kind)).
		Width(5).
		Render(e.Kind)
	return stamp + " " + kind + clip(e.Message, width-22)
}

// clip shortens s to n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m Model) countersLine() string {
	h := m.Health
	last := "never"
	if !h.LastSuccess.IsZero() {
		last = h.LastSuccess.Format("15:04:05")
	}
	line := fmt.Sprintf("link:%s  ok:%d  failed:%d  stale:%d  last ok:%s",
		h.Status, h.Successes, h.Failures, h.Stale, last)
	return lipgloss.NewStyle().Foreground(linkColor(h.Status)).Render(line)
}

func linkColor(s poller.LinkStatus) lipgloss.Color {
	switch s {
	case poller.StatusHealthy:
		return theme.ColorHealthy
	case poller.StatusDegraded:
		return theme.ColorWarning
	case poller.StatusFailed:
		return theme.ColorDanger
	default:
		return theme.ColorDimmed
	}
}

func kindColor(kind string) lipgloss.Color {
	switch kind {
	case KindPoll:
		return theme.ColorBlue
	case KindError:
		return theme.ColorDanger
	case KindStale:
		return theme.ColorWarning
	default:
		return theme.ColorDimmed
	}
}
