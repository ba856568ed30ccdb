// Package app is the root Bubble Tea model of the mission console. It owns
// the snapshot cell, redraws on every frame and reconciles the display
// with the cell so a visible change is never more than a frame behind.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	keyhelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mission-control/telemetry/internal/client"
	"github.com/mission-control/telemetry/internal/poller"
	"github.com/mission-control/telemetry/internal/telemetry"
	"github.com/mission-control/telemetry/internal/theme"
	"github.com/mission-control/telemetry/internal/views/dashboard"
	"github.com/mission-control/telemetry/internal/views/debug"
	"github.com/mission-control/telemetry/internal/views/help"
	"github.com/mission-control/telemetry/internal/views/rocket"
	"github.com/mission-control/telemetry/internal/views/status"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDebug
	OverlayHelp
)

// frameMsg drives animation.
type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Options wires the model to its data sources. Poller may be nil when the
// feed is driven by hand.
type Options struct {
	Endpoint string
	Feed     *Feed
	Poller   *poller.Handle
	Logger   *slog.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	feed   *Feed
	poller *poller.Handle
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	keys    KeyMap
	footer  keyhelp.Model
	width   int
	height  int
	overlay Overlay

	// Display state.
	seen  uint64 // cell version last drawn
	frame int
	anim  *Animator

	// Sub-views.
	statusBar status.Model
	dashboard dashboard.Model
	debug     debug.Model
	helpView  *help.Model
}

// New creates the root model.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	feed := opts.Feed
	if feed == nil {
		feed = NewFeed(telemetry.NewCell(), logger)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		feed:      feed,
		poller:    opts.Poller,
		log:       logger,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		footer:    keyhelp.New(),
		anim:      NewAnimator(telemetry.Derive(feed.Cell().Load())),
		statusBar: status.New(opts.Endpoint),
		dashboard: dashboard.New(),
		debug:     debug.New(),
		helpView:  help.New(),
	}
}

// Init starts listening to the feed and the frame ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.feed.Next(m.ctx), frameTick())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.dashboard.Width = m.dashboardWidth()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		m.sync()
		return m, m.feed.Next(m.ctx)

	case PollErrorMsg:
		m.debug.AddAt(msg.At, debug.KindError, fmt.Sprintf("%s: %v", client.Classify(msg.Err), msg.Err))
		m.refreshHealth()
		return m, m.feed.Next(m.ctx)

	case StaleMsg:
		m.debug.Add(debug.KindStale, fmt.Sprintf("seq=%d dropped, newer snapshot already applied", msg.Result.Seq))
		m.refreshHealth()
		return m, m.feed.Next(m.ctx)

	case frameMsg:
		m.sync()
		m.anim.Step()
		m.frame++
		return m, frameTick()
	}

	return m, nil
}

// sync draws the cell's snapshot if it changed since the last frame.
func (m *Model) sync() {
	cell := m.feed.Cell()
	v := cell.Version()
	if v == m.seen {
		return
	}
	m.seen = v
	s := cell.Load()
	m.dashboard.SetSnapshot(s)
	m.statusBar.Status = s.Status
	m.statusBar.Updates = v
	m.anim.SetTarget(telemetry.Derive(s))
	m.debug.Add(debug.KindPoll, fmt.Sprintf("v%d fuel=%v press=%.2f traj=%v %s",
		v, s.FuelLevel, s.CabinPressure, s.Trajectory, s.Status))
	m.refreshHealth()
}

func (m *Model) refreshHealth() {
	if m.poller != nil {
		m.debug.Health = m.poller.Health()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.shutdown()
		return m, tea.Quit
	}

	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Close):
			m.overlay = OverlayNone
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Older):
			m.debug.ScrollUp(1)
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Newer):
			m.debug.ScrollDown(1)
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Errors):
			m.debug.ToggleErrorsOnly()
		case key.Matches(msg, m.keys.Debug):
			m.overlay = toggle(m.overlay, OverlayDebug)
		case key.Matches(msg, m.keys.Help):
			m.overlay = toggle(m.overlay, OverlayHelp)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Debug):
		m.refreshHealth()
		m.overlay = OverlayDebug
	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
	}
	return m, nil
}

func toggle(cur, want Overlay) Overlay {
	if cur == want {
		return OverlayNone
	}
	return want
}

// shutdown stops polling. Results still in flight are discarded.
func (m Model) shutdown() {
	if m.poller != nil {
		m.poller.Stop()
	}
	m.cancel()
	m.log.Info("console exiting", "applied", m.feed.Cell().Version(), "dropped_events", m.feed.Dropped())
}

func (m Model) rocketWidth() int {
	w := m.width / 3
	if w < 12 {
		w = 12
	}
	return w
}

func (m Model) dashboardWidth() int {
	w := m.width - m.rocketWidth()
	if w < 40 {
		w = 40
	}
	return w
}

func (m Model) bodyHeight() int {
	h := m.height - 5
	if h < 8 {
		h = 8
	}
	return h
}

// View renders the full console.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.overlay {
	case OverlayDebug:
		body = m.debug.View(m.width, m.bodyHeight())
	case OverlayHelp:
		body = m.helpView.View(m.width)
	default:
		body = m.renderMain()
	}

	sections := []string{
		m.statusBar.View(),
		body,
		theme.StyleDimmed.Render("  "+help.Legend+"   ") + m.footer.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderMain() string {
	pane := rocket.Model{
		Visual: m.anim.Current(),
		Fuel:   m.dashboard.Snapshot.FuelLevel,
		Shake:  m.anim.Shake(),
		Frame:  m.frame / 6,
	}
	left := pane.View(m.rocketWidth(), m.bodyHeight())
	right := lipgloss.NewStyle().
		Height(m.bodyHeight()).
		AlignVertical(lipgloss.Center).
		Render(m.dashboard.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
