package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mission-control/telemetry/internal/client"
	"github.com/mission-control/telemetry/internal/poller"
	"github.com/mission-control/telemetry/internal/telemetry"
	"github.com/mission-control/telemetry/internal/views/dashboard"
	"github.com/mission-control/telemetry/internal/views/debug"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, opts Options) Model {
	t.Helper()
	m := New(opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// drain feeds every queued event into the model.
func drain(t *testing.T, m Model) Model {
	t.Helper()
	for {
		select {
		case msg := <-m.feed.events:
			next, _ := m.Update(msg)
			m = next.(Model)
		default:
			return m
		}
	}
}

func TestViewBeforeSize(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestInitialViewShowsDefaults(t *testing.T) {
	m := sized(t, Options{Endpoint: "http://127.0.0.1:8080/api/telemetry"})
	v := m.View()
	for _, want := range []string{"FUEL CELLS", "CABIN PRESS", "TRAJECTORY", "Unknown", "[INIT]", "Rocket altitude = Fuel Level"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() should contain %q", want)
		}
	}
}

func TestSnapshotReplacesDisplay(t *testing.T) {
	feed := NewFeed(telemetry.NewCell(), nil)
	m := sized(t, Options{Feed: feed})

	snap := telemetry.Snapshot{
		FuelLevel:     75,
		CabinPressure: 14.2,
		Trajectory:    200,
		Status:        telemetry.StatusWarning,
		NodeName:      "pad-39a",
		Version:       "v2.0.0",
	}
	feed.Update(snap)
	m = drain(t, m)

	if m.dashboard.Snapshot != snap {
		t.Errorf("dashboard snapshot = %+v, want %+v", m.dashboard.Snapshot, snap)
	}
	if got := m.anim.Target(); got != telemetry.Derive(snap) {
		t.Errorf("animation target = %+v, want %+v", got, telemetry.Derive(snap))
	}
	v := m.View()
	for _, want := range []string{"14.20 PSI", "200°", "pad-39a", dashboard.Banner, "[WARNING]"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() should contain %q", want)
		}
	}
}

func TestFrameTickPicksUpMissedSnapshot(t *testing.T) {
	cell := telemetry.NewCell()
	feed := NewFeed(cell, nil)
	m := sized(t, Options{Feed: feed})

	// Written without a notification, as when the event channel is full.
	cell.Store(telemetry.Snapshot{FuelLevel: 40, Status: telemetry.StatusNominal})

	next, cmd := m.Update(frameMsg(time.Now()))
	m = next.(Model)
	if cmd == nil {
		t.Error("frame should schedule the next frame")
	}
	if m.dashboard.Snapshot.FuelLevel != 40 {
		t.Errorf("FuelLevel = %v, want 40 after frame", m.dashboard.Snapshot.FuelLevel)
	}
	if m.statusBar.Updates != 1 {
		t.Errorf("status bar updates = %d, want 1", m.statusBar.Updates)
	}
}

func TestPollErrorKeepsSnapshot(t *testing.T) {
	feed := NewFeed(telemetry.NewCell(), nil)
	m := sized(t, Options{Feed: feed})

	good := telemetry.Snapshot{FuelLevel: 60, Status: telemetry.StatusNominal, NodeName: "pad", Version: "v1"}
	feed.Update(good)
	feed.Error(fmt.Errorf("%w: connection refused", client.ErrTransport))
	m = drain(t, m)

	if m.dashboard.Snapshot != good {
		t.Errorf("snapshot after error = %+v, want %+v", m.dashboard.Snapshot, good)
	}
	last, ok := m.debug.Last()
	if !ok || last.Kind != debug.KindError || !strings.Contains(last.Message, "transport") {
		t.Errorf("last debug entry = %+v, want transport error", last)
	}
}

func TestStaleEventLogged(t *testing.T) {
	feed := NewFeed(telemetry.NewCell(), nil)
	m := sized(t, Options{Feed: feed})

	feed.Stale(poller.Result{Seq: 3})
	m = drain(t, m)

	entries := m.debug.Entries()
	if len(entries) != 1 || entries[0].Kind != debug.KindStale {
		t.Fatalf("debug entries = %+v, want one stale entry", entries)
	}
	if m.dashboard.Snapshot != telemetry.DefaultSnapshot() {
		t.Error("stale event should not change the snapshot")
	}
}

func TestOverlayKeys(t *testing.T) {
	m := sized(t, Options{})

	next, _ := m.Update(keyMsg("d"))
	m = next.(Model)
	if m.overlay != OverlayDebug {
		t.Fatalf("overlay = %d, want debug", m.overlay)
	}
	if !strings.Contains(m.View(), "DEBUG LOG") {
		t.Error("debug overlay not rendered")
	}

	next, _ = m.Update(keyMsg("?"))
	m = next.(Model)
	if m.overlay != OverlayHelp {
		t.Fatalf("overlay = %d, want help", m.overlay)
	}

	next, _ = m.Update(keyMsg("?"))
	m = next.(Model)
	if m.overlay != OverlayNone {
		t.Fatalf("second ? should close help, overlay = %d", m.overlay)
	}

	next, _ = m.Update(keyMsg("d"))
	m = next.(Model)
	next, _ = m.Update(keyMsg("esc"))
	m = next.(Model)
	if m.overlay != OverlayNone {
		t.Errorf("esc should close the overlay, got %d", m.overlay)
	}
}

func TestErrorsFilterKeyOnlyInDebug(t *testing.T) {
	m := sized(t, Options{})

	next, _ := m.Update(keyMsg("e"))
	m = next.(Model)
	if m.debug.ErrorsOnly() {
		t.Fatal("e outside the debug overlay should do nothing")
	}

	for _, k := range []string{"d", "e"} {
		next, _ = m.Update(keyMsg(k))
		m = next.(Model)
	}
	if !m.debug.ErrorsOnly() {
		t.Error("e in the debug overlay should filter to errors")
	}
	if !strings.Contains(m.View(), "[errors]") {
		t.Error("debug overlay should show the errors scope")
	}
}

func TestQuitStopsPoller(t *testing.T) {
	feed := NewFeed(telemetry.NewCell(), nil)
	h, err := poller.Start(context.Background(), poller.Config{Interval: time.Hour},
		poller.FetcherFunc(func(context.Context) (telemetry.Snapshot, error) {
			return telemetry.Snapshot{}, errors.New("unused")
		}), feed.Update, feed.Error)
	if err != nil {
		t.Fatalf("poller.Start() error: %v", err)
	}

	m := sized(t, Options{Feed: feed, Poller: h})
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if !h.Stopped() {
		t.Error("quit should stop the poller")
	}
	h.Wait()
}

func TestFeedNextEndsWithContext(t *testing.T) {
	feed := NewFeed(telemetry.NewCell(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if msg := feed.Next(ctx)(); msg != nil {
		t.Errorf("Next() after cancel = %v, want nil", msg)
	}
}

func TestFeedDropsWhenFull(t *testing.T) {
	feed := NewFeed(telemetry.NewCell(), nil)
	for i := 0; i < feedBuffer+5; i++ {
		feed.Error(errors.New("offline"))
	}
	if got := feed.Dropped(); got != 5 {
		t.Errorf("Dropped() = %d, want 5", got)
	}
}

func TestAnimatorSettlesOnTarget(t *testing.T) {
	a := NewAnimator(telemetry.Derive(telemetry.DefaultSnapshot()))
	target := telemetry.Derive(telemetry.Snapshot{FuelLevel: 75, CabinPressure: 14.7, Trajectory: 200})
	a.SetTarget(target)
	if a.Settled() {
		t.Fatal("animator should not be settled right after retargeting")
	}

	cur := a.Current()
	if cur.ParticleCount != target.ParticleCount {
		t.Errorf("particle count should switch immediately: %d, want %d", cur.ParticleCount, target.ParticleCount)
	}
	if cur.VerticalPosition != 10 {
		t.Errorf("position should start at the old value, got %v", cur.VerticalPosition)
	}

	// Past the 0.8s transition the springs are at rest.
	for i := 0; i < 3*fps; i++ {
		a.Step()
	}
	cur = a.Current()
	if math.Abs(cur.VerticalPosition-target.VerticalPosition) > 0.1 {
		t.Errorf("VerticalPosition = %v, want ~%v", cur.VerticalPosition, target.VerticalPosition)
	}
	if math.Abs(cur.Rotation-target.Rotation) > 0.1 {
		t.Errorf("Rotation = %v, want ~%v", cur.Rotation, target.Rotation)
	}
	if math.Abs(cur.FlameIntensity-target.FlameIntensity) > 0.01 {
		t.Errorf("FlameIntensity = %v, want ~%v", cur.FlameIntensity, target.FlameIntensity)
	}
	if !a.Settled() {
		t.Error("animator should report settled")
	}
}

func TestAnimatorMovesMonotonically(t *testing.T) {
	a := NewAnimator(telemetry.Derive(telemetry.DefaultSnapshot()))
	a.SetTarget(telemetry.Derive(telemetry.Snapshot{FuelLevel: 100}))

	prev := a.Current().VerticalPosition
	for i := 0; i < fps; i++ {
		a.Step()
		cur := a.Current().VerticalPosition
		if cur < prev-1e-9 {
			t.Fatalf("frame %d: position went back from %v to %v", i, prev, cur)
		}
		if cur > 90+1e-6 {
			t.Fatalf("frame %d: position overshot to %v", i, cur)
		}
		prev = cur
	}
}

func TestAnimatorShake(t *testing.T) {
	a := NewAnimator(telemetry.Derive(telemetry.DefaultSnapshot()))
	if a.Shake() != 0 {
		t.Fatal("no shake before an alert")
	}

	a.SetTarget(telemetry.Derive(telemetry.Snapshot{Status: telemetry.StatusWarning}))
	var seen []int
	for i := 0; i < len(shakeOffsets)*framesPerShake; i++ {
		if i%framesPerShake == 0 {
			seen = append(seen, a.Shake())
		}
		a.Step()
	}
	for i, want := range shakeOffsets {
		if seen[i] != want {
			t.Errorf("shake keyframe %d = %d, want %d", i, seen[i], want)
		}
	}
	if a.Shake() != 0 {
		t.Error("shake should end at rest")
	}

	a.SetTarget(telemetry.Derive(telemetry.Snapshot{Status: telemetry.StatusNominal}))
	if a.Shake() != 0 {
		t.Error("nominal target should not shake")
	}
}
