package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mission-control/telemetry/internal/client"
	"github.com/mission-control/telemetry/internal/poller"
	"github.com/mission-control/telemetry/internal/telemetry"
)

const feedBuffer = 64

// SnapshotMsg signals that the cell holds a newer snapshot.
type SnapshotMsg struct {
	Version uint64
	At      time.Time
}

// PollErrorMsg reports a failed poll.
type PollErrorMsg struct {
	Err error
	At  time.Time
}

// StaleMsg reports a response dropped because a newer one was applied.
type StaleMsg struct {
	Result poller.Result
}

// Feed connects poller callbacks to the Bubble Tea loop. Accepted
// snapshots go straight into the cell; the loop is told through a
// buffered channel. When the channel is full the event is dropped and the
// frame tick picks the snapshot up from the cell instead.
type Feed struct {
	cell    *telemetry.Cell
	events  chan tea.Msg
	log     *slog.Logger
	dropped atomic.Uint64
}

// NewFeed creates a feed writing into cell.
func NewFeed(cell *telemetry.Cell, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Feed{
		cell:   cell,
		events: make(chan tea.Msg, feedBuffer),
		log:    logger,
	}
}

// Cell returns the snapshot cell the feed writes.
func (f *Feed) Cell() *telemetry.Cell {
	return f.cell
}

// Update is the poller's onUpdate callback.
func (f *Feed) Update(s telemetry.Snapshot) {
	v := f.cell.Store(s)
	f.log.Debug("telemetry applied", "version", v, "status", string(s.Status), "fuel", s.FuelLevel)
	f.send(SnapshotMsg{Version: v, At: time.Now()})
}

// Error is the poller's onError callback.
func (f *Feed) Error(err error) {
	f.log.Warn("poll failed", "kind", client.Classify(err), "err", err)
	f.send(PollErrorMsg{Err: err, At: time.Now()})
}

// Stale is the poller's OnStale hook.
func (f *Feed) Stale(r poller.Result) {
	f.log.Debug("stale response dropped", "seq", r.Seq)
	f.send(StaleMsg{Result: r})
}

// Dropped returns how many events were discarded on a full channel.
func (f *Feed) Dropped() uint64 {
	return f.dropped.Load()
}

func (f *Feed) send(msg tea.Msg) {
	select {
	case f.events <- msg:
	default:
		f.dropped.Add(1)
	}
}

// Next waits for the next event. It returns nil once ctx is done.
func (f *Feed) Next(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-f.events:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}
