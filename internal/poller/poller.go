// Package poller drives the periodic telemetry fetch. It owns the ticker,
// isolates every fetch failure from the caller, and decides which
// responses are allowed to replace the current snapshot.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mission-control/telemetry/internal/telemetry"
)

// DefaultInterval is the fixed polling cadence of the console.
const DefaultInterval = time.Second

// Fetcher retrieves one telemetry snapshot.
type Fetcher interface {
	FetchTelemetry(ctx context.Context) (telemetry.Snapshot, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (telemetry.Snapshot, error)

// FetchTelemetry calls f.
func (f FetcherFunc) FetchTelemetry(ctx context.Context) (telemetry.Snapshot, error) {
	return f(ctx)
}

// OrderPolicy decides what happens when responses arrive out of order.
type OrderPolicy int

const (
	// OrderLatestIssued drops a response whose request was issued before
	// the one that produced the currently applied snapshot.
	OrderLatestIssued OrderPolicy = iota
	// OrderArrival applies responses in arrival order; the last one to
	// arrive wins regardless of which tick issued it.
	OrderArrival
)

func (p OrderPolicy) String() string {
	switch p {
	case OrderLatestIssued:
		return "latest-issued"
	case OrderArrival:
		return "arrival"
	default:
		return fmt.Sprintf("OrderPolicy(%d)", int(p))
	}
}

// Config is the runtime configuration of a poller.
type Config struct {
	Interval time.Duration
	Order    OrderPolicy
	// FailureThreshold is the consecutive failure count at which Health
	// reports StatusFailed. Zero means defaultFailureThreshold.
	FailureThreshold int
	// OnStale, if set, receives responses dropped by OrderLatestIssued.
	OnStale func(Result)
	Logger  *slog.Logger
}

// Result is the outcome of one poll attempt: a snapshot or an error.
type Result struct {
	Seq      uint64
	Snapshot telemetry.Snapshot
	Err      error
	At       time.Time
}

// OK reports whether the poll succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// ErrPanic wraps a panic recovered from a Fetcher.
var ErrPanic = errors.New("fetcher panicked")

// Handle controls a running poller.
type Handle struct {
	cfg      Config
	fetcher  Fetcher
	onUpdate func(telemetry.Snapshot)
	onError  func(error)
	log      *slog.Logger

	fetchCtx   context.Context
	tickCancel context.CancelFunc
	stopOnce   sync.Once
	stopped    atomic.Bool
	loopDone   chan struct{}
	inflight   sync.WaitGroup

	issued    atomic.Uint64
	deliverMu sync.Mutex // serialises callbacks; guards applied
	applied   uint64

	health *health
}

// Start schedules a fetch every cfg.Interval until Stop is called or ctx
// is cancelled. Ticks are not gated on earlier fetches, so requests may
// overlap. onUpdate receives each accepted snapshot; onError receives
// every failure. Neither is called after Stop returns.
func Start(ctx context.Context, cfg Config, f Fetcher, onUpdate func(telemetry.Snapshot), onError func(error)) (*Handle, error) {
	if f == nil {
		return nil, errors.New("poller: fetcher required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if onUpdate == nil {
		onUpdate = func(telemetry.Snapshot) {}
	}
	if onError == nil {
		onError = func(error) {}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tickCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cfg:        cfg,
		fetcher:    f,
		onUpdate:   onUpdate,
		onError:    onError,
		log:        logger.With("component", "poller"),
		fetchCtx:   ctx,
		tickCancel: cancel,
		loopDone:   make(chan struct{}),
		health:     newHealth(),
	}

	go h.run(tickCtx)
	return h, nil
}

// Stop cancels future ticks. In-flight fetches are left to finish but
// their results are discarded. If a callback is running, Stop waits for it
// to return, so Stop must not be called from onUpdate, onError or OnStale.
// Calling Stop more than once is a no-op.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		h.deliverMu.Lock()
		h.stopped.Store(true)
		h.deliverMu.Unlock()
		h.tickCancel()
	})
}

// Wait blocks until the tick loop has exited and every in-flight fetch
// has returned. It does not stop the poller by itself.
func (h *Handle) Wait() {
	<-h.loopDone
	h.inflight.Wait()
}

// Stopped reports whether Stop has been called or the context ended.
func (h *Handle) Stopped() bool {
	return h.stopped.Load()
}

// Health returns the current link health.
func (h *Handle) Health() Health {
	return h.health.snapshot(h.cfg.FailureThreshold)
}

func (h *Handle) run(ctx context.Context) {
	defer close(h.loopDone)
	defer h.Stop()

	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	h.log.Debug("poller started", "interval", h.cfg.Interval, "order", h.cfg.Order.String())

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("poller stopped", "issued", h.issued.Load())
			return
		case <-ticker.C:
			h.tick()
		}
	}
}

func (h *Handle) tick() {
	seq := h.issued.Add(1)
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.deliver(h.fetch(seq))
	}()
}

func (h *Handle) fetch(seq uint64) (res Result) {
	res.Seq = seq
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("%w: %v", ErrPanic, r)
			res.Snapshot = telemetry.Snapshot{}
		}
		res.At = time.Now()
	}()
	res.Snapshot, res.Err = h.fetcher.FetchTelemetry(h.fetchCtx)
	return res
}

func (h *Handle) deliver(res Result) {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()

	if h.stopped.Load() {
		h.log.Debug("dropping result after stop", "seq", res.Seq)
		return
	}

	if res.Err != nil {
		h.health.recordFailure(res.Err, res.At)
		h.log.Debug("poll failed", "seq", res.Seq, "err", res.Err)
		h.onError(res.Err)
		return
	}

	if h.cfg.Order == OrderLatestIssued && res.Seq < h.applied {
		h.log.Debug("dropping stale response", "seq", res.Seq, "applied", h.applied)
		h.health.recordStale()
		if h.cfg.OnStale != nil {
			h.cfg.OnStale(res)
		}
		return
	}

	h.applied = res.Seq
	h.health.recordSuccess(res.At)
	h.onUpdate(res.Snapshot)
}

// ParseOrderPolicy maps a configured policy name to an OrderPolicy.
func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest-issued":
		return OrderLatestIssued, nil
	case "arrival":
		return OrderArrival, nil
	default:
		return OrderLatestIssued, fmt.Errorf("invalid order policy %q (allowed: latest-issued, arrival)", s)
	}
}
