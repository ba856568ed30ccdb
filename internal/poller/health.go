package poller

import (
	"sync"
	"time"
)

const defaultFailureThreshold = 3

// LinkStatus summarises recent poll outcomes.
type LinkStatus string

const (
	StatusWaiting  LinkStatus = "waiting"
	StatusHealthy  LinkStatus = "healthy"
	StatusDegraded LinkStatus = "degraded"
	StatusFailed   LinkStatus = "failed"
)

// Health is a point-in-time copy of the poller's counters.
type Health struct {
	Status              LinkStatus
	Successes           int
	Failures            int
	Stale               int
	ConsecutiveFailures int
	LastError           string
	LastSuccess         time.Time
	LastFailure         time.Time
}

// health tracks poll outcomes. Fields are protected by mu because
// deliver() writes them from fetch goroutines while Health() reads them
// from the render loop.
type health struct {
	mu                  sync.Mutex
	successes           int
	failures            int
	stale               int
	consecutiveFailures int
	lastErr             string
	lastSuccess         time.Time
	lastFailure         time.Time
}

func newHealth() *health {
	return &health{}
}

func (h *health) recordSuccess(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.successes++
	h.consecutiveFailures = 0
	h.lastSuccess = at
}

func (h *health) recordFailure(err error, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures++
	h.consecutiveFailures++
	h.lastErr = err.Error()
	h.lastFailure = at
}

func (h *health) recordStale() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stale++
}

// snapshot returns a consistent copy of all counters under the lock.
func (h *health) snapshot(threshold int) Health {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Health{
		Status:              h.statusLocked(threshold),
		Successes:           h.successes,
		Failures:            h.failures,
		Stale:               h.stale,
		ConsecutiveFailures: h.consecutiveFailures,
		LastError:           h.lastErr,
		LastSuccess:         h.lastSuccess,
		LastFailure:         h.lastFailure,
	}
}

// statusLocked computes the link status. Caller must hold h.mu.
func (h *health) statusLocked(threshold int) LinkStatus {
	switch {
	case h.consecutiveFailures >= threshold:
		return StatusFailed
	case h.consecutiveFailures > 0:
		return StatusDegraded
	case h.successes > 0:
		return StatusHealthy
	default:
		return StatusWaiting
	}
}
