// Package wait provides the per-step wait strategies: fixed sleeps and
// change-detection polling.
package wait

import (
	"log/slog"
	"time"
)

// MinPollInterval is the floor for change-detection polling.
const MinPollInterval = 10 * time.Millisecond

// Detector probes the current content hash. ok=false means "no signal", which
// the poll loop treats as unchanged.
type Detector func() (hash string, ok bool)

// Waiter blocks the calling goroutine for fixed durations or until a content
// change is observed. Stateless apart from its wiring; safe to share.
type Waiter struct {
	detector Detector
	interval time.Duration

	// Injectable clock, defaulted in NewWaiter.
	sleep func(time.Duration)
	now   func() time.Time
}

// Option configures a Waiter.
type Option func(*Waiter)

// WithDetector wires the change detector probe.
func WithDetector(d Detector) Option {
	return func(w *Waiter) { w.detector = d }
}

// WithPollInterval sets the polling interval, floored at MinPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Waiter) { w.interval = d }
}

// WithClock substitutes sleep/now for deterministic tests.
func WithClock(sleep func(time.Duration), now func() time.Time) Option {
	return func(w *Waiter) {
		w.sleep = sleep
		w.now = now
	}
}

// NewWaiter creates a waiter. Without a detector, WaitForChange degrades to a
// fixed sleep.
func NewWaiter(opts ...Option) *Waiter {
	w := &Waiter{
		interval: 100 * time.Millisecond,
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.interval < MinPollInterval {
		w.interval = MinPollInterval
	}
	return w
}

// WaitFixed blocks for d. Non-positive durations are a no-op.
func (w *Waiter) WaitFixed(d time.Duration) {
	if d > 0 {
		w.sleep(d)
	}
}

// WaitForChange polls the detector until it reports a hash differing from
// previousHash (an empty previousHash matches any signal) or until timeout
// elapses. Returns false on timeout. With no detector configured it sleeps
// the full timeout and reports true.
func (w *Waiter) WaitForChange(previousHash string, timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	if w.detector == nil {
		w.sleep(timeout)
		return true
	}

	deadline := w.now().Add(timeout)
	for w.now().Before(deadline) {
		current, ok := w.detector()
		if !ok {
			w.sleep(w.interval)
			continue
		}
		if previousHash == "" || current != previousHash {
			slog.Debug("content change detected", "hash", current)
			return true
		}
		remaining := deadline.Sub(w.now())
		if remaining < 0 {
			remaining = 0
		}
		w.sleep(min(w.interval, remaining))
	}
	return false
}
