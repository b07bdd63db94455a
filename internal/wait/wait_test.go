package wait

import (
	"testing"
	"time"
)

// fakeClock advances simulated time on every sleep.
type fakeClock struct {
	now    time.Time
	slept  time.Duration
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.slept += d
	c.sleeps = append(c.sleeps, d)
}

func (c *fakeClock) nowFn() time.Time { return c.now }

func TestWaitFixed(t *testing.T) {
	clock := newFakeClock()
	w := NewWaiter(WithClock(clock.sleep, clock.nowFn))

	w.WaitFixed(2 * time.Second)
	if clock.slept != 2*time.Second {
		t.Errorf("slept %v, want 2s", clock.slept)
	}
}

func TestWaitFixedNonPositive(t *testing.T) {
	clock := newFakeClock()
	w := NewWaiter(WithClock(clock.sleep, clock.nowFn))

	w.WaitFixed(0)
	w.WaitFixed(-time.Second)
	if clock.slept != 0 {
		t.Errorf("slept %v, want 0", clock.slept)
	}
}

func TestWaitForChangeZeroTimeout(t *testing.T) {
	clock := newFakeClock()
	w := NewWaiter(WithClock(clock.sleep, clock.nowFn))

	if !w.WaitForChange("abc", 0) {
		t.Error("zero timeout should return true immediately")
	}
	if clock.slept != 0 {
		t.Errorf("slept %v, want 0", clock.slept)
	}
}

func TestWaitForChangeNoDetectorSleepsFullTimeout(t *testing.T) {
	clock := newFakeClock()
	w := NewWaiter(WithClock(clock.sleep, clock.nowFn))

	if !w.WaitForChange("abc", 3*time.Second) {
		t.Error("detector-less wait should return true")
	}
	if clock.slept != 3*time.Second {
		t.Errorf("slept %v, want full 3s timeout", clock.slept)
	}
}

func TestWaitForChangeDetectsNewHash(t *testing.T) {
	clock := newFakeClock()
	hashes := []string{"old", "old", "new"}
	i := 0
	detector := func() (string, bool) {
		h := hashes[i]
		if i < len(hashes)-1 {
			i++
		}
		return h, true
	}
	w := NewWaiter(WithDetector(detector), WithPollInterval(100*time.Millisecond), WithClock(clock.sleep, clock.nowFn))

	if !w.WaitForChange("old", 5*time.Second) {
		t.Fatal("expected change to be detected")
	}
	// Two unchanged polls before the change: two interval sleeps.
	if clock.slept != 200*time.Millisecond {
		t.Errorf("slept %v, want 200ms", clock.slept)
	}
}

func TestWaitForChangeEmptyPreviousMatchesFirstSignal(t *testing.T) {
	clock := newFakeClock()
	w := NewWaiter(
		WithDetector(func() (string, bool) { return "anything", true }),
		WithClock(clock.sleep, clock.nowFn),
	)

	if !w.WaitForChange("", time.Second) {
		t.Error("absent previous hash should match the first available signal")
	}
	if clock.slept != 0 {
		t.Errorf("slept %v, want 0", clock.slept)
	}
}

func TestWaitForChangeTimesOutExactly(t *testing.T) {
	clock := newFakeClock()
	w := NewWaiter(
		WithDetector(func() (string, bool) { return "same", true }),
		WithPollInterval(300*time.Millisecond),
		WithClock(clock.sleep, clock.nowFn),
	)

	if w.WaitForChange("same", time.Second) {
		t.Fatal("unchanged hash should time out")
	}
	// Each poll sleeps min(interval, remaining), so total elapsed simulated
	// time equals the timeout.
	if clock.slept != time.Second {
		t.Errorf("slept %v, want exactly 1s", clock.slept)
	}
	last := clock.sleeps[len(clock.sleeps)-1]
	if last >= 300*time.Millisecond {
		t.Errorf("final sleep = %v, want the sub-interval remainder", last)
	}
}

func TestWaitForChangeNoSignalKeepsPolling(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	detector := func() (string, bool) {
		calls++
		return "", false
	}
	w := NewWaiter(
		WithDetector(detector),
		WithPollInterval(250*time.Millisecond),
		WithClock(clock.sleep, clock.nowFn),
	)

	if w.WaitForChange("prev", time.Second) {
		t.Fatal("no-signal detector should time out")
	}
	if calls != 4 {
		t.Errorf("detector polled %d times, want 4", calls)
	}
}

func TestPollIntervalFloor(t *testing.T) {
	w := NewWaiter(WithPollInterval(time.Millisecond))
	if w.interval != MinPollInterval {
		t.Errorf("interval = %v, want floored to %v", w.interval, MinPollInterval)
	}
}
