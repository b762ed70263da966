package scroll

import (
	"sync"
	"testing"
	"time"

	"github.com/verist/scrollstitch/config"
)

// fakeCapturer records capture requests; an optional block channel holds a
// cycle in flight until the test releases it.
type fakeCapturer struct {
	block chan struct{}

	mu       sync.Mutex
	calls    int
	lastHint Direction
	lastMax  int
}

func (f *fakeCapturer) Capture(hint Direction, maxMagnitude int) (Progress, bool, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls++
	f.lastHint = hint
	f.lastMax = maxMagnitude
	f.mu.Unlock()
	return Progress{FrameCount: 2, TotalHeight: 920}, true, nil
}

func (f *fakeCapturer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func triggerConfig(threshold float64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.ScrollThreshold = threshold
	return cfg
}

func TestTrigger_BelowThresholdDoesNotFire(t *testing.T) {
	fake := &fakeCapturer{}
	tr := NewTrigger(fake, triggerConfig(5), discardLogger, nil)
	if tr.Scroll(DirDown, 1, time.Now()) {
		t.Fatalf("sub-threshold event must not fire")
	}
	if tr.Fired() != 0 || fake.Calls() != 0 {
		t.Fatalf("no cycle expected, fired=%d calls=%d", tr.Fired(), fake.Calls())
	}
}

func TestTrigger_AccumulatesAcrossEvents(t *testing.T) {
	fake := &fakeCapturer{}
	tr := NewTrigger(fake, triggerConfig(5), discardLogger, nil)
	now := time.Now()
	if tr.Scroll(DirDown, 2, now) {
		t.Fatalf("2 of 5 must not fire")
	}
	if tr.Scroll(DirDown, 2, now) {
		t.Fatalf("4 of 5 must not fire")
	}
	if !tr.Scroll(DirDown, 2, now) {
		t.Fatalf("accumulated 6 of 5 must fire")
	}
	waitFor(t, time.Second, func() bool { return fake.Calls() == 1 })
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.lastHint != DirDown {
		t.Fatalf("expected down hint, got %v", fake.lastHint)
	}
	if fake.lastMax != 120 {
		t.Fatalf("expected magnitude cap 6*20=120, got %d", fake.lastMax)
	}
}

func TestTrigger_DirectionFlipResetsAccumulator(t *testing.T) {
	fake := &fakeCapturer{}
	tr := NewTrigger(fake, triggerConfig(5), discardLogger, nil)
	now := time.Now()
	tr.Scroll(DirDown, 3, now)
	if tr.Scroll(DirUp, 3, now) {
		t.Fatalf("flip must reset: 3 of 5 must not fire")
	}
	if !tr.Scroll(DirUp, 3, now) {
		t.Fatalf("6 of 5 after flip must fire")
	}
	waitFor(t, time.Second, func() bool { return fake.Calls() == 1 })
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.lastHint != DirUp {
		t.Fatalf("expected up hint, got %v", fake.lastHint)
	}
}

func TestTrigger_DebounceSuppressesRapidRetrigger(t *testing.T) {
	fake := &fakeCapturer{}
	tr := NewTrigger(fake, triggerConfig(1), discardLogger, nil)
	t0 := time.Now()
	if !tr.Scroll(DirDown, 3, t0) {
		t.Fatalf("first event must fire")
	}
	waitFor(t, time.Second, func() bool { return fake.Calls() == 1 })
	if tr.Scroll(DirDown, 3, t0.Add(10*time.Millisecond)) {
		t.Fatalf("event inside the debounce window must not fire")
	}
	if !tr.Scroll(DirDown, 3, t0.Add(200*time.Millisecond)) {
		t.Fatalf("event past the debounce window must fire")
	}
	waitFor(t, time.Second, func() bool { return fake.Calls() == 2 })
}

func TestTrigger_InFlightEventsAreDropped(t *testing.T) {
	fake := &fakeCapturer{block: make(chan struct{})}
	progressed := make(chan Progress, 4)
	tr := NewTrigger(fake, triggerConfig(1), discardLogger, func(p Progress) { progressed <- p })
	t0 := time.Now()

	if !tr.Scroll(DirDown, 3, t0) {
		t.Fatalf("first event must fire")
	}
	// The cycle is held in flight; a later event past the debounce window
	// must be dropped, not queued.
	if tr.Scroll(DirDown, 3, t0.Add(200*time.Millisecond)) {
		t.Fatalf("mid-cycle event must be dropped")
	}
	if tr.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", tr.Dropped())
	}

	close(fake.block)
	waitFor(t, time.Second, func() bool { return fake.Calls() == 1 })

	if !tr.Scroll(DirDown, 3, t0.Add(400*time.Millisecond)) {
		t.Fatalf("post-cycle event must fire again")
	}
	waitFor(t, time.Second, func() bool { return fake.Calls() == 2 })
	waitFor(t, time.Second, func() bool { return len(progressed) == 2 })
	if tr.Fired() != 2 {
		t.Fatalf("expected 2 fired, got %d", tr.Fired())
	}
}

func TestMaxMagnitudeFor_Clamps(t *testing.T) {
	if got := maxMagnitudeFor(0.5); got != 24 {
		t.Fatalf("floor: expected 24, got %d", got)
	}
	if got := maxMagnitudeFor(5); got != 100 {
		t.Fatalf("linear: expected 100, got %d", got)
	}
	if got := maxMagnitudeFor(100); got != 400 {
		t.Fatalf("ceiling: expected 400, got %d", got)
	}
}
