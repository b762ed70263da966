package scroll

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/verist/scrollstitch/config"
)

// Trigger turns raw scroll events from an external listener into capture
// cycles. It accumulates magnitude across rapid sub-events, resets the
// accumulator on direction flips, debounces so a cycle is never requested
// faster than it can complete, and drops (never queues) events that arrive
// while a cycle is still in flight.
type Trigger struct {
	session    Capturer
	logger     *slog.Logger
	debounce   time.Duration
	threshold  float64
	onProgress func(Progress)

	mu    sync.Mutex
	accum float64
	dir   Direction
	last  time.Time

	inFlight atomic.Bool
	fired    atomic.Uint64
	dropped  atomic.Uint64
}

// NewTrigger wires a trigger to a session. onProgress (optional) receives a
// Progress after every accepted cycle.
func NewTrigger(session Capturer, cfg *config.Config, logger *slog.Logger, onProgress func(Progress)) *Trigger {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Trigger{
		session:    session,
		logger:     logger,
		debounce:   time.Duration(cfg.DebounceMillis) * time.Millisecond,
		threshold:  cfg.ScrollThreshold,
		onProgress: onProgress,
	}
}

// Scroll feeds one scroll event. It is safe to call from the listener's own
// thread. The return value reports whether a capture cycle was launched.
func (t *Trigger) Scroll(dir Direction, magnitude float64, now time.Time) bool {
	if dir == DirNone || magnitude <= 0 {
		return false
	}

	t.mu.Lock()
	if t.dir != DirNone && t.dir != dir {
		t.accum = 0
	}
	t.dir = dir
	t.accum += magnitude
	if t.accum < t.threshold {
		t.mu.Unlock()
		return false
	}
	accum := t.accum
	t.accum = 0
	if now.Sub(t.last) < t.debounce {
		t.mu.Unlock()
		return false
	}
	t.last = now
	t.mu.Unlock()

	// At most one cycle in flight; a trigger that lands mid-cycle is
	// dropped rather than queued so fast scrolling cannot build a backlog.
	if t.inFlight.Swap(true) {
		t.dropped.Add(1)
		return false
	}
	t.fired.Add(1)

	go func() {
		defer t.inFlight.Store(false)
		progress, updated, err := t.session.Capture(dir, maxMagnitudeFor(accum))
		if err != nil {
			if t.logger != nil {
				t.logger.Warn("triggered capture cycle failed", "error", err)
			}
			return
		}
		if updated && t.onProgress != nil {
			t.onProgress(progress)
		}
	}()
	return true
}

// Fired returns how many cycles this trigger launched.
func (t *Trigger) Fired() uint64 { return t.fired.Load() }

// Dropped returns how many events were dropped while a cycle was in flight.
func (t *Trigger) Dropped() uint64 { return t.dropped.Load() }

// maxMagnitudeFor scales an accumulated scroll magnitude into a search-range
// cap for the detector. The scroll hardware units are much smaller than the
// resulting pixel offsets, hence the multiplier.
func maxMagnitudeFor(accum float64) int {
	max := accum * 20
	if max < 24 {
		max = 24
	} else if max > 400 {
		max = 400
	}
	return int(max)
}
