package scroll

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"

	"github.com/verist/scrollstitch/capture"
	"github.com/verist/scrollstitch/config"
)

// Session is the scroll-capture state machine. All five transitions and the
// query funnel through one mutex, so at most one capture cycle mutates the
// frame history at a time; raw field access is never exposed.
//
// Lifecycle: Idle -> Capturing -> {Capturing, Finished, Cancelled}. Stop
// leaves Capturing but keeps the composed image for a later Snapshot or
// Finish; Cancel and a successful Finish discard everything.
type Session struct {
	logger   *slog.Logger
	cfg      *config.Config
	source   capture.Source
	detector *Detector

	mu        sync.Mutex
	id        uuid.UUID
	state     State
	region    capture.Region
	regionSet bool
	frames    []*image.RGBA
	offsets   []int
	composed  *image.RGBA
	refLuma   *Luma
	lastHash  *goimagehash.ImageHash

	cycles      atomic.Uint64
	updates     atomic.Uint64
	noops       atomic.Uint64
	failures    atomic.Uint64
	detects     atomic.Uint64
	detectNanos atomic.Uint64
	lastCapture atomic.Int64 // unix nanos
}

// NewSession constructs a session around a frame source. A nil config uses
// defaults.
func NewSession(logger *slog.Logger, cfg *config.Config, source capture.Source) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Session{
		logger:   logger,
		cfg:      cfg,
		source:   source,
		detector: NewDetector(cfg, logger),
		state:    StateIdle,
	}
}

// SetRegion fixes the capture rectangle for subsequent sessions. It must be
// set before Start and is held constant for the session's lifetime.
func (s *Session) SetRegion(r capture.Region) {
	s.mu.Lock()
	s.region = r
	s.regionSet = !r.Empty()
	s.mu.Unlock()
}

// Region returns the current capture rectangle, if set.
func (s *Session) Region() (capture.Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region, s.regionSet
}

// ID returns the current session identifier.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether a capture cycle may run.
func (s *Session) Active() bool { return s.State() == StateCapturing }

// Start begins a capture run: clears any leftover state, captures the
// initial frame and seeds the history. It fails with ErrNoRegionSelected
// when no region is set and leaves the session idle on capture failure.
func (s *Session) Start() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.regionSet || s.region.Empty() {
		return Progress{}, ErrNoRegionSelected
	}
	s.resetLocked()
	s.state = StateIdle

	frame, err := s.source.Capture(s.region)
	if err != nil {
		return Progress{}, fmt.Errorf("capture failed: %w", err)
	}

	s.id = uuid.New()
	s.frames = []*image.RGBA{frame}
	s.offsets = []int{0}
	s.composed = capture.CloneFrame(frame)
	s.refLuma = NewLuma(frame)
	if s.cfg.HashGate {
		if h, herr := goimagehash.PerceptionHash(frame); herr == nil {
			s.lastHash = h
		}
	}
	s.state = StateCapturing
	s.lastCapture.Store(time.Now().UnixNano())

	if s.logger != nil {
		s.logger.Info("scroll session started",
			"session", s.id.String(),
			"width", frame.Bounds().Dx(),
			"height", frame.Bounds().Dy())
	}
	return s.progressLocked(), nil
}

// Capture runs one capture cycle: grab a frame, measure its offset against
// the last accepted frame, and stitch it in. The bool result distinguishes
// an accepted update from the frequent, expected "no scroll detected"
// outcome; both return a nil error.
//
// Capture failures are non-fatal (state unchanged, caller may retry). A
// width mismatch against the session's established width is fatal: it is
// surfaced and the caller must Cancel before retrying.
func (s *Session) Capture(hint Direction, maxMagnitude int) (Progress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCapturing {
		return Progress{}, false, ErrNotCapturing
	}
	if len(s.frames) == 0 || s.refLuma == nil {
		return Progress{}, false, ErrNoPreviousFrame
	}
	s.cycles.Add(1)

	frame, err := s.source.Capture(s.region)
	if err != nil {
		s.failures.Add(1)
		return Progress{}, false, fmt.Errorf("capture failed: %w", err)
	}
	if frame.Bounds().Dx() != s.composed.Bounds().Dx() {
		s.failures.Add(1)
		capture.RecycleFrame(frame)
		return Progress{}, false, ErrFrameWidthMismatch
	}

	// Cheap duplicate gate: identical perceptual hashes mean the surface
	// did not move, so skip the detector entirely.
	var frameHash *goimagehash.ImageHash
	if s.cfg.HashGate {
		if h, herr := goimagehash.PerceptionHash(frame); herr == nil {
			frameHash = h
			if s.lastHash != nil {
				if dist, derr := s.lastHash.Distance(h); derr == nil && dist == 0 {
					s.noops.Add(1)
					capture.RecycleFrame(frame)
					return Progress{}, false, nil
				}
			}
		}
	}

	cand := NewLuma(frame)
	start := time.Now()
	delta := s.detector.Detect(s.refLuma, cand, hint, maxMagnitude)
	s.detects.Add(1)
	s.detectNanos.Add(uint64(time.Since(start).Nanoseconds()))

	if delta == 0 || abs(delta) < s.cfg.MinDelta {
		s.noops.Add(1)
		capture.RecycleFrame(frame)
		return Progress{}, false, nil
	}

	stitched, err := Stitch(s.composed, frame, delta)
	if err != nil {
		s.failures.Add(1)
		capture.RecycleFrame(frame)
		return Progress{}, false, err
	}

	s.composed = stitched
	s.frames = append(s.frames, frame)
	s.offsets = append(s.offsets, s.offsets[len(s.offsets)-1]+delta)
	s.refLuma = cand
	s.lastHash = frameHash
	s.updates.Add(1)
	s.lastCapture.Store(time.Now().UnixNano())

	if s.logger != nil {
		s.logger.Debug("frame stitched",
			"session", s.id.String(),
			"delta", delta,
			"frames", len(s.frames),
			"height", s.composed.Bounds().Dy())
	}
	return s.progressLocked(), true, nil
}

// Snapshot returns the current progress without capturing. It works while
// capturing and after Stop, as long as a composed image exists.
func (s *Session) Snapshot() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.composed == nil {
		return Progress{}, ErrNoStitchedImage
	}
	return s.progressLocked(), nil
}

// PreviewURI renders the current composed image as a bounded-height JPEG
// data URI for presentation layers.
func (s *Session) PreviewURI() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.composed == nil {
		return "", ErrNoStitchedImage
	}
	return PreviewDataURI(Preview(s.composed, s.cfg.PreviewMaxHeight), s.cfg.PreviewQuality), nil
}

// Finish applies the crop, hands the result to the sink and clears the
// session. Crop validation failure and sink failure both leave the session
// untouched so the caller can retry.
func (s *Session) Finish(crop *CropSpec, sink Sink) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.composed == nil {
		return nil, ErrNoStitchedImage
	}
	final, err := ApplyCrop(s.composed, crop)
	if err != nil {
		return nil, err
	}
	if sink != nil {
		if err := sink.Export(final); err != nil {
			s.failures.Add(1)
			return nil, fmt.Errorf("export failed: %w", err)
		}
	}

	id := s.id
	s.resetLocked()
	s.state = StateFinished
	if s.logger != nil {
		s.logger.Info("scroll session finished",
			"session", id.String(),
			"height", final.Bounds().Dy())
	}
	return final, nil
}

// Stop leaves the capturing state but deliberately preserves the frames and
// composed image for a later Snapshot or Finish. Used when the triggering
// surface goes away without an explicit cancellation.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCapturing {
		return
	}
	s.state = StateIdle
	if s.logger != nil {
		s.logger.Info("scroll session stopped", "session", s.id.String(), "frames", len(s.frames))
	}
}

// Cancel discards all history and the composed image unconditionally.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id
	s.resetLocked()
	s.state = StateCancelled
	if s.logger != nil {
		s.logger.Info("scroll session cancelled", "session", id.String())
	}
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	detects := s.detects.Load()
	var avg time.Duration
	if detects > 0 {
		avg = time.Duration(s.detectNanos.Load() / detects)
	}
	var last time.Time
	if ns := s.lastCapture.Load(); ns > 0 {
		last = time.Unix(0, ns)
	}
	return Stats{
		Cycles:      s.cycles.Load(),
		Updates:     s.updates.Load(),
		NoOps:       s.noops.Load(),
		Failures:    s.failures.Load(),
		AvgDetect:   avg,
		LastCapture: last,
	}
}

// progressLocked builds a Progress snapshot. Caller holds s.mu.
func (s *Session) progressLocked() Progress {
	return Progress{
		SessionID:   s.id,
		FrameCount:  len(s.frames),
		TotalHeight: s.composed.Bounds().Dy(),
		Preview:     Preview(s.composed, s.cfg.PreviewMaxHeight),
	}
}

// resetLocked clears all session data and recycles retained frames. Caller
// holds s.mu. The composed image is never pooled: a previously returned
// Preview may still alias it when it fit under the preview height.
func (s *Session) resetLocked() {
	for _, f := range s.frames {
		capture.RecycleFrame(f)
	}
	s.frames = nil
	s.offsets = nil
	s.composed = nil
	s.refLuma = nil
	s.lastHash = nil
	s.id = uuid.UUID{}
}

var (
	_ Capturer       = (*Session)(nil)
	_ ProgressSource = (*Session)(nil)
)
