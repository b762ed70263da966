package scroll

import (
	"log/slog"
	"math"

	"github.com/verist/scrollstitch/config"
)

// Detector measures the vertical scroll offset between two consecutive
// frames using coarse-to-fine strip correlation on luminance planes.
//
// Sign convention: a positive result means the user scrolled down and new
// content entered at the bottom of the viewport; geometrically the reference
// strip at templateY matches the candidate at templateY-offset. The stitcher
// relies on this convention to append at the correct end.
type Detector struct {
	strip          int
	minDelta       int
	ceiling        int
	coarseStep     int
	refineRadius   int
	sampleStride   int
	minHeight      int
	nearIdentical  float64
	maxMatchDiff   float64
	verifyMaxDiff  float64
	minImprovement float64
	logger         *slog.Logger
}

// NewDetector builds a detector from config. A nil config uses defaults.
func NewDetector(cfg *config.Config, logger *slog.Logger) *Detector {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Detector{
		strip:          cfg.StripHeight,
		minDelta:       cfg.MinDelta,
		ceiling:        cfg.SearchCeiling,
		coarseStep:     cfg.CoarseStep,
		refineRadius:   cfg.RefineRadius,
		sampleStride:   cfg.SampleStride,
		minHeight:      cfg.MinFrameHeight,
		nearIdentical:  cfg.NearIdenticalDiff,
		maxMatchDiff:   cfg.MaxMatchDiff,
		verifyMaxDiff:  cfg.VerifyMaxDiff,
		minImprovement: cfg.MinImprovement,
		logger:         logger,
	}
}

// Detect returns the vertical scroll offset between ref and cand, or 0 when
// no trustworthy scroll is found. The hint narrows the search to one
// direction; when the hinted direction fails the quality gates the full
// two-direction search runs, so a wrong hint delays but never misleads.
// maxMagnitude (when > 0) caps the search range.
func (d *Detector) Detect(ref, cand *Luma, hint Direction, maxMagnitude int) int {
	if ref == nil || cand == nil {
		return 0
	}
	if ref.W != cand.W || ref.H != cand.H || ref.W == 0 {
		return 0
	}
	h := ref.H
	if h < d.minHeight {
		return 0
	}
	strip := d.strip
	if strip > h {
		strip = h
	}
	templateY := h/2 - strip/2

	searchRange := h / 2
	if searchRange > d.ceiling {
		searchRange = d.ceiling
	}
	if maxMagnitude > 0 && maxMagnitude < searchRange {
		searchRange = maxMagnitude
	}
	if searchRange < d.minDelta {
		return 0
	}

	// No-shift baseline: near-identical frames mean no scrolling occurred.
	pixels := float64(ref.W * strip)
	baseline := d.stripDiff(ref, cand, templateY, templateY, strip) / pixels
	if baseline < d.nearIdentical {
		return 0
	}

	if hint == DirDown || hint == DirUp {
		if off := d.search(ref, cand, templateY, strip, searchRange, baseline, hint == DirDown, hint == DirUp); off != 0 {
			return off
		}
	}
	return d.search(ref, cand, templateY, strip, searchRange, baseline, true, true)
}

// search runs the coarse pass, the refinement pass, the two quality gates
// and the second-strip verification over the allowed directions.
func (d *Detector) search(ref, cand *Luma, templateY, strip, searchRange int, baseline float64, down, up bool) int {
	h := ref.H
	pixels := float64(ref.W * strip)

	bestOffset := 0
	bestScore := math.Inf(1)

	// Coarse pass: every coarseStep-th offset in each allowed direction.
	for o := d.minDelta; o <= searchRange; o += d.coarseStep {
		if down && templateY-o >= 0 {
			if score := d.stripDiff(ref, cand, templateY, templateY-o, strip); score < bestScore {
				bestScore, bestOffset = score, o
			}
		}
		if up && templateY+o+strip <= h {
			if score := d.stripDiff(ref, cand, templateY, templateY+o, strip); score < bestScore {
				bestScore, bestOffset = score, -o
			}
		}
	}
	if bestOffset == 0 {
		return 0
	}

	// Refine exhaustively around the coarse winner, in its direction.
	dir := 1
	if bestOffset < 0 {
		dir = -1
	}
	lo := abs(bestOffset) - d.refineRadius
	if lo < d.minDelta {
		lo = d.minDelta
	}
	hi := abs(bestOffset) + d.refineRadius
	if hi > searchRange {
		hi = searchRange
	}
	for o := lo; o <= hi; o++ {
		candY := templateY - dir*o
		if candY < 0 || candY+strip > h {
			continue
		}
		if score := d.stripDiff(ref, cand, templateY, candY, strip); score < bestScore {
			bestScore, bestOffset = score, dir*o
		}
	}

	// Quality gates: the match must clearly beat the no-shift baseline and
	// be a good match in absolute terms. A false positive corrupts the
	// composed image; a false negative only delays capture.
	matchAvg := bestScore / pixels
	improvement := baseline / math.Max(matchAvg, 0.001)
	if improvement < d.minImprovement || matchAvg > d.maxMatchDiff {
		if d.logger != nil {
			d.logger.Debug("scroll match rejected",
				"offset", bestOffset, "avg", matchAvg, "improvement", improvement)
		}
		return 0
	}

	// Verify with a strip from a different vertical band at the same
	// offset. Repetitive content (rules, tiled backgrounds) can fool a
	// single band; a second band rarely lies too. The band is chosen so it
	// stays in frame at the proposed offset.
	verifyY := templateY + strip
	if v := h * 3 / 4; v > verifyY {
		verifyY = v
	}
	if bestOffset < 0 {
		verifyY = templateY - strip
		if v := h / 4; v < verifyY {
			verifyY = v
		}
	}
	verifyY = clamp(verifyY, 0, h-strip)
	verifySearchY := clamp(verifyY-bestOffset, 0, h-strip)
	verifyAvg := d.stripDiff(ref, cand, verifyY, verifySearchY, strip) / pixels
	if verifyAvg > d.verifyMaxDiff {
		if d.logger != nil {
			d.logger.Debug("scroll match failed verification",
				"offset", bestOffset, "verify_avg", verifyAvg)
		}
		return 0
	}

	return bestOffset
}

// stripDiff sums absolute luminance differences between the reference strip
// at refY and the candidate strip at candY, sampling every sampleStride-th
// column. Callers divide by the full strip pixel count; the thresholds are
// tuned against that convention.
func (d *Detector) stripDiff(ref, cand *Luma, refY, candY, strip int) float64 {
	w := ref.W
	var diff float64
	for dy := 0; dy < strip; dy++ {
		refRow := ref.Pix[(refY+dy)*w : (refY+dy+1)*w]
		candRow := cand.Pix[(candY+dy)*w : (candY+dy+1)*w]
		for x := 0; x < w; x += d.sampleStride {
			diff += math.Abs(float64(refRow[x] - candRow[x]))
		}
	}
	return diff
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
