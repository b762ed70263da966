package scroll

import (
	"errors"
	"image"

	"github.com/google/uuid"
)

// State enumerates the session lifecycle.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateFinished
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Direction is a vertical scroll direction hint. DirDown means new content
// entered at the bottom of the viewport.
type Direction int

const (
	DirNone Direction = 0
	DirDown Direction = 1
	DirUp   Direction = -1
)

var (
	ErrNoRegionSelected   = errors.New("no region selected")
	ErrNotCapturing       = errors.New("not in scroll capture mode")
	ErrNoPreviousFrame    = errors.New("no previous frame")
	ErrNoStitchedImage    = errors.New("no stitched image")
	ErrFrameWidthMismatch = errors.New("frame width mismatch")
	ErrCropExceedsBounds  = errors.New("crop exceeds image bounds")
)

// Progress reports the session state after a successful cycle or query.
// Preview is a downsampled raster bounded by the configured max height; it
// is for presentation only and never feeds the export path.
type Progress struct {
	SessionID   uuid.UUID
	FrameCount  int
	TotalHeight int
	Preview     image.Image
}

// CropSpec holds non-negative edge trim percentages (0-100) applied to the
// composed image at finish time.
type CropSpec struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

func (c *CropSpec) zero() bool {
	return c.Top <= 0 && c.Bottom <= 0 && c.Left <= 0 && c.Right <= 0
}

// Sink receives the final cropped image at finish time.
type Sink interface {
	Export(img image.Image) error
}

// Capturer is the capture-cycle contract consumed by the trigger.
type Capturer interface {
	Capture(hint Direction, maxMagnitude int) (Progress, bool, error)
}

// ProgressSource exposes the current composed state without capturing.
type ProgressSource interface {
	Snapshot() (Progress, error)
}
