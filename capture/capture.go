package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// ErrNoScreens indicates no capture surface is available.
var ErrNoScreens = errors.New("no screens found")

// Region is a capture rectangle in screen coordinates. It is supplied once
// at session start and held fixed for the session's lifetime.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Source produces an RGBA raster for a screen region. Implementations must
// be callable repeatedly and cheaply; session throughput depends on it.
type Source interface {
	Capture(r Region) (*image.RGBA, error)
}

// ScreenSource captures from the primary display.
type ScreenSource struct{}

// NewScreenSource returns a Source backed by the OS screen.
func NewScreenSource() *ScreenSource { return &ScreenSource{} }

// Bounds returns the full screen as a Region.
func (s *ScreenSource) Bounds() (Region, error) {
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return Region{}, fmt.Errorf("%w: %v", ErrNoScreens, err)
	}
	return Region{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}, nil
}

// Capture grabs the given region. The result is copied into a pooled frame
// so callers can retain it across cycles and recycle it when done.
func (s *ScreenSource) Capture(r Region) (*image.RGBA, error) {
	if r.Empty() {
		return nil, errors.New("empty capture region")
	}
	if _, err := screenshot.ScreenRect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoScreens, err)
	}
	img, err := screenshot.CaptureRect(r.Rect())
	if err != nil {
		return nil, err
	}
	return CloneFrame(img), nil
}

var _ Source = (*ScreenSource)(nil)
