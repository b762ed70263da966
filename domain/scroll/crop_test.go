package scroll

import (
	"errors"
	"testing"
)

func TestApplyCrop_NilAndZeroAreIdentity(t *testing.T) {
	img := fill(400, 1000, 50)
	out, err := ApplyCrop(img, nil)
	if err != nil {
		t.Fatalf("nil crop: %v", err)
	}
	if out != img {
		t.Fatalf("nil crop must return the same image")
	}
	out, err = ApplyCrop(img, &CropSpec{})
	if err != nil {
		t.Fatalf("zero crop: %v", err)
	}
	if out != img {
		t.Fatalf("zero crop must return the same image")
	}
}

func TestApplyCrop_TrimsPercentages(t *testing.T) {
	img := fill(400, 1000, 50)
	out, err := ApplyCrop(img, &CropSpec{Top: 10, Bottom: 10})
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	if out.Bounds().Dx() != 400 || out.Bounds().Dy() != 800 {
		t.Fatalf("expected 400x800, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}

	out, err = ApplyCrop(img, &CropSpec{Left: 25, Right: 25})
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 1000 {
		t.Fatalf("expected 200x1000, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestApplyCrop_NegativePercentagesIgnored(t *testing.T) {
	img := fill(400, 1000, 50)
	out, err := ApplyCrop(img, &CropSpec{Top: -5, Bottom: 10})
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	if out.Bounds().Dy() != 900 {
		t.Fatalf("expected height 900, got %d", out.Bounds().Dy())
	}
}

func TestApplyCrop_ExcessiveCropFails(t *testing.T) {
	img := fill(400, 1000, 50)
	if _, err := ApplyCrop(img, &CropSpec{Top: 60, Bottom: 60}); !errors.Is(err, ErrCropExceedsBounds) {
		t.Fatalf("vertical overflow: expected ErrCropExceedsBounds, got %v", err)
	}
	if _, err := ApplyCrop(img, &CropSpec{Left: 50, Right: 50}); !errors.Is(err, ErrCropExceedsBounds) {
		t.Fatalf("horizontal overflow: expected ErrCropExceedsBounds, got %v", err)
	}
}
