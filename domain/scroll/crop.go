package scroll

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ApplyCrop trims the image edges by the given percentages. A nil or
// all-zero crop returns the image unmodified without copying. A crop that
// would consume the whole image in either axis fails with
// ErrCropExceedsBounds and leaves the input untouched.
func ApplyCrop(img image.Image, crop *CropSpec) (image.Image, error) {
	if img == nil {
		return nil, ErrNoStitchedImage
	}
	if crop == nil || crop.zero() {
		return img, nil
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	topPx := cropPixels(crop.Top, h)
	bottomPx := cropPixels(crop.Bottom, h)
	leftPx := cropPixels(crop.Left, w)
	rightPx := cropPixels(crop.Right, w)

	if leftPx+rightPx >= w || topPx+bottomPx >= h {
		return nil, ErrCropExceedsBounds
	}

	rect := image.Rect(b.Min.X+leftPx, b.Min.Y+topPx, b.Max.X-rightPx, b.Max.Y-bottomPx)
	return imaging.Crop(img, rect), nil
}

// cropPixels converts an edge percentage to a rounded pixel count against
// the current dimension. Negative percentages count as zero.
func cropPixels(pct float64, dim int) int {
	if pct <= 0 {
		return 0
	}
	return int(math.Round(pct / 100.0 * float64(dim)))
}
