package scroll

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// Preview downsamples img so its height fits maxHeight, preserving aspect
// ratio with a triangle (linear) filter. Images that already fit are
// returned as-is. The result is for UI responsiveness only and never feeds
// the export path.
func Preview(img image.Image, maxHeight int) image.Image {
	if img == nil {
		return nil
	}
	if maxHeight < 1 {
		maxHeight = 1
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if h <= maxHeight {
		return img
	}
	newW := int(float64(w)*float64(maxHeight)/float64(h) + 0.5)
	if newW < 1 {
		newW = 1
	}
	return imaging.Resize(img, newW, maxHeight, imaging.Linear)
}

// PreviewDataURI encodes img as a JPEG data URI for presentation layers.
// Errors are swallowed and yield an empty string.
func PreviewDataURI(img image.Image, quality int) string {
	if img == nil {
		return ""
	}
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
