package scroll

import "image"

// Luma is a single-channel luminance plane derived from an RGBA frame.
// The session computes it once per frame and reuses it as the next
// reference, so consecutive detector calls never reconvert the same frame.
type Luma struct {
	Pix  []float32
	W, H int
}

// NewLuma converts an RGBA frame using the BT.601 broadcast weighting.
func NewLuma(img *image.RGBA) *Luma {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	l := &Luma{Pix: make([]float32, w*h), W: w, H: h}
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := l.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			p := img.Pix[off+x*4 : off+x*4+3]
			row[x] = 0.299*float32(p[0]) + 0.587*float32(p[1]) + 0.114*float32(p[2])
		}
	}
	return l
}
