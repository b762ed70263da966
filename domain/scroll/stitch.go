package scroll

import (
	"image"
	"image/draw"
)

// Stitch appends the non-overlapping slice of frame onto base according to
// the detected offset: positive appends the bottom |offset| rows, negative
// prepends the top |offset| rows. When |offset| >= frame height there is no
// overlap and the frames are simply concatenated. The composed width never
// changes; the height grows by min(|offset|, frame height).
func Stitch(base, frame *image.RGBA, offset int) (*image.RGBA, error) {
	if base == nil || frame == nil {
		return nil, ErrNoStitchedImage
	}
	bw, bh := base.Bounds().Dx(), base.Bounds().Dy()
	fw, fh := frame.Bounds().Dx(), frame.Bounds().Dy()
	if bw != fw {
		return nil, ErrFrameWidthMismatch
	}
	if offset == 0 {
		return base, nil
	}

	add := abs(offset)
	if add > fh {
		add = fh
	}
	out := image.NewRGBA(image.Rect(0, 0, bw, bh+add))

	if offset > 0 {
		draw.Draw(out, image.Rect(0, 0, bw, bh), base, base.Bounds().Min, draw.Src)
		srcPt := image.Pt(frame.Bounds().Min.X, frame.Bounds().Min.Y+fh-add)
		draw.Draw(out, image.Rect(0, bh, bw, bh+add), frame, srcPt, draw.Src)
	} else {
		draw.Draw(out, image.Rect(0, 0, bw, add), frame, frame.Bounds().Min, draw.Src)
		draw.Draw(out, image.Rect(0, add, bw, add+bh), base, base.Bounds().Min, draw.Src)
	}
	return out, nil
}
