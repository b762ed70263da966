package export

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"github.com/verist/scrollstitch/domain/scroll"
)

// FileSink saves the finished image to a path. The format is inferred from
// the file extension (png, jpg, gif, tif, bmp).
type FileSink struct {
	Path string
}

// Export writes img to the sink's path.
func (s FileSink) Export(img image.Image) error {
	if s.Path == "" {
		return errors.New("no output path")
	}
	return imaging.Save(img, s.Path)
}

var _ scroll.Sink = FileSink{}
