package scroll

import (
	"strings"
	"testing"
)

func TestPreview_DownscalesTallImages(t *testing.T) {
	img := fill(100, 1200, 80)
	out := Preview(img, 600)
	if out.Bounds().Dy() != 600 {
		t.Fatalf("expected height 600, got %d", out.Bounds().Dy())
	}
	if out.Bounds().Dx() != 50 {
		t.Fatalf("aspect ratio lost: width %d", out.Bounds().Dx())
	}
}

func TestPreview_FittingImageReturnedAsIs(t *testing.T) {
	img := fill(100, 400, 80)
	if out := Preview(img, 600); out != img {
		t.Fatalf("image under the cap must be returned unchanged")
	}
}

func TestPreviewDataURI_Format(t *testing.T) {
	uri := PreviewDataURI(fill(10, 10, 80), 90)
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}
	if len(uri) <= len("data:image/jpeg;base64,") {
		t.Fatalf("empty payload")
	}
	if PreviewDataURI(nil, 90) != "" {
		t.Fatalf("nil image must yield empty string")
	}
}
