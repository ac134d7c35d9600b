package img

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
)

func TestThumbnailLandscape(t *testing.T) {
	src := encodeTestImage(t, 400, 200)

	data, contentType, err := Thumbnail(src, 80, 0)
	if err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}
	if contentType != "image/jpeg" {
		t.Fatalf("unexpected content type: %s", contentType)
	}

	assertDimensions(t, data, 80, 40)
}

func TestThumbnailPortrait(t *testing.T) {
	src := encodeTestImage(t, 200, 400)

	data, _, err := Thumbnail(src, 80, 0)
	if err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}

	assertDimensions(t, data, 40, 80)
}

func TestThumbnailSquare(t *testing.T) {
	src := encodeTestImage(t, 300, 300)

	data, _, err := Thumbnail(src, 80, 0)
	if err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}

	assertDimensions(t, data, 80, 80)
}

// A source smaller than the target still follows the proportional formula,
// so the long edge grows to the target size.
func TestThumbnailSubTargetSource(t *testing.T) {
	src := encodeTestImage(t, 40, 20)

	data, _, err := Thumbnail(src, 80, 0)
	if err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}

	assertDimensions(t, data, 80, 40)
}

func TestThumbnailTruncatesShortEdge(t *testing.T) {
	// 80 * 200 / 300 = 53.33 truncates to 53.
	src := encodeTestImage(t, 300, 200)

	data, _, err := Thumbnail(src, 80, 0)
	if err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}

	assertDimensions(t, data, 80, 53)
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, _, err := Thumbnail([]byte("not an image"), 80, 0)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestThumbnailRejectsCollapsedShortEdge(t *testing.T) {
	// 80 * 2 / 1000 = 0: the short edge truncates away entirely.
	src := encodeTestImage(t, 1000, 2)

	_, _, err := Thumbnail(src, 80, 0)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for degenerate aspect, got %v", err)
	}
}

func TestDimensions(t *testing.T) {
	cases := []struct {
		srcW, srcH, target int
		wantW, wantH       int
	}{
		{400, 200, 80, 80, 40},
		{200, 400, 80, 40, 80},
		{300, 300, 80, 80, 80},
		{40, 20, 80, 80, 40},
		{300, 200, 80, 80, 53},
		{1000, 2, 80, 80, 0},
	}
	for _, c := range cases {
		w, h := Dimensions(c.srcW, c.srcH, c.target)
		if w != c.wantW || h != c.wantH {
			t.Errorf("Dimensions(%d, %d, %d) = %dx%d, want %dx%d",
				c.srcW, c.srcH, c.target, w, h, c.wantW, c.wantH)
		}
	}
}

func assertDimensions(t *testing.T, jpegData []byte, wantW, wantH int) {
	t.Helper()

	decoded, err := imaging.Decode(bytes.NewReader(jpegData))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != wantW || b.Dy() != wantH {
		t.Fatalf("unexpected thumbnail size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), wantW, wantH)
	}
}

func encodeTestImage(t *testing.T, w, h int) []byte {
	t.Helper()

	im := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			im.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, im); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
