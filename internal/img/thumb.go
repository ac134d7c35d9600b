// internal/img/thumb.go
package img

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// ContentType is the MIME type of every thumbnail this package produces.
const ContentType = "image/jpeg"

// DefaultTargetSize is the long-edge size in pixels used when no explicit
// target is configured.
const DefaultTargetSize = 80

// DefaultJPEGQuality is the encoder quality used when no explicit value is
// configured.
const DefaultJPEGQuality = 85

// ErrDecode reports that the source bytes could not be decoded into a usable
// raster image. It is terminal: redelivering the same bytes will fail the
// same way.
var ErrDecode = errors.New("decode image")

// Dimensions computes thumbnail width and height for a source of srcW x srcH.
// The long edge becomes target and the short edge scales proportionally with
// integer truncation. The formula applies uniformly, including to sources
// already smaller than target.
func Dimensions(srcW, srcH, target int) (w, h int) {
	if srcW > srcH {
		return target, target * srcH / srcW
	}
	return target * srcW / srcH, target
}

// Thumbnail decodes src, scales it so the long edge equals target while
// preserving aspect ratio, and re-encodes the result as JPEG. It returns the
// encoded bytes together with their content type.
func Thumbnail(src []byte, target, quality int) ([]byte, string, error) {
	if target <= 0 {
		target = DefaultTargetSize
	}
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}

	srcImage, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := srcImage.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, "", fmt.Errorf("%w: zero-area source %dx%d", ErrDecode, srcW, srcH)
	}

	w, h := Dimensions(srcW, srcH, target)
	if w == 0 || h == 0 {
		return nil, "", fmt.Errorf("%w: source %dx%d collapses to %dx%d at target %d", ErrDecode, srcW, srcH, w, h, target)
	}

	thumb := imaging.Resize(srcImage, w, h, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), ContentType, nil
}
