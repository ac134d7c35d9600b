// internal/blob/store.go
package blob

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound reports that no blob exists under the requested name.
var ErrNotFound = errors.New("blob not found")

// ThumbnailSuffix is appended (before the extension) to a source blob's base
// name to form the derived thumbnail name.
const ThumbnailSuffix = "_thumbnail.jpg"

// Store is the narrow contract the pipeline needs from blob storage. Put
// fully replaces any prior content under the same name, so retried work
// converges instead of erroring.
type Store interface {
	// Put writes data under name with the given content type and returns
	// the blob's URI.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)

	// Get returns the blob's content, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the blob, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	// URL returns the URI a blob would have under name, without touching
	// storage.
	URL(name string) string
}

// ThumbnailName derives the thumbnail blob name from a source blob name:
// the source base name (extension stripped) plus the fixed suffix.
func ThumbnailName(sourceName string) string {
	base := strings.TrimSuffix(sourceName, path.Ext(sourceName))
	return base + ThumbnailSuffix
}
