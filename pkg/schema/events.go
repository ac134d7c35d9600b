// pkg/schema/events.go
package schema

import (
	"fmt"
	"path"
	"strings"
)

// ThumbnailRequest identifies one stored image that needs a thumbnail and the
// ad record it belongs to. It is the only payload that travels through the
// thumbnail queue; consumers re-derive blob names from the URI instead of
// trusting extra fields.
type ThumbnailRequest struct {
	AdID    int64  `json:"adId"`
	BlobURI string `json:"blobUri"`
}

// BlobName returns the last path segment of BlobURI.
func (r ThumbnailRequest) BlobName() string {
	uri := strings.TrimSuffix(r.BlobURI, "/")
	return path.Base(uri)
}

// BlobBase returns the blob name without its file extension.
func (r ThumbnailRequest) BlobBase() string {
	name := r.BlobName()
	return strings.TrimSuffix(name, path.Ext(name))
}

func (r ThumbnailRequest) String() string {
	return fmt.Sprintf("adId=%d, blob=%s", r.AdID, r.BlobName())
}

type FailureType string

const (
	FailureTypeRetryable FailureType = "retryable"
	FailureTypePermanent FailureType = "permanent"
	FailureTypeCancelled FailureType = "cancelled"
)

// ThumbnailDone is published to the result subject after every worker run,
// successful or not. Failed runs carry the error text and classification.
type ThumbnailDone struct {
	ID           string      `json:"id"`
	AdID         int64       `json:"adId"`
	BlobURI      string      `json:"blobUri"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty"`
	Error        string      `json:"error,omitempty"`
	FailureType  FailureType `json:"failureType,omitempty"`
	HappenedAt   int64       `json:"happenedAt"`
}
