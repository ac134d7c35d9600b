// internal/process/outcome.go
package process

import (
	"context"
	"errors"

	"github.com/goodads/thumbnailer/internal/img"
	"github.com/goodads/thumbnailer/pkg/schema"
)

var (
	// ErrSourceNotFound reports that the blob named by the queue message
	// does not exist. Terminal for this delivery; the queue's retry and
	// poison mechanism governs what happens next.
	ErrSourceNotFound = errors.New("source blob not found")

	// ErrRecordNotFound reports that the ad referenced by the queue message
	// does not exist. By the time this surfaces the thumbnail blob has
	// already been written, so it marks a partial-failure state.
	ErrRecordNotFound = errors.New("ad record not found")
)

// Outcome is the tagged result of one worker invocation. Exactly one of
// ThumbnailURL or Err is meaningful.
type Outcome struct {
	AdID         int64
	BlobURI      string
	ThumbnailURL string
	Err          error
	Failure      schema.FailureType
}

func (o Outcome) Succeeded() bool { return o.Err == nil }

// Retryable reports whether redelivering the message could change the result.
func (o Outcome) Retryable() bool {
	return o.Err != nil && o.Failure == schema.FailureTypeRetryable
}

// Classify maps an error to the redeliver/terminal decision the queue
// runtime acts on. Decode failures and missing entities are permanent:
// redelivery would hit the same wall. Cancellation is its own kind so
// shutdown is not logged as a processing failure. Everything else is assumed
// transient I/O and left to queue redelivery.
func Classify(err error) schema.FailureType {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return schema.FailureTypeCancelled
	case errors.Is(err, img.ErrDecode),
		errors.Is(err, ErrSourceNotFound),
		errors.Is(err, ErrRecordNotFound):
		return schema.FailureTypePermanent
	default:
		return schema.FailureTypeRetryable
	}
}

func failure(req schema.ThumbnailRequest, err error) Outcome {
	return Outcome{
		AdID:    req.AdID,
		BlobURI: req.BlobURI,
		Err:     err,
		Failure: Classify(err),
	}
}
