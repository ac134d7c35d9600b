// internal/process/worker.go
package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goodads/thumbnailer/internal/ads"
	"github.com/goodads/thumbnailer/internal/blob"
	"github.com/goodads/thumbnailer/internal/img"
	"github.com/goodads/thumbnailer/pkg/schema"
)

// RecordAPI is the slice of the ads data API the worker needs.
type RecordAPI interface {
	GetAd(ctx context.Context, id int64) (*ads.Ad, error)
	UpdateAd(ctx context.Context, ad *ads.Ad) error
}

// Worker turns one queue message into a stored thumbnail and an updated ad
// record. Invocations are independent; the same Worker may process many
// messages concurrently.
type Worker struct {
	store   blob.Store
	api     RecordAPI
	target  int
	quality int
	logger  *slog.Logger
}

func NewWorker(store blob.Store, api RecordAPI, target, quality int, logger *slog.Logger) *Worker {
	if target <= 0 {
		target = img.DefaultTargetSize
	}
	if quality <= 0 {
		quality = img.DefaultJPEGQuality
	}
	return &Worker{store: store, api: api, target: target, quality: quality, logger: logger}
}

// Process runs the full pipeline for req: fetch source blob, resize, write
// the derived blob, update the ad record. Blob write and record update are
// overwrites, so redelivery of the same message converges to the same final
// state.
func (w *Worker) Process(ctx context.Context, req schema.ThumbnailRequest) Outcome {
	logger := w.logger.With("ad_id", req.AdID, "blob", req.BlobName())
	logger.Info("processing thumbnail request")

	source, err := w.store.Get(ctx, req.BlobName())
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return failure(req, fmt.Errorf("%w: %s", ErrSourceNotFound, req.BlobName()))
		}
		return failure(req, fmt.Errorf("fetch source blob: %w", err))
	}

	thumb, contentType, err := img.Thumbnail(source, w.target, w.quality)
	if err != nil {
		return failure(req, err)
	}

	thumbName := blob.ThumbnailName(req.BlobName())
	thumbURL, err := w.store.Put(ctx, thumbName, thumb, contentType)
	if err != nil {
		return failure(req, fmt.Errorf("write thumbnail blob: %w", err))
	}
	logger.Info("thumbnail written", "thumbnail", thumbName, "bytes", len(thumb))

	ad, err := w.api.GetAd(ctx, req.AdID)
	if err != nil {
		if errors.Is(err, ads.ErrNotFound) {
			// The blob work already completed; surface this loudly instead
			// of retrying a lookup that cannot succeed.
			logger.Error("ad vanished after thumbnail write", "thumbnail_url", thumbURL)
			return failure(req, fmt.Errorf("%w: id %d", ErrRecordNotFound, req.AdID))
		}
		return failure(req, fmt.Errorf("fetch ad %d: %w", req.AdID, err))
	}

	ad.ThumbnailURL = thumbURL
	if err := w.api.UpdateAd(ctx, ad); err != nil {
		return failure(req, fmt.Errorf("update ad %d: %w", req.AdID, err))
	}
	logger.Info("ad updated", "thumbnail_url", thumbURL)

	return Outcome{AdID: req.AdID, BlobURI: req.BlobURI, ThumbnailURL: thumbURL}
}
