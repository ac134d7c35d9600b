// internal/sweep/sweep.go
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goodads/thumbnailer/internal/ads"
	"github.com/goodads/thumbnailer/pkg/schema"
)

// DefaultInterval is the steady-state spacing between sweeps.
const DefaultInterval = 5 * time.Minute

// DefaultGracePeriod is how old a record must be before its missing
// thumbnail counts as lost work rather than an upload still in flight.
const DefaultGracePeriod = 15 * time.Minute

// RecordLister is the slice of the ads data API the sweep needs.
type RecordLister interface {
	ListAds(ctx context.Context) ([]ads.Ad, error)
}

// Enqueuer re-submits thumbnail requests onto the work queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, queue string, v any) error
}

// Config tunes one sweeper.
type Config struct {
	Queue       string
	Interval    time.Duration
	GracePeriod time.Duration
	// RunOnStart triggers an immediate sweep before the first interval
	// elapses.
	RunOnStart bool
}

// Sweeper periodically re-enqueues ads whose thumbnail generation was lost:
// image present, thumbnail absent, and old enough that the normal pipeline
// cannot still be working on it.
type Sweeper struct {
	api    RecordLister
	queue  Enqueuer
	cfg    Config
	logger *slog.Logger

	now func() time.Time
}

func New(api RecordLister, queue Enqueuer, cfg Config, logger *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	return &Sweeper{api: api, queue: queue, cfg: cfg, logger: logger, now: time.Now}
}

// Run performs one scan and returns how many requests it enqueued. A listing
// failure aborts the scan; a single record's enqueue failure is logged and
// skipped so one bad record never blocks the rest.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	records, err := s.api.ListAds(ctx)
	if err != nil {
		return 0, fmt.Errorf("list ads: %w", err)
	}

	cutoff := s.now().Add(-s.cfg.GracePeriod)
	enqueued := 0
	for _, ad := range records {
		if !s.needsThumbnail(ad, cutoff) {
			continue
		}

		req := schema.ThumbnailRequest{AdID: ad.ID, BlobURI: ad.ImageURL}
		if err := s.queue.Enqueue(ctx, s.cfg.Queue, req); err != nil {
			s.logger.Error("re-enqueue failed", "ad_id", ad.ID, "blob_uri", ad.ImageURL, "err", err)
			continue
		}
		s.logger.Info("re-enqueued lost thumbnail request", "ad_id", ad.ID, "blob_uri", ad.ImageURL)
		enqueued++
	}
	return enqueued, nil
}

func (s *Sweeper) needsThumbnail(ad ads.Ad, cutoff time.Time) bool {
	if ad.ThumbnailURL != "" || ad.ImageURL == "" {
		return false
	}
	// A record that never carried a modification time is treated as fresh,
	// matching the upstream API's default.
	if ad.LastModified.IsZero() {
		return false
	}
	return ad.LastModified.Before(cutoff)
}

// Start runs sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	if s.cfg.RunOnStart {
		s.sweep(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweep loop stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := s.now()
	n, err := s.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("sweep failed", "err", err)
		}
		return
	}
	s.logger.Info("sweep complete", "enqueued", n, "took", time.Since(start))
}
