// cmd/backfill runs a single reconciliation scan and exits. It is the
// manual counterpart of the worker's periodic sweep: list all ads,
// re-enqueue the ones whose thumbnail went missing, report the count.
//
// Usage:
//
//	./backfill                    # scan and enqueue
//	./backfill -dry-run           # scan and report, enqueue nothing
//	./backfill -grace 1h          # override the age cutoff
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/goodads/thumbnailer/internal/ads"
	"github.com/goodads/thumbnailer/internal/bus"
	"github.com/goodads/thumbnailer/internal/sweep"
)

func main() {
	_ = godotenv.Load()

	dryRun := flag.Bool("dry-run", false, "List candidates without enqueueing")
	grace := flag.Duration("grace", sweep.DefaultGracePeriod, "Minimum record age before a missing thumbnail counts as lost")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall scan timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	natsURL := getenv("NATS_URL", "nats://127.0.0.1:4222")
	queueName := getenv("QUEUE_NAME", "thumbnailrequest")
	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		fatal(logger, "load config", fmt.Errorf("API_BASE_URL is required"))
	}

	logger.Info("backfill starting",
		"api_base_url", apiBaseURL,
		"queue", queueName,
		"grace", *grace,
		"dry_run", *dryRun,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := ads.NewClient(apiBaseURL, os.Getenv("API_TOKEN"), nil)

	var queue sweep.Enqueuer
	if *dryRun {
		queue = dryRunQueue{logger: logger}
	} else {
		nc, err := bus.Connect(natsURL)
		if err != nil {
			fatal(logger, "connect to NATS", err, "nats_url", natsURL)
		}
		defer nc.Close()
		if err := nc.EnsureQueue(ctx, queueName); err != nil {
			fatal(logger, "ensure queue", err, "queue", queueName)
		}
		queue = nc
	}

	sweeper := sweep.New(api, queue, sweep.Config{
		Queue:       queueName,
		GracePeriod: *grace,
	}, logger)

	enqueued, err := sweeper.Run(ctx)
	if err != nil {
		fatal(logger, "scan", err)
	}

	if *dryRun {
		logger.Info("backfill complete (dry run)", "candidates", enqueued)
	} else {
		logger.Info("backfill complete", "enqueued", enqueued)
	}
}

// dryRunQueue satisfies sweep.Enqueuer while publishing nothing.
type dryRunQueue struct {
	logger *slog.Logger
}

func (q dryRunQueue) Enqueue(_ context.Context, queue string, v any) error {
	q.logger.Info("would enqueue", "queue", queue, "request", v)
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(logger *slog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{"err", err}, args...)...)
	os.Exit(1)
}
