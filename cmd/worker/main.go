// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/goodads/thumbnailer/internal/ads"
	"github.com/goodads/thumbnailer/internal/blob"
	"github.com/goodads/thumbnailer/internal/bus"
	"github.com/goodads/thumbnailer/internal/process"
	"github.com/goodads/thumbnailer/internal/sweep"
	"github.com/goodads/thumbnailer/pkg/schema"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		fatal(logger, "load config", err)
	}
	logger.Info("worker starting",
		"nats_url", cfg.NATSURL,
		"queue", cfg.QueueName,
		"poison_queue", bus.PoisonQueue(cfg.QueueName),
		"result_subject", cfg.ResultSubject,
		"api_base_url", cfg.APIBaseURL,
		"thumb_size", cfg.ThumbSize,
		"max_delivery_attempts", cfg.MaxDeliveryAttempts,
		"sweep_interval", cfg.SweepInterval,
		"sweep_grace_period", cfg.SweepGracePeriod,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		fatal(logger, "build blob store", err)
	}

	api := ads.NewClient(cfg.APIBaseURL, cfg.APIToken, nil)

	nc, err := bus.Connect(cfg.NATSURL)
	if err != nil {
		fatal(logger, "connect to NATS", err, "nats_url", cfg.NATSURL)
	}
	defer nc.Close()
	logger.Info("connected to NATS", "nats_url", cfg.NATSURL)

	if err := nc.EnsureQueue(ctx, cfg.QueueName); err != nil {
		fatal(logger, "ensure queue", err, "queue", cfg.QueueName)
	}

	worker := process.NewWorker(store, api, cfg.ThumbSize, cfg.JPEGQuality, logger)

	workerCC, err := nc.ConsumeWorker(ctx, bus.QueueConfig{
		Name:                cfg.QueueName,
		MaxDeliveryAttempts: cfg.MaxDeliveryAttempts,
		AckWait:             cfg.AckWait,
	}, logger, func(msgCtx context.Context, data []byte) error {
		return handleMessage(msgCtx, data, worker, nc, cfg.ResultSubject, logger)
	})
	if err != nil {
		fatal(logger, "subscribe worker", err, "queue", cfg.QueueName)
	}
	defer workerCC.Stop()

	poison := process.NewPoisonHandler(logger)
	poisonCC, err := nc.ConsumePoison(ctx, cfg.QueueName, logger, poison.Handle)
	if err != nil {
		fatal(logger, "subscribe poison handler", err, "queue", bus.PoisonQueue(cfg.QueueName))
	}
	defer poisonCC.Stop()

	sweeper := sweep.New(api, nc, sweep.Config{
		Queue:       cfg.QueueName,
		Interval:    cfg.SweepInterval,
		GracePeriod: cfg.SweepGracePeriod,
		RunOnStart:  cfg.SweepOnStart,
	}, logger)
	go sweeper.Start(ctx)

	logger.Info("listening for thumbnail requests", "queue", cfg.QueueName)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down: draining in-flight work")
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		workerCC.Drain()
		poisonCC.Drain()
	}()
	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("shutdown timed out after 30s")
	}
}

func handleMessage(ctx context.Context, data []byte, worker *process.Worker, nc *bus.Client, resultSubject string, logger *slog.Logger) error {
	var req schema.ThumbnailRequest
	if err := json.Unmarshal(data, &req); err != nil {
		// Undecodable payloads can never succeed; let redelivery exhaust
		// into the poison queue where an operator will see them.
		logger.Error("unmarshal thumbnail request", "err", err)
		return err
	}

	outcome := worker.Process(ctx, req)
	publishDone(nc, resultSubject, outcome, logger)

	if outcome.Err == nil {
		return nil
	}
	if outcome.Failure == schema.FailureTypeCancelled {
		// Shutdown, not a processing failure: the message stays on the
		// queue for the next worker.
		return outcome.Err
	}
	logger.Error("thumbnail processing failed",
		"ad_id", req.AdID, "blob_uri", req.BlobURI, "failure", outcome.Failure, "err", outcome.Err)
	return outcome.Err
}

func publishDone(nc *bus.Client, subject string, outcome process.Outcome, logger *slog.Logger) {
	done := schema.ThumbnailDone{
		ID:           uuid.NewString(),
		AdID:         outcome.AdID,
		BlobURI:      outcome.BlobURI,
		ThumbnailURL: outcome.ThumbnailURL,
		FailureType:  outcome.Failure,
		HappenedAt:   time.Now().Unix(),
	}
	if outcome.Err != nil {
		done.Error = outcome.Err.Error()
	}
	if err := nc.PublishJSON(subject, done); err != nil {
		logger.Error("publish result failed", "subject", subject, "ad_id", outcome.AdID, "err", err)
	}
}

func buildStore(ctx context.Context, cfg config) (blob.Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		return blob.NewMemoryStore(""), nil
	default:
		return blob.NewS3Store(ctx, cfg.S3)
	}
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}
