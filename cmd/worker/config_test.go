package main

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://data-api")
	t.Setenv("API_TOKEN", "secret")
	t.Setenv("AWS_S3_BUCKET", "images")
	t.Setenv("THUMB_SIZE", "")
	t.Setenv("SWEEP_INTERVAL", "")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.NATSURL != "nats://127.0.0.1:4222" {
		t.Fatalf("unexpected NATS URL: %s", cfg.NATSURL)
	}
	if cfg.QueueName != "thumbnailrequest" {
		t.Fatalf("unexpected queue name: %s", cfg.QueueName)
	}
	if cfg.ResultSubject != "ads.thumbnail.done" {
		t.Fatalf("unexpected result subject: %s", cfg.ResultSubject)
	}
	if cfg.ThumbSize != 80 {
		t.Fatalf("unexpected thumb size: %d", cfg.ThumbSize)
	}
	if cfg.MaxDeliveryAttempts != 5 {
		t.Fatalf("unexpected max delivery attempts: %d", cfg.MaxDeliveryAttempts)
	}
	if cfg.SweepInterval != 5*time.Minute || cfg.SweepGracePeriod != 15*time.Minute {
		t.Fatalf("unexpected sweep settings: interval=%s grace=%s", cfg.SweepInterval, cfg.SweepGracePeriod)
	}
	if !cfg.SweepOnStart {
		t.Fatal("sweep on start should default to true")
	}
}

func TestLoadConfigMissingAPIBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("AWS_S3_BUCKET", "images")

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error when API_BASE_URL is missing")
	}
}

func TestLoadConfigMissingBucketForS3(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://data-api")
	t.Setenv("AWS_S3_BUCKET", "")
	t.Setenv("STORAGE_BACKEND", "s3")

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error when AWS_S3_BUCKET is missing")
	}
}

func TestLoadConfigMemoryBackendNeedsNoBucket(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://data-api")
	t.Setenv("AWS_S3_BUCKET", "")
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("unexpected storage backend: %s", cfg.StorageBackend)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://data-api")
	t.Setenv("AWS_S3_BUCKET", "images")

	t.Setenv("THUMB_SIZE", "not-a-number")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for invalid THUMB_SIZE")
	}
	t.Setenv("THUMB_SIZE", "")

	t.Setenv("SWEEP_GRACE_PERIOD", "yesterday")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for invalid SWEEP_GRACE_PERIOD")
	}
	t.Setenv("SWEEP_GRACE_PERIOD", "")

	t.Setenv("MAX_DELIVERY_ATTEMPTS", "0")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for non-positive MAX_DELIVERY_ATTEMPTS")
	}
}
