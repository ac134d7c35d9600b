// cmd/worker/config.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goodads/thumbnailer/internal/blob"
	"github.com/goodads/thumbnailer/internal/bus"
	"github.com/goodads/thumbnailer/internal/img"
	"github.com/goodads/thumbnailer/internal/sweep"
)

type config struct {
	NATSURL       string
	QueueName     string
	ResultSubject string

	APIBaseURL string
	APIToken   string

	ThumbSize   int
	JPEGQuality int

	MaxDeliveryAttempts int
	AckWait             time.Duration

	SweepInterval    time.Duration
	SweepGracePeriod time.Duration
	SweepOnStart     bool

	StorageBackend string
	S3             blob.S3Config
}

func loadConfig() (config, error) {
	cfg := config{
		NATSURL:        getenv("NATS_URL", "nats://127.0.0.1:4222"),
		QueueName:      getenv("QUEUE_NAME", "thumbnailrequest"),
		ResultSubject:  getenv("RESULT_SUBJECT", "ads.thumbnail.done"),
		APIBaseURL:     getenv("API_BASE_URL", ""),
		APIToken:       getenv("API_TOKEN", ""),
		SweepOnStart:   getenvBool("SWEEP_ON_START", true),
		StorageBackend: getenv("STORAGE_BACKEND", "s3"),
		S3: blob.S3Config{
			Bucket:          getenv("AWS_S3_BUCKET", ""),
			Region:          getenv("AWS_S3_REGION", "us-east-1"),
			Endpoint:        getenv("AWS_S3_ENDPOINT", ""),
			AccessKeyID:     getenv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getenv("AWS_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getenvBool("AWS_S3_USE_PATH_STYLE", true),
			PublicURL:       getenv("AWS_S3_PUBLIC_URL", ""),
		},
	}

	if cfg.APIBaseURL == "" {
		return config{}, fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.StorageBackend == "s3" && cfg.S3.Bucket == "" {
		return config{}, fmt.Errorf("AWS_S3_BUCKET is required for the s3 storage backend")
	}

	size, err := parsePositiveInt(getenv("THUMB_SIZE", strconv.Itoa(img.DefaultTargetSize)), "THUMB_SIZE")
	if err != nil {
		return config{}, err
	}
	cfg.ThumbSize = size

	quality, err := parsePositiveInt(getenv("JPEG_QUALITY", strconv.Itoa(img.DefaultJPEGQuality)), "JPEG_QUALITY")
	if err != nil {
		return config{}, err
	}
	cfg.JPEGQuality = quality

	attempts, err := parsePositiveInt(getenv("MAX_DELIVERY_ATTEMPTS", strconv.Itoa(bus.DefaultMaxDeliveryAttempts)), "MAX_DELIVERY_ATTEMPTS")
	if err != nil {
		return config{}, err
	}
	cfg.MaxDeliveryAttempts = attempts

	ackWait, err := parseDuration(getenv("ACK_WAIT", bus.DefaultAckWait.String()), "ACK_WAIT")
	if err != nil {
		return config{}, err
	}
	cfg.AckWait = ackWait

	interval, err := parseDuration(getenv("SWEEP_INTERVAL", sweep.DefaultInterval.String()), "SWEEP_INTERVAL")
	if err != nil {
		return config{}, err
	}
	cfg.SweepInterval = interval

	grace, err := parseDuration(getenv("SWEEP_GRACE_PERIOD", sweep.DefaultGracePeriod.String()), "SWEEP_GRACE_PERIOD")
	if err != nil {
		return config{}, err
	}
	cfg.SweepGracePeriod = grace

	return cfg, nil
}

func parsePositiveInt(value string, name string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %d)", name, v)
	}
	return v, nil
}

func parseDuration(value string, name string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (got %s)", name, d)
	}
	return d, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvBool(key string, defaultValue bool) bool {
	val := getenv(key, "")
	if val == "" {
		return defaultValue
	}
	return val == "true"
}
