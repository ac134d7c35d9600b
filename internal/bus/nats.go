// internal/bus/nats.go
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// PoisonQueue returns the name of the poison side channel for queue.
func PoisonQueue(queue string) string { return queue + "-poison" }

// DefaultMaxDeliveryAttempts bounds redelivery before a message is routed to
// the poison queue.
const DefaultMaxDeliveryAttempts = 5

// DefaultAckWait is the visibility timeout: how long a delivered message may
// stay unacknowledged before it becomes deliverable again.
const DefaultAckWait = 2 * time.Minute

// DefaultHandlerTimeout bounds the context handed to a single delivery.
const DefaultHandlerTimeout = 30 * time.Second

// Client wraps a NATS connection with the JetStream queue semantics the
// pipeline relies on: durable delivery, attempt counting, and a poison side
// channel per queue.
type Client struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func Connect(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return &Client{nc: nc, js: js}, nil
}

func (c *Client) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
	}
}

func (c *Client) Conn() *nats.Conn { return c.nc }

// EnsureQueue creates (or updates) the stream backing queue, covering both
// the main subject and its poison side channel.
func (c *Client) EnsureQueue(ctx context.Context, queue string) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName(queue),
		Subjects: []string{queue, PoisonQueue(queue)},
	})
	if err != nil {
		return fmt.Errorf("ensure stream for queue %s: %w", queue, err)
	}
	return nil
}

// Enqueue JSON-serializes v onto queue.
func (c *Client) Enqueue(ctx context.Context, queue string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := c.js.Publish(ctx, queue, b); err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// PublishJSON publishes v on a plain subject, outside any queue stream. Used
// for fire-and-forget result events.
func (c *Client) PublishJSON(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, b)
}

// QueueConfig tunes consumption of one queue.
type QueueConfig struct {
	Name                string
	MaxDeliveryAttempts int
	AckWait             time.Duration
	HandlerTimeout      time.Duration
}

func (cfg QueueConfig) withDefaults() QueueConfig {
	if cfg.MaxDeliveryAttempts <= 0 {
		cfg.MaxDeliveryAttempts = DefaultMaxDeliveryAttempts
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = DefaultAckWait
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = DefaultHandlerTimeout
	}
	return cfg
}

// ConsumeWorker delivers queue messages to handler. A nil handler error acks
// the message. On failure the message is redelivered until the attempt count
// reaches MaxDeliveryAttempts; the exhausted message is then published to the
// poison queue exactly once and terminated.
func (c *Client) ConsumeWorker(ctx context.Context, cfg QueueConfig, logger *slog.Logger, handler func(context.Context, []byte) error) (jetstream.ConsumeContext, error) {
	cfg = cfg.withDefaults()

	cons, err := c.js.CreateOrUpdateConsumer(ctx, streamName(cfg.Name), jetstream.ConsumerConfig{
		Durable:       durableName(cfg.Name, "workers"),
		FilterSubject: cfg.Name,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       cfg.AckWait,
		// One extra delivery beyond the attempt cap, so a message whose
		// poison publish failed can be re-offered instead of going silent.
		MaxDeliver: cfg.MaxDeliveryAttempts + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer for queue %s: %w", cfg.Name, err)
	}

	return cons.Consume(func(msg jetstream.Msg) {
		handlerCtx, cancel := context.WithTimeout(context.Background(), cfg.HandlerTimeout)
		defer cancel()

		err := handler(handlerCtx, msg.Data())
		if err == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				logger.Warn("ack failed", "queue", cfg.Name, "err", ackErr)
			}
			return
		}

		attempts := deliveryAttempts(msg)
		if attempts >= uint64(cfg.MaxDeliveryAttempts) {
			if pubErr := c.routeToPoison(cfg.Name, msg.Data()); pubErr != nil {
				// Leave the message unacked so the server redelivers and we
				// get another chance to hand it to the poison queue.
				logger.Error("route to poison queue failed", "queue", cfg.Name, "attempts", attempts, "err", pubErr)
				return
			}
			logger.Warn("delivery attempts exhausted, routed to poison queue",
				"queue", cfg.Name, "attempts", attempts, "err", err)
			if termErr := msg.Term(); termErr != nil {
				logger.Warn("term failed", "queue", cfg.Name, "err", termErr)
			}
			return
		}

		logger.Warn("delivery failed, scheduling redelivery",
			"queue", cfg.Name, "attempt", attempts, "max_attempts", cfg.MaxDeliveryAttempts, "err", err)
		if nakErr := msg.Nak(); nakErr != nil {
			logger.Warn("nak failed", "queue", cfg.Name, "err", nakErr)
		}
	})
}

// ConsumePoison delivers poison-queue messages to handler. The handler has no
// way to fail: poison messages are acked unconditionally.
func (c *Client) ConsumePoison(ctx context.Context, queue string, logger *slog.Logger, handler func(context.Context, []byte)) (jetstream.ConsumeContext, error) {
	poison := PoisonQueue(queue)

	cons, err := c.js.CreateOrUpdateConsumer(ctx, streamName(queue), jetstream.ConsumerConfig{
		Durable:       durableName(queue, "poison-workers"),
		FilterSubject: poison,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("create poison consumer for queue %s: %w", queue, err)
	}

	return cons.Consume(func(msg jetstream.Msg) {
		handlerCtx, cancel := context.WithTimeout(context.Background(), DefaultHandlerTimeout)
		defer cancel()

		handler(handlerCtx, msg.Data())
		if ackErr := msg.Ack(); ackErr != nil {
			logger.Warn("poison ack failed", "queue", poison, "err", ackErr)
		}
	})
}

func (c *Client) routeToPoison(queue string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.js.Publish(ctx, PoisonQueue(queue), data)
	return err
}

func deliveryAttempts(msg jetstream.Msg) uint64 {
	meta, err := msg.Metadata()
	if err != nil {
		return 1
	}
	return meta.NumDelivered
}

func streamName(queue string) string {
	return strings.ToUpper(strings.ReplaceAll(queue, "-", "_"))
}

func durableName(queue, role string) string {
	return strings.ReplaceAll(queue, ".", "_") + "-" + role
}
