package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"bizhub/config"
	"bizhub/internal/domain/service"
	"bizhub/internal/errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// amqpConsumer implements service.ChangeFeedConsumer with a reconnect loop:
// a lost broker stalls invalidation briefly instead of killing the process.
type amqpConsumer struct {
	url    string
	queue  string
	logger *slog.Logger
}

// NewAMQPConsumer is the constructor for amqpConsumer.
func NewAMQPConsumer(cfg *config.Config, logger *slog.Logger) (service.ChangeFeedConsumer, error) {
	if cfg.ChangeFeed == nil || cfg.ChangeFeed.URL == "" {
		return nil, errors.New("change feed configuration is missing")
	}

	return &amqpConsumer{
		url:    cfg.ChangeFeed.URL,
		queue:  cfg.ChangeFeed.Queue,
		logger: logger,
	}, nil
}

// Consume blocks, invoking handler for each received event. It reconnects
// with exponential backoff and returns only when ctx is cancelled.
func (c *amqpConsumer) Consume(ctx context.Context, handler func(*service.ChangeEvent)) error {
	backoff := reconnectBaseDelay
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.WarnContext(ctx, "change feed dial failed",
				slog.Any("error", err), slog.Duration("retryIn", backoff))

			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < reconnectMaxDelay {
				backoff *= 2
			}

			continue
		}
		backoff = reconnectBaseDelay

		if err := c.consumeLoop(ctx, conn, handler); err != nil {
			if ctx.Err() != nil {
				_ = conn.Close()

				return ctx.Err()
			}
			c.logger.WarnContext(ctx, "change feed consume loop ended, reconnecting",
				slog.Any("error", err))
		}
		_ = conn.Close()
	}
}

func (c *amqpConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection, handler func(*service.ChangeEvent)) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.WarnContext(ctx, "change feed QoS set failed", slog.Any("error", err))
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "failed to declare queue")
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start consuming")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}

			var event service.ChangeEvent
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				c.logger.WarnContext(ctx, "change feed message unmarshal failed",
					slog.Any("error", err))
				// Reject without requeue to avoid a poison message loop.
				_ = delivery.Nack(false, false)

				continue
			}

			handler(&event)
			_ = delivery.Ack(false)
		}
	}
}

// Close releases broker resources. Connections are scoped to Consume, so
// there is nothing to release here.
func (c *amqpConsumer) Close() error {
	return nil
}

// sleepCtx sleeps for d or until ctx ends, reporting whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
