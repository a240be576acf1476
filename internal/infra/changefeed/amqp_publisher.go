// Package changefeed carries table-level change events over RabbitMQ so API
// instances can invalidate their query caches after committed writes.
package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"bizhub/config"
	"bizhub/internal/domain/service"
	"bizhub/internal/errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpPublisher implements service.ChangeFeedPublisher. The connection is
// established lazily and rebuilt after broker failures.
type amqpPublisher struct {
	url    string
	queue  string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher is the constructor for amqpPublisher.
func NewAMQPPublisher(cfg *config.Config, logger *slog.Logger) (service.ChangeFeedPublisher, error) {
	if cfg.ChangeFeed == nil || cfg.ChangeFeed.URL == "" {
		return nil, errors.New("change feed configuration is missing")
	}

	return &amqpPublisher{
		url:    cfg.ChangeFeed.URL,
		queue:  cfg.ChangeFeed.Queue,
		logger: logger,
	}, nil
}

// PublishChange publishes one change event. The originating write has
// already committed, so failures are returned for logging but must never
// abort the request.
func (p *amqpPublisher) PublishChange(ctx context.Context, event *service.ChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal change event")
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		// The channel may have died with the broker; drop it so the next
		// publish reconnects.
		p.reset()

		return errors.Wrap(err, "failed to publish change event")
	}

	return nil
}

// channel returns the shared publishing channel, dialing if necessary.
func (p *amqpPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial change feed broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, errors.Wrap(err, "failed to open change feed channel")
	}

	// Durable so events survive a broker restart.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, errors.Wrap(err, "failed to declare change feed queue")
	}

	p.conn = conn
	p.ch = ch

	return ch, nil
}

func (p *amqpPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases broker resources.
func (p *amqpPublisher) Close() error {
	p.reset()

	return nil
}
