// Package events publishes seating domain events to RabbitMQ. Publishing
// failures are logged and swallowed so that a broker outage never blocks
// the request path.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/config"
)

// Routing keys for seating events.
const (
	KeySeatPlaced   = "seating.seat.placed"
	KeyPlanReplaced = "seating.plan.replaced"
)

// SeatPlacedEvent announces a single student being seated.
type SeatPlacedEvent struct {
	HallID    string         `json:"hall_id"`
	StudentID string         `json:"student_id"`
	Seat      models.SeatRef `json:"seat"`
	PlacedAt  time.Time      `json:"placed_at"`
}

// PlanReplacedEvent announces a bulk reallocation of a hall.
type PlanReplacedEvent struct {
	HallID     string    `json:"hall_id"`
	Seated     int       `json:"seated"`
	ReplacedAt time.Time `json:"replaced_at"`
}

// Publisher emits seating events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	SeatPlaced(ctx context.Context, event SeatPlacedEvent)
	PlanReplaced(ctx context.Context, event PlanReplacedEvent)
	Close() error
}

// NoopPublisher discards all events. Used when eventing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) SeatPlaced(context.Context, SeatPlacedEvent)     {}
func (NoopPublisher) PlanReplaced(context.Context, PlanReplacedEvent) {}
func (NoopPublisher) Close() error                                    { return nil }

// AMQPPublisher publishes events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	logger   *zap.Logger

	mu      sync.Mutex
	channel *amqp.Channel
}

// New connects to the broker when eventing is enabled, otherwise returns
// a NoopPublisher. A failed initial dial is an error; later failures are
// logged per publish.
func New(cfg config.EventsConfig, logger *zap.Logger) (Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = "seating.events"
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

// SeatPlaced publishes a seat placement event.
func (p *AMQPPublisher) SeatPlaced(ctx context.Context, event SeatPlacedEvent) {
	p.publish(ctx, KeySeatPlaced, event)
}

// PlanReplaced publishes a plan replacement event.
func (p *AMQPPublisher) PlanReplaced(ctx context.Context, event PlanReplacedEvent) {
	p.publish(ctx, KeyPlanReplaced, event)
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	return p.conn.Close()
}

func (p *AMQPPublisher) publish(ctx context.Context, key string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("failed to encode event", zap.String("routing_key", key), zap.Error(err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}
