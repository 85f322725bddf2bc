package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

const headerEventType = "event_type"

// Publisher delivers payment lifecycle events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event model.PaymentEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON keyed by order id, so the events of one
// order stay ordered within a partition.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
}

type eventPayload struct {
	Type       model.PaymentEventType `json:"type"`
	OrderID    string                 `json:"order_id"`
	SchoolID   string                 `json:"school_id"`
	Status     model.PaymentStatus    `json:"status"`
	Amount     decimal.Decimal        `json:"amount"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// publishTimeout bounds a single publish, retries included.
const publishTimeout = 3 * time.Second

// NewKafkaPublisher creates a synchronous writer for topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			WriteTimeout:           publishTimeout,
			MaxAttempts:            3,
			AllowAutoTopicCreation: true,
		},
		timeout: publishTimeout,
		logger:  logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.PaymentEvent) error {
	value, err := json.Marshal(eventPayload{
		Type:       event.Type,
		OrderID:    event.OrderID,
		SchoolID:   event.SchoolID,
		Status:     event.Status,
		Amount:     event.Amount,
		OccurredAt: event.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(event.OrderID),
		Value:   value,
		Time:    event.OccurredAt,
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(event.Type)}},
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.logger.Debug("event published", slog.String("type", string(event.Type)), slog.String("order_id", event.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.PaymentEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
