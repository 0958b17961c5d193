package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mini-eats/internal/model"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event types published on the order topic.
const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message body published for order changes.
type OrderEvent struct {
	Type           string            `json:"type"`
	OrderID        uuid.UUID         `json:"orderId"`
	OrderNumber    string            `json:"orderNumber"`
	RestaurantID   uuid.UUID         `json:"restaurantId"`
	Status         model.OrderStatus `json:"status"`
	PreviousStatus model.OrderStatus `json:"previousStatus,omitempty"`
	TotalAmount    int64             `json:"totalAmount"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// OrderCreated builds the event for a newly submitted order.
func OrderCreated(order *model.Order) OrderEvent {
	return OrderEvent{
		Type:         TypeOrderCreated,
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		RestaurantID: order.RestaurantID,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		OccurredAt:   time.Now().UTC(),
	}
}

// StatusChanged builds the event for a lifecycle transition.
func StatusChanged(order *model.Order, previous model.OrderStatus) OrderEvent {
	e := OrderCreated(order)
	e.Type = TypeOrderStatusChanged
	e.PreviousStatus = previous
	return e
}

// Publisher sends order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// KafkaConfig holds producer settings.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
	Timeout  time.Duration
}

// NewSyncProducer connects a sarama producer that waits for all in-sync replicas.
func NewSyncProducer(cfg KafkaConfig) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.ClientID = cfg.ClientID
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	if cfg.Timeout > 0 {
		config.Producer.Timeout = cfg.Timeout
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Kafka producer: %w", err)
	}
	return producer, nil
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewKafkaPublisher publishes events to topic, keyed by order id so that
// all events of one order land on the same partition.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger zerolog.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID.String()),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error().Err(err).
			Str("type", event.Type).
			Str("order_id", event.OrderID.String()).
			Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug().
		Str("type", event.Type).
		Str("order_id", event.OrderID.String()).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("event published")
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that discards events. It is used
// when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, OrderEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
