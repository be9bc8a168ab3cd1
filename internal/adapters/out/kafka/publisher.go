// Package kafka provides the broker-facing publisher for delivery events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deliveries/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// eventEnvelope is the wire format for published delivery events. The
// correlation pair travels in the envelope so consumers can continue the
// chain without parsing the payload.
type eventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	DeliveryID    string          `json:"delivery_id"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	CausationID   string          `json:"causation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Publisher implements ports.EventPublisher on a kafka topic. Messages are
// keyed by delivery identifier, so all events of one delivery land on one
// partition and stay ordered.
type Publisher struct {
	writer *kafka.Writer
	topic  string
}

// NewPublisher creates a publisher writing to the given topic. RequireAll
// acks keep a published event durable across broker failover.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

// Publish writes one staged message to the events topic.
func (p *Publisher) Publish(ctx context.Context, message ports.OutboxMessage) error {
	envelope := eventEnvelope{
		EventID:       message.ID.String(),
		EventType:     message.EventType,
		DeliveryID:    message.DeliveryID.String(),
		CorrelationID: message.CorrelationID,
		CausationID:   message.CausationID,
		OccurredAt:    message.OccurredAt,
		Payload:       message.Payload,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(message.DeliveryID.String()),
		Value: value,
		Time:  message.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(message.EventType)},
			{Key: "correlation_id", Value: []byte(message.CorrelationID)},
			{Key: "causation_id", Value: []byte(message.CausationID)},
		},
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
