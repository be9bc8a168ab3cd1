package ports

import (
	"context"
	"time"

	"deliveries/internal/core/domain/model/kernel"
)

// OutboxMessage is a domain event staged for publication. It is written in
// the same transaction as the aggregate mutation that produced it, so a
// committed state change always has its event on durable storage even when
// the broker is unreachable at commit time.
//
// The ID is the event's deterministic identifier: re-publishing the same
// message produces a byte-identical event, so downstream consumers can
// deduplicate.
type OutboxMessage struct {
	ID            kernel.UUID
	EventType     string
	DeliveryID    kernel.UUID
	CorrelationID string
	CausationID   string
	OccurredAt    time.Time
	Payload       []byte
}

// OutboxRepository defines the persistence contract for staged events.
type OutboxRepository interface {
	// Add stages a message. Staging the same event id twice is a no-op, so
	// a retried handler cycle cannot duplicate a staged event.
	Add(ctx context.Context, message OutboxMessage) error

	// GetUndispatched returns up to limit staged messages that have not been
	// published yet, oldest first.
	GetUndispatched(ctx context.Context, limit int) ([]OutboxMessage, error)

	// MarkDispatched records that the message was handed to the broker.
	MarkDispatched(ctx context.Context, id kernel.UUID) error
}
