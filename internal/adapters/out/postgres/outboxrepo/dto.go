// Package outboxrepo persists staged domain events for the transactional
// outbox. Messages are written in the same transaction as the aggregate
// change that produced them and re-published by the relay until marked
// dispatched.
package outboxrepo

import (
	"time"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/core/ports"

	"github.com/google/uuid"
)

// OutboxMessageDTO represents a staged event row. The primary key is the
// event's deterministic identifier, so staging the same event twice is
// absorbed by the insert's conflict clause.
type OutboxMessageDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType     string
	DeliveryID    uuid.UUID `gorm:"type:uuid;index"`
	CorrelationID string
	CausationID   string
	OccurredAt    time.Time
	Payload       []byte `gorm:"type:jsonb"`
	CreatedAt     time.Time
	DispatchedAt  *time.Time `gorm:"index"`
}

// TableName specifies the database table name for outbox rows.
func (OutboxMessageDTO) TableName() string {
	return "outbox_messages"
}

func fromMessage(message ports.OutboxMessage) OutboxMessageDTO {
	return OutboxMessageDTO{
		ID:            message.ID.Bytes(),
		EventType:     message.EventType,
		DeliveryID:    message.DeliveryID.Bytes(),
		CorrelationID: message.CorrelationID,
		CausationID:   message.CausationID,
		OccurredAt:    message.OccurredAt,
		Payload:       message.Payload,
	}
}

func toMessage(dto OutboxMessageDTO) (ports.OutboxMessage, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	return ports.OutboxMessage{
		ID:            id,
		EventType:     dto.EventType,
		DeliveryID:    deliveryID,
		CorrelationID: dto.CorrelationID,
		CausationID:   dto.CausationID,
		OccurredAt:    dto.OccurredAt,
		Payload:       dto.Payload,
	}, nil
}
