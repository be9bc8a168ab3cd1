package commands

import (
	"encoding/json"
	"time"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/core/ports"
	"deliveries/internal/pkg/correlation"
)

// newOutboxMessage stages a domain event for publication, serializing the
// event struct as the message payload and attaching the correlation/causation
// pair received with the command.
func newOutboxMessage(
	eventID kernel.UUID,
	eventType string,
	deliveryID kernel.UUID,
	occurredAt time.Time,
	event any,
	corr correlation.Context,
) (ports.OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	return ports.OutboxMessage{
		ID:            eventID,
		EventType:     eventType,
		DeliveryID:    deliveryID,
		CorrelationID: corr.CorrelationID(),
		CausationID:   corr.CausationID(),
		OccurredAt:    occurredAt,
		Payload:       payload,
	}, nil
}
