package kafka

import (
	"encoding/json"
	"time"

	"deliveries/internal/core/application/usecases/commands"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/correlation"
	"deliveries/internal/pkg/errs"
)

// commandEnvelope is the wire format shared by all inbound command topics.
// The command-specific fields travel in the payload; identity and correlation
// metadata travel in the envelope.
type commandEnvelope struct {
	MessageID     string          `json:"message_id"`
	CorrelationID string          `json:"correlation_id"`
	CausationID   string          `json:"causation_id"`
	SentAt        time.Time       `json:"sent_at"`
	Payload       json.RawMessage `json:"payload"`
}

type startDeliveryPayload struct {
	DeliveryID string `json:"delivery_id"`
}

type completeDeliveryPayload struct {
	DeliveryID string `json:"delivery_id"`
}

type failDeliveryPayload struct {
	DeliveryID string `json:"delivery_id"`
	Reason     string `json:"reason"`
}

type addRegistrationPayload struct {
	DeliveryID string    `json:"delivery_id"`
	Payload    string    `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// deliveryRef extracts the delivery identifier from any command payload for
// rejection events; parse failures just leave it empty.
type deliveryRef struct {
	DeliveryID string `json:"delivery_id"`
}

func (e commandEnvelope) deliveryID() string {
	var ref deliveryRef
	_ = json.Unmarshal(e.Payload, &ref)
	return ref.DeliveryID
}

func parseDeliveryID(raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("deliveryId", err)
	}
	return id, nil
}

func (e commandEnvelope) startDeliveryCommand(corr correlation.Context) (commands.StartDeliveryCommand, error) {
	var payload startDeliveryPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return commands.StartDeliveryCommand{}, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}

	id, err := parseDeliveryID(payload.DeliveryID)
	if err != nil {
		return commands.StartDeliveryCommand{}, err
	}

	return commands.NewStartDeliveryCommand(id, corr)
}

func (e commandEnvelope) completeDeliveryCommand(corr correlation.Context) (commands.CompleteDeliveryCommand, error) {
	var payload completeDeliveryPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return commands.CompleteDeliveryCommand{}, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}

	id, err := parseDeliveryID(payload.DeliveryID)
	if err != nil {
		return commands.CompleteDeliveryCommand{}, err
	}

	return commands.NewCompleteDeliveryCommand(id, corr)
}

func (e commandEnvelope) failDeliveryCommand(corr correlation.Context) (commands.FailDeliveryCommand, error) {
	var payload failDeliveryPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return commands.FailDeliveryCommand{}, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}

	id, err := parseDeliveryID(payload.DeliveryID)
	if err != nil {
		return commands.FailDeliveryCommand{}, err
	}

	return commands.NewFailDeliveryCommand(id, payload.Reason, corr)
}

func (e commandEnvelope) addRegistrationCommand(corr correlation.Context) (commands.AddDeliveryRegistrationCommand, error) {
	var payload addRegistrationPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return commands.AddDeliveryRegistrationCommand{}, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}

	id, err := parseDeliveryID(payload.DeliveryID)
	if err != nil {
		return commands.AddDeliveryRegistrationCommand{}, err
	}

	return commands.NewAddDeliveryRegistrationCommand(id, payload.Payload, payload.OccurredAt, corr)
}
