package delivery

import (
	"fmt"
	"time"

	"deliveries/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// Event type names as they appear on the wire and in the outbox.
const (
	EventTypeDeliveryStarted           = "delivery.started"
	EventTypeDeliveryRegistrationAdded = "delivery.registration_added"
	EventTypeDeliveryCompleted         = "delivery.completed"
	EventTypeDeliveryFailed            = "delivery.failed"
)

// eventNamespace is the fixed UUIDv5 namespace for deriving event
// identifiers. Changing it would change every derived event id, so it is a
// constant of the wire contract.
var eventNamespace = uuid.MustParse("8f1f6d9e-4b1a-5c7e-9d2f-3a6b8c0d1e2f")

// EventID derives the deterministic identifier for the event produced by
// persisting the given delivery version. The same (delivery, version, type)
// triple always yields the same id, so re-publishing after a crash or an
// outbox relay produces a byte-identical event and downstream consumers can
// deduplicate.
func EventID(deliveryID kernel.UUID, version int, eventType string) kernel.UUID {
	namespace, err := kernel.UUIDFromBytes(eventNamespace[:])
	if err != nil {
		// The namespace literal is a valid non-nil UUID.
		panic(err)
	}
	return kernel.DeterministicUUID(namespace, fmt.Sprintf("%s:%d:%s", deliveryID, version, eventType))
}

// DeliveryStartedEvent records that a delivery transitioned to InProgress.
type DeliveryStartedEvent struct {
	EventID    kernel.UUID `json:"eventId"`
	DeliveryID kernel.UUID `json:"deliveryId"`
	StartedAt  time.Time   `json:"startedAt"`
	Version    int         `json:"version"`
}

// NewDeliveryStartedEvent builds the event for a just-started delivery.
// Call after Start has been applied, so the aggregate's version is the one
// being persisted.
func NewDeliveryStartedEvent(d *Delivery) DeliveryStartedEvent {
	return DeliveryStartedEvent{
		EventID:    EventID(d.ID(), d.Version(), EventTypeDeliveryStarted),
		DeliveryID: d.ID(),
		StartedAt:  *d.StartedAt(),
		Version:    d.Version(),
	}
}

// EventType returns the wire name of the event.
func (DeliveryStartedEvent) EventType() string {
	return EventTypeDeliveryStarted
}

// DeliveryRegistrationAddedEvent records that a checkpoint was registered
// against an in-progress delivery.
type DeliveryRegistrationAddedEvent struct {
	EventID        kernel.UUID `json:"eventId"`
	DeliveryID     kernel.UUID `json:"deliveryId"`
	RegistrationID kernel.UUID `json:"registrationId"`
	Payload        string      `json:"payload"`
	OccurredAt     time.Time   `json:"occurredAt"`
	Version        int         `json:"version"`
}

// NewDeliveryRegistrationAddedEvent builds the event for a just-appended
// registration.
func NewDeliveryRegistrationAddedEvent(d *Delivery, registration Registration) DeliveryRegistrationAddedEvent {
	return DeliveryRegistrationAddedEvent{
		EventID:        EventID(d.ID(), d.Version(), EventTypeDeliveryRegistrationAdded),
		DeliveryID:     d.ID(),
		RegistrationID: registration.ID(),
		Payload:        registration.Payload(),
		OccurredAt:     registration.OccurredAt(),
		Version:        d.Version(),
	}
}

// EventType returns the wire name of the event.
func (DeliveryRegistrationAddedEvent) EventType() string {
	return EventTypeDeliveryRegistrationAdded
}

// DeliveryCompletedEvent records that a delivery reached its terminal
// Completed state.
type DeliveryCompletedEvent struct {
	EventID     kernel.UUID `json:"eventId"`
	DeliveryID  kernel.UUID `json:"deliveryId"`
	CompletedAt time.Time   `json:"completedAt"`
	Version     int         `json:"version"`
}

// NewDeliveryCompletedEvent builds the event for a just-completed delivery.
func NewDeliveryCompletedEvent(d *Delivery) DeliveryCompletedEvent {
	return DeliveryCompletedEvent{
		EventID:     EventID(d.ID(), d.Version(), EventTypeDeliveryCompleted),
		DeliveryID:  d.ID(),
		CompletedAt: *d.CompletedAt(),
		Version:     d.Version(),
	}
}

// EventType returns the wire name of the event.
func (DeliveryCompletedEvent) EventType() string {
	return EventTypeDeliveryCompleted
}

// DeliveryFailedEvent records that a delivery reached its terminal Failed
// state, with the reason supplied by the failing command.
type DeliveryFailedEvent struct {
	EventID    kernel.UUID `json:"eventId"`
	DeliveryID kernel.UUID `json:"deliveryId"`
	Reason     string      `json:"reason"`
	FailedAt   time.Time   `json:"failedAt"`
	Version    int         `json:"version"`
}

// NewDeliveryFailedEvent builds the event for a just-failed delivery.
func NewDeliveryFailedEvent(d *Delivery, reason string) DeliveryFailedEvent {
	return DeliveryFailedEvent{
		EventID:    EventID(d.ID(), d.Version(), EventTypeDeliveryFailed),
		DeliveryID: d.ID(),
		Reason:     reason,
		FailedAt:   *d.FailedAt(),
		Version:    d.Version(),
	}
}

// EventType returns the wire name of the event.
func (DeliveryFailedEvent) EventType() string {
	return EventTypeDeliveryFailed
}
