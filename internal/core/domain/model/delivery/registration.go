package delivery

import (
	"errors"
	"time"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/errs"
	"deliveries/internal/pkg/guard"
)

// ErrRegistrationIsNotConstructed is returned when a Registration was not
// created through NewRegistration or RestoreRegistration.
var ErrRegistrationIsNotConstructed = errors.New(
	"Registration must be created via NewRegistration or RestoreRegistration")

// Registration is an immutable record of an observed checkpoint for a
// delivery, such as a depot scan or a handover note. It is a
// child entity of the Delivery aggregate: the deliveryID field is a lookup
// back-reference, never an ownership edge.
//
// Registrations carry no behavior beyond construction-time validation; once
// appended to a delivery they are never modified or removed.
type Registration struct {
	id         kernel.UUID
	deliveryID kernel.UUID
	payload    string
	occurredAt time.Time

	guard guard.ConstructorGuard
}

// NewRegistration creates a validated Registration.
// The payload is opaque data describing the checkpoint and must not be empty;
// occurredAt must be set.
func NewRegistration(id kernel.UUID, deliveryID kernel.UUID, payload string, occurredAt time.Time) (Registration, error) {
	registration := Registration{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		registration.setID(id),
		registration.setDeliveryID(deliveryID),
		registration.setPayload(payload),
		registration.setOccurredAt(occurredAt),
	); err != nil {
		return Registration{}, err
	}

	return registration, nil
}

// RestoreRegistration reconstructs a Registration from persistence.
// It applies the same validation as NewRegistration.
func RestoreRegistration(id kernel.UUID, deliveryID kernel.UUID, payload string, occurredAt time.Time) (Registration, error) {
	return NewRegistration(id, deliveryID, payload, occurredAt)
}

// Validate ensures the Registration was created through a constructor.
func (r Registration) Validate() error {
	return r.guard.Validate(ErrRegistrationIsNotConstructed)
}

// ID returns the registration's unique identifier.
func (r Registration) ID() kernel.UUID {
	return r.id
}

// DeliveryID returns the identifier of the delivery this registration was
// observed for.
func (r Registration) DeliveryID() kernel.UUID {
	return r.deliveryID
}

// Payload returns the opaque checkpoint data.
func (r Registration) Payload() string {
	return r.payload
}

// OccurredAt returns when the checkpoint was observed.
func (r Registration) OccurredAt() time.Time {
	return r.occurredAt
}

func (r *Registration) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Registration) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}
	r.deliveryID = deliveryID
	return nil
}

func (r *Registration) setPayload(payload string) error {
	if payload == "" {
		return errs.NewValueIsRequiredError("payload")
	}
	r.payload = payload
	return nil
}

func (r *Registration) setOccurredAt(occurredAt time.Time) error {
	if occurredAt.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}
	r.occurredAt = occurredAt
	return nil
}
