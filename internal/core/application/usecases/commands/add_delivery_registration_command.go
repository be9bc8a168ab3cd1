package commands

import (
	"errors"
	"time"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/correlation"
	"deliveries/internal/pkg/errs"
	"deliveries/internal/pkg/guard"
)

// ErrAddDeliveryRegistrationCommandIsNotConstructed is returned when an
// AddDeliveryRegistrationCommand was not created via its constructor.
var ErrAddDeliveryRegistrationCommandIsNotConstructed = errors.New(
	"AddDeliveryRegistrationCommand must be created via NewAddDeliveryRegistrationCommand constructor",
)

// AddDeliveryRegistrationCommand represents a request to log a checkpoint
// against an in-progress delivery. The payload is opaque data describing the
// checkpoint, for example a location or status note.
type AddDeliveryRegistrationCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	payload    string
	occurredAt time.Time
	corr       correlation.Context

	guard guard.ConstructorGuard
}

// NewAddDeliveryRegistrationCommand creates a command to register a delivery
// checkpoint. Validates that the delivery identifier is set, the payload is
// not empty, and the observation time is set.
func NewAddDeliveryRegistrationCommand(
	deliveryID kernel.UUID,
	payload string,
	occurredAt time.Time,
	corr correlation.Context,
) (AddDeliveryRegistrationCommand, error) {
	command := AddDeliveryRegistrationCommand{
		corr:  corr,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDeliveryID(deliveryID),
		command.setPayload(payload),
		command.setOccurredAt(occurredAt),
	); err != nil {
		return AddDeliveryRegistrationCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AddDeliveryRegistrationCommand) Validate() error {
	return c.guard.Validate(ErrAddDeliveryRegistrationCommandIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to register against.
func (c AddDeliveryRegistrationCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Payload returns the opaque checkpoint data.
func (c AddDeliveryRegistrationCommand) Payload() string {
	return c.payload
}

// OccurredAt returns when the checkpoint was observed.
func (c AddDeliveryRegistrationCommand) OccurredAt() time.Time {
	return c.occurredAt
}

// Correlation returns the correlation/causation pair received with the command.
func (c AddDeliveryRegistrationCommand) Correlation() correlation.Context {
	return c.corr
}

func (c *AddDeliveryRegistrationCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}

func (c *AddDeliveryRegistrationCommand) setPayload(payload string) error {
	if payload == "" {
		return errs.NewValueIsRequiredError("registrationPayload")
	}

	c.payload = payload
	return nil
}

func (c *AddDeliveryRegistrationCommand) setOccurredAt(occurredAt time.Time) error {
	if occurredAt.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}

	c.occurredAt = occurredAt
	return nil
}
