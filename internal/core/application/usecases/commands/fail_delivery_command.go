package commands

import (
	"errors"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/correlation"
	"deliveries/internal/pkg/errs"
	"deliveries/internal/pkg/guard"
)

// ErrFailDeliveryCommandIsNotConstructed is returned when a
// FailDeliveryCommand was not created via NewFailDeliveryCommand.
var ErrFailDeliveryCommandIsNotConstructed = errors.New(
	"FailDeliveryCommand must be created via NewFailDeliveryCommand constructor",
)

// FailDeliveryCommand represents a request to abort an in-progress delivery,
// carrying the reason reported by the upstream workflow.
type FailDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	reason     string
	corr       correlation.Context

	guard guard.ConstructorGuard
}

// NewFailDeliveryCommand creates a command to fail a delivery.
// Validates that the delivery identifier is set and the reason is not empty.
func NewFailDeliveryCommand(deliveryID kernel.UUID, reason string, corr correlation.Context) (FailDeliveryCommand, error) {
	command := FailDeliveryCommand{
		corr:  corr,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDeliveryID(deliveryID),
		command.setReason(reason),
	); err != nil {
		return FailDeliveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c FailDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrFailDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to fail.
func (c FailDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Reason returns the reported failure reason.
func (c FailDeliveryCommand) Reason() string {
	return c.reason
}

// Correlation returns the correlation/causation pair received with the command.
func (c FailDeliveryCommand) Correlation() correlation.Context {
	return c.corr
}

func (c *FailDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}

func (c *FailDeliveryCommand) setReason(reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}

	c.reason = reason
	return nil
}
