package commands

import (
	"errors"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/correlation"
	"deliveries/internal/pkg/guard"
)

// ErrCompleteDeliveryCommandIsNotConstructed is returned when a
// CompleteDeliveryCommand was not created via NewCompleteDeliveryCommand.
var ErrCompleteDeliveryCommandIsNotConstructed = errors.New(
	"CompleteDeliveryCommand must be created via NewCompleteDeliveryCommand constructor",
)

// CompleteDeliveryCommand represents a request to mark an in-progress
// delivery as successfully delivered.
type CompleteDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	corr       correlation.Context

	guard guard.ConstructorGuard
}

// NewCompleteDeliveryCommand creates a command to complete a delivery.
// Validates that the delivery identifier is set.
func NewCompleteDeliveryCommand(deliveryID kernel.UUID, corr correlation.Context) (CompleteDeliveryCommand, error) {
	command := CompleteDeliveryCommand{
		corr:  corr,
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setDeliveryID(deliveryID); err != nil {
		return CompleteDeliveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to complete.
func (c CompleteDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Correlation returns the correlation/causation pair received with the command.
func (c CompleteDeliveryCommand) Correlation() correlation.Context {
	return c.corr
}

func (c *CompleteDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}
