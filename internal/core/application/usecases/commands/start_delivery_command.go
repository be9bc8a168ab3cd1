package commands

import (
	"errors"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/correlation"
	"deliveries/internal/pkg/guard"
)

// ErrStartDeliveryCommandIsNotConstructed is returned when a
// StartDeliveryCommand was not created via NewStartDeliveryCommand.
var ErrStartDeliveryCommandIsNotConstructed = errors.New(
	"StartDeliveryCommand must be created via NewStartDeliveryCommand constructor",
)

// StartDeliveryCommand represents a request to begin tracking a delivery.
// The delivery is created implicitly on the first StartDelivery for its
// identifier; a repeated start is rejected, not overwritten.
//
// Example:
//
//	cmd, err := NewStartDeliveryCommand(deliveryID, corr)
//	if err != nil {
//	    return fmt.Errorf("invalid start request: %w", err)
//	}
//
//	handler := NewStartDeliveryCommandHandler(uowFactory, dispatcher)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to start delivery: %w", err)
//	}
type StartDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	corr       correlation.Context

	guard guard.ConstructorGuard
}

// NewStartDeliveryCommand creates a command to start a delivery.
// Validates that the delivery identifier is set. The correlation context may
// be zero when the inbound envelope carried no metadata.
func NewStartDeliveryCommand(deliveryID kernel.UUID, corr correlation.Context) (StartDeliveryCommand, error) {
	command := StartDeliveryCommand{
		corr:  corr,
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setDeliveryID(deliveryID); err != nil {
		return StartDeliveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c StartDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrStartDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to start.
func (c StartDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Correlation returns the correlation/causation pair received with the command.
func (c StartDeliveryCommand) Correlation() correlation.Context {
	return c.corr
}

func (c *StartDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}
