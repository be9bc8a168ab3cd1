package commands

import (
	"context"
	"errors"

	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/core/ports"
	"deliveries/internal/pkg/errs"
)

// AddDeliveryRegistrationCommandHandler handles the business logic for
// logging a checkpoint against a delivery. Redelivered duplicates of the same
// checkpoint are accepted as distinct registrations; a fresh registration
// identifier is generated per handled command.
type AddDeliveryRegistrationCommandHandler struct {
	uowFactory DeliveryUoWFactory
	dispatcher EventDispatcher
}

// NewAddDeliveryRegistrationCommandHandler creates a handler for checkpoint
// registration operations.
func NewAddDeliveryRegistrationCommandHandler(
	uowFactory DeliveryUoWFactory,
	dispatcher EventDispatcher,
) AddDeliveryRegistrationCommandHandler {
	return AddDeliveryRegistrationCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the registration command with a bounded load-apply-save
// retry cycle; each retry reloads the latest persisted state and builds the
// registration anew against it.
func (h *AddDeliveryRegistrationCommandHandler) Handle(ctx context.Context, cmd AddDeliveryRegistrationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var lastConflict error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		message, err := h.handleAttempt(ctx, cmd)
		if err == nil {
			_ = h.dispatcher.Dispatch(ctx, message)
			return nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return err
		}
		lastConflict = err
	}

	return errs.NewConcurrencyExhaustedErrorWithCause(cmd.DeliveryID().String(), maxSaveAttempts, lastConflict)
}

func (h *AddDeliveryRegistrationCommandHandler) handleAttempt(
	ctx context.Context,
	cmd AddDeliveryRegistrationCommand,
) (ports.OutboxMessage, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ports.OutboxMessage{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	aggregate, err := deliveryRepo.Get(ctx, cmd.DeliveryID())
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	expectedVersion := aggregate.Version()

	registration, err := delivery.NewRegistration(
		kernel.NewUUID(), aggregate.ID(), cmd.Payload(), cmd.OccurredAt())
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	if err = aggregate.AddRegistration(registration); err != nil {
		return ports.OutboxMessage{}, err
	}

	if err = deliveryRepo.Update(ctx, aggregate, expectedVersion); err != nil {
		return ports.OutboxMessage{}, err
	}

	event := delivery.NewDeliveryRegistrationAddedEvent(aggregate, registration)
	message, err := newOutboxMessage(
		event.EventID, event.EventType(), aggregate.ID(), cmd.OccurredAt(), event, cmd.Correlation())
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	if err = uow.OutboxRepository().Add(ctx, message); err != nil {
		return ports.OutboxMessage{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ports.OutboxMessage{}, err
	}

	return message, nil
}
