package commands

import (
	"context"
	"errors"
	"time"

	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/ports"
	"deliveries/internal/pkg/errs"
)

// StartDeliveryCommandHandler handles the business logic for starting a
// delivery. The aggregate is created implicitly when no delivery exists for
// the identifier; an existing delivery rejects the transition, which also
// guards against duplicate command delivery.
//
// Example:
//
//	handler := NewStartDeliveryCommandHandler(uowFactory, dispatcher)
//	cmd, _ := NewStartDeliveryCommand(deliveryID, corr)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("start delivery failed: %w", err)
//	}
//	// Delivery is now InProgress at version 1 and DeliveryStarted is staged.
type StartDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	dispatcher EventDispatcher
}

// NewStartDeliveryCommandHandler creates a handler for delivery start
// operations.
func NewStartDeliveryCommandHandler(uowFactory DeliveryUoWFactory, dispatcher EventDispatcher) StartDeliveryCommandHandler {
	return StartDeliveryCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the start command.
// A version conflict on the insert means another writer created the delivery
// concurrently; the cycle is re-run against the fresh state so exactly one
// DeliveryStarted event is ever produced per identifier.
func (h *StartDeliveryCommandHandler) Handle(ctx context.Context, cmd StartDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var lastConflict error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		message, err := h.handleAttempt(ctx, cmd)
		if err == nil {
			// Best effort: the outbox relay re-publishes on dispatch failure.
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

func (h *StartDeliveryCommandHandler) handleAttempt(ctx context.Context, cmd StartDeliveryCommand) (ports.OutboxMessage, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ports.OutboxMessage{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()
	startedAt := time.Now().UTC()

	aggregate, err := deliveryRepo.Get(ctx, cmd.DeliveryID())
	switch {
	case err == nil:
		// Already persisted means already started: reject with the actual
		// current state instead of overwriting.
		return ports.OutboxMessage{}, delivery.NewInvalidStateTransitionError("start", aggregate.Status())
	case errors.Is(err, errs.ErrObjectNotFound):
		// Implicit Pending state: first command creates the aggregate.
	default:
		return ports.OutboxMessage{}, err
	}

	aggregate, err = delivery.NewDelivery(cmd.DeliveryID())
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	if err = aggregate.Start(startedAt); err != nil {
		return ports.OutboxMessage{}, err
	}

	if err = deliveryRepo.Add(ctx, aggregate); err != nil {
		return ports.OutboxMessage{}, err
	}

	event := delivery.NewDeliveryStartedEvent(aggregate)
	message, err := newOutboxMessage(
		event.EventID, event.EventType(), aggregate.ID(), startedAt, event, cmd.Correlation())
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
