package commands

import (
	"context"
	"errors"
	"time"

	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/ports"
	"deliveries/internal/pkg/errs"
)

// FailDeliveryCommandHandler handles the business logic for aborting a
// delivery. Mirrors CompleteDeliveryCommandHandler: a racing terminal
// transition makes the retried cycle reject against the fresh state, so at
// most one terminal event is ever produced per delivery.
type FailDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	dispatcher EventDispatcher
}

// NewFailDeliveryCommandHandler creates a handler for delivery failure
// operations.
func NewFailDeliveryCommandHandler(uowFactory DeliveryUoWFactory, dispatcher EventDispatcher) FailDeliveryCommandHandler {
	return FailDeliveryCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the failure command with a bounded load-apply-save retry
// cycle; each retry reloads the latest persisted state.
func (h *FailDeliveryCommandHandler) Handle(ctx context.Context, cmd FailDeliveryCommand) error {
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

func (h *FailDeliveryCommandHandler) handleAttempt(ctx context.Context, cmd FailDeliveryCommand) (ports.OutboxMessage, error) {
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
	failedAt := time.Now().UTC()

	if err = aggregate.Fail(failedAt); err != nil {
		return ports.OutboxMessage{}, err
	}

	if err = deliveryRepo.Update(ctx, aggregate, expectedVersion); err != nil {
		return ports.OutboxMessage{}, err
	}

	event := delivery.NewDeliveryFailedEvent(aggregate, cmd.Reason())
	message, err := newOutboxMessage(
		event.EventID, event.EventType(), aggregate.ID(), failedAt, event, cmd.Correlation())
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
