package commands

import (
	"context"
	"errors"
	"time"

	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/ports"
	"deliveries/internal/pkg/errs"
)

// CompleteDeliveryCommandHandler handles the business logic for completing a
// delivery. When a concurrent writer wins the optimistic-concurrency race
// (for example a racing FailDelivery), the retried cycle re-reads the fresh
// terminal state and rejects deterministically, so the aggregate ends in
// exactly one terminal state.
type CompleteDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	dispatcher EventDispatcher
}

// NewCompleteDeliveryCommandHandler creates a handler for delivery completion
// operations.
func NewCompleteDeliveryCommandHandler(uowFactory DeliveryUoWFactory, dispatcher EventDispatcher) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the completion command with a bounded load-apply-save
// retry cycle; each retry reloads the latest persisted state.
func (h *CompleteDeliveryCommandHandler) Handle(ctx context.Context, cmd CompleteDeliveryCommand) error {
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

func (h *CompleteDeliveryCommandHandler) handleAttempt(ctx context.Context, cmd CompleteDeliveryCommand) (ports.OutboxMessage, error) {
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
	completedAt := time.Now().UTC()

	if err = aggregate.Complete(completedAt); err != nil {
		return ports.OutboxMessage{}, err
	}

	if err = deliveryRepo.Update(ctx, aggregate, expectedVersion); err != nil {
		return ports.OutboxMessage{}, err
	}

	event := delivery.NewDeliveryCompletedEvent(aggregate)
	message, err := newOutboxMessage(
		event.EventID, event.EventType(), aggregate.ID(), completedAt, event, cmd.Correlation())
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
