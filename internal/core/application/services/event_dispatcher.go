// Package services contains application services that sit between the
// command handlers and the outbound adapters.
package services

import (
	"context"
	"log/slog"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/core/ports"
)

// DeliveryCacheInvalidator drops the cached read model for a delivery.
// Implemented by the redis cache adapter.
type DeliveryCacheInvalidator interface {
	Invalidate(ctx context.Context, id kernel.UUID) error
}

// OutboxDispatcher publishes staged outbox messages to the broker and marks
// them dispatched. Command handlers call Dispatch right after commit for low
// publish latency; the outbox relay calls DispatchPending to re-publish
// whatever an earlier Dispatch failed to deliver.
//
// Dispatch is idempotent end to end: event identifiers are deterministic, so
// a message published twice (once by the handler, once by the relay) is
// byte-identical and deduplicated downstream.
type OutboxDispatcher struct {
	publisher   ports.EventPublisher
	uowFactory  ports.UnitOfWorkFactory
	invalidator DeliveryCacheInvalidator
	logger      *slog.Logger
}

// NewOutboxDispatcher creates a dispatcher. The invalidator may be nil when
// no read cache is configured.
func NewOutboxDispatcher(
	publisher ports.EventPublisher,
	uowFactory ports.UnitOfWorkFactory,
	invalidator DeliveryCacheInvalidator,
	logger *slog.Logger,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		publisher:   publisher,
		uowFactory:  uowFactory,
		invalidator: invalidator,
		logger:      logger.With("component", "outbox_dispatcher"),
	}
}

// Dispatch publishes one staged message, marks it dispatched, and drops the
// delivery's cached read model. A publish failure leaves the message staged
// for the relay.
func (d *OutboxDispatcher) Dispatch(ctx context.Context, message ports.OutboxMessage) error {
	if err := d.publisher.Publish(ctx, message); err != nil {
		d.logger.WarnContext(ctx, "Publish failed, message stays staged for the relay",
			"eventId", message.ID.String(),
			"eventType", message.EventType,
			"error", err)
		return err
	}

	// Marking runs outside any transaction; if it fails the relay publishes
	// the same deterministic event again, which downstream deduplicates.
	uow := d.uowFactory.Create()
	if err := uow.OutboxRepository().MarkDispatched(ctx, message.ID); err != nil {
		d.logger.WarnContext(ctx, "Failed to mark message dispatched",
			"eventId", message.ID.String(),
			"error", err)
		return err
	}

	d.invalidate(ctx, message.DeliveryID)
	return nil
}

// DispatchPending publishes up to limit staged messages that were never
// marked dispatched, oldest first. Returns the number published; a publish
// failure stops the batch so ordering per delivery is preserved.
func (d *OutboxDispatcher) DispatchPending(ctx context.Context, limit int) (int, error) {
	uow := d.uowFactory.Create()
	messages, err := uow.OutboxRepository().GetUndispatched(ctx, limit)
	if err != nil {
		return 0, err
	}

	for i, message := range messages {
		if err = d.Dispatch(ctx, message); err != nil {
			return i, err
		}
	}

	return len(messages), nil
}

func (d *OutboxDispatcher) invalidate(ctx context.Context, deliveryID kernel.UUID) {
	if d.invalidator == nil {
		return
	}

	if err := d.invalidator.Invalidate(ctx, deliveryID); err != nil {
		// Stale cache entries expire on their own TTL.
		d.logger.WarnContext(ctx, "Failed to invalidate delivery cache",
			"deliveryId", deliveryID.String(),
			"error", err)
	}
}
