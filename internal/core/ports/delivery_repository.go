package ports

import (
	"context"

	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
// It is the sole writer of durable delivery state; the aggregate itself holds
// no persistence logic.
//
// All mutation is serialized per identifier by the optimistic-concurrency
// contract of Update, so no additional locking is required above this port.
type DeliveryRepository interface {
	// Add persists a brand-new delivery aggregate at its current version.
	// A concurrent Add for the same identifier surfaces as a version
	// conflict (errs.ErrVersionConflict), letting the caller reload and
	// discover the existing delivery.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes to an existing delivery aggregate.
	// The write is atomic with respect to expectedVersion: if the stored
	// version differs, the write is rejected with errs.ErrVersionConflict
	// and no state changes. Callers must reload the latest state before
	// retrying, never reapply against a stale in-memory copy.
	Update(ctx context.Context, aggregate *delivery.Delivery, expectedVersion int) error

	// Get retrieves a delivery aggregate by its unique identifier, including
	// its registrations in insertion order. Returns errs.ErrObjectNotFound
	// when no delivery exists for the identifier.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)
}
