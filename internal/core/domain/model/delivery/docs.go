// Package delivery provides the domain model for the delivery lifecycle.
// It implements the Delivery aggregate root with its state machine and the
// Registration records logged against a delivery.
//
// The package includes:
//   - Delivery: The aggregate root managing identity, registrations, lifecycle
//     timestamps, and the persisted version used for optimistic concurrency
//   - Status: A state machine enforcing valid lifecycle transitions
//   - Registration: An immutable checkpoint observed for a delivery
//   - Domain events (DeliveryStartedEvent and friends) with deterministic
//     identifiers for idempotent downstream consumption
//
// Key business rules:
//   - Status follows Pending -> InProgress -> {Completed, Failed}
//   - Completed and Failed are terminal; terminal deliveries are immutable
//   - Registrations may only be appended while Pending or InProgress, and
//     their insertion order is chronological and preserved
//   - startedAt/completedAt/failedAt are set exactly once, on the
//     corresponding transition
//   - version increases by exactly one per persisted mutation
//
// The package follows Domain-Driven Design principles: rich behavior,
// encapsulated state, and validation that keeps aggregates in a valid state.
package delivery
