// Package commands contains the business operations that modify delivery
// state. Implements the Command pattern for the write side of the CQRS
// architecture. All commands follow a consistent protocol: validate, load the
// aggregate (or treat absence as the implicit Pending state for StartDelivery),
// apply the transition, persist with an optimistic-concurrency check, stage
// the resulting domain event in the outbox within the same transaction, and
// dispatch it after commit.
//
// Version conflicts are retried by re-running the whole load-apply-save cycle
// with freshly loaded state, up to a bounded attempt count; exhaustion
// surfaces as errs.ErrConcurrencyExhausted, which the broker adapter treats
// as transient.
package commands

import (
	"context"

	"deliveries/internal/core/ports"
)

// maxSaveAttempts bounds the load-apply-save retry cycle on version conflicts.
const maxSaveAttempts = 3

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure the aggregate write and its staged event commit
// atomically.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// DeliveryRepoFactory provides access to the delivery repository within
	// a transaction.
	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	// OutboxRepoFactory provides access to the outbox repository within a
	// transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// DeliveryUoW manages transactions spanning the delivery aggregate and
	// its staged events.
	DeliveryUoW interface {
		TxManager
		DeliveryRepoFactory
		OutboxRepoFactory
	}

	// DeliveryUoWFactory creates new unit of work instances.
	DeliveryUoWFactory interface {
		Create() DeliveryUoW
	}
)

// EventDispatcher publishes a committed, staged message to the broker.
// Handlers call it best-effort after commit: a dispatch failure is not a
// handler failure because the outbox relay re-publishes staged messages.
type EventDispatcher interface {
	Dispatch(ctx context.Context, message ports.OutboxMessage) error
}
