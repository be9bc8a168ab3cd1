package ports

import "context"

// EventPublisher hands a message to the wire-level broker.
// Implementations must be safe for concurrent use; publish failures are
// recoverable because staged messages are re-published by the outbox relay.
type EventPublisher interface {
	Publish(ctx context.Context, message OutboxMessage) error
}
