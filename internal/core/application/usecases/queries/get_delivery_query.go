package queries

import (
	"errors"
	"time"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/guard"
)

var ErrGetDeliveryQueryIsNotConstructed = errors.New(
	"GetDeliveryQuery must be created via NewGetDeliveryQuery constructor",
)

// GetDeliveryQuery retrieves the current state of a single delivery,
// including its registrations in insertion order.
//
// Example:
//
//	query, err := NewGetDeliveryQuery(deliveryID)
//	if err != nil {
//	    return fmt.Errorf("invalid delivery id: %w", err)
//	}
//
//	handler := NewGetDeliveryQueryHandler(db, cache)
//	state, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get delivery: %w", err)
//	}
//
//	fmt.Printf("Delivery %s is %s\n", state.ID, state.Status)
type GetDeliveryQuery struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDeliveryQuery creates a query for one delivery's state.
// Validates that the delivery identifier is set.
func NewGetDeliveryQuery(deliveryID kernel.UUID) (GetDeliveryQuery, error) {
	if err := deliveryID.Validate(); err != nil {
		return GetDeliveryQuery{}, err
	}

	return GetDeliveryQuery{
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryQueryIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to read.
func (q GetDeliveryQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

// GetDeliveryQueryResponse is the read model for a delivery. It is shaped for
// transport: status as its wire string, registrations already ordered.
type GetDeliveryQueryResponse struct {
	ID            kernel.UUID            `json:"id"`
	Status        string                 `json:"status"`
	StartedAt     *time.Time             `json:"startedAt,omitempty"`
	CompletedAt   *time.Time             `json:"completedAt,omitempty"`
	FailedAt      *time.Time             `json:"failedAt,omitempty"`
	Version       int                    `json:"version"`
	Registrations []RegistrationResponse `json:"registrations"`
}

// RegistrationResponse is the read model for a single checkpoint.
type RegistrationResponse struct {
	ID         kernel.UUID `json:"id"`
	Payload    string      `json:"payload"`
	OccurredAt time.Time   `json:"occurredAt"`
}
