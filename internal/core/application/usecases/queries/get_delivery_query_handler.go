package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryCache is a read-through cache for delivery read models. The write
// side invalidates entries after publishing an event, so a cached response is
// at worst one event behind the broker.
type DeliveryCache interface {
	// Get returns the cached response and whether the entry was present.
	Get(ctx context.Context, id kernel.UUID) (GetDeliveryQueryResponse, bool, error)

	// Set stores the response under the delivery's identifier.
	Set(ctx context.Context, id kernel.UUID, response GetDeliveryQueryResponse) error
}

// GetDeliveryQueryHandler reads a delivery's current state directly from the
// database, bypassing the aggregate. Responses are cached; cache failures
// degrade to database reads, never to request failures.
type GetDeliveryQueryHandler struct {
	db    *gorm.DB
	cache DeliveryCache
}

// NewGetDeliveryQueryHandler creates a handler for delivery state queries.
// The cache may be nil, in which case every read goes to the database.
func NewGetDeliveryQueryHandler(db *gorm.DB, cache DeliveryCache) GetDeliveryQueryHandler {
	return GetDeliveryQueryHandler{db: db, cache: cache}
}

// Handle executes the query. Returns errs.ErrObjectNotFound when no delivery
// exists for the identifier.
func (h GetDeliveryQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryQuery,
) (GetDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	if h.cache != nil {
		if cached, ok, err := h.cache.Get(ctx, query.DeliveryID()); err == nil && ok {
			return cached, nil
		}
	}

	response, err := h.readDelivery(ctx, query.DeliveryID())
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	response.Registrations, err = h.readRegistrations(ctx, query.DeliveryID())
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	if h.cache != nil {
		// Best effort: a failed cache write only costs the next read.
		_ = h.cache.Set(ctx, query.DeliveryID(), response)
	}

	return response, nil
}

func (h GetDeliveryQueryHandler) readDelivery(
	ctx context.Context,
	deliveryID kernel.UUID,
) (GetDeliveryQueryResponse, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			started_at,
			completed_at,
			failed_at,
			version
		FROM deliveries
		WHERE id = ?
	`, deliveryID.Bytes()).Row()

	var (
		id          uuid.UUID
		status      int
		startedAt   sql.NullTime
		completedAt sql.NullTime
		failedAt    sql.NullTime
		version     int
	)

	err := row.Scan(&id, &status, &startedAt, &completedAt, &failedAt, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetDeliveryQueryResponse{}, errs.NewObjectNotFoundError("delivery", deliveryID.String())
		}
		return GetDeliveryQueryResponse{}, err
	}

	responseID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetDeliveryQueryResponse{}, err
	}

	return GetDeliveryQueryResponse{
		ID:            responseID,
		Status:        delivery.Status(status).String(),
		StartedAt:     nullableTime(startedAt),
		CompletedAt:   nullableTime(completedAt),
		FailedAt:      nullableTime(failedAt),
		Version:       version,
		Registrations: make([]RegistrationResponse, 0),
	}, nil
}

func (h GetDeliveryQueryHandler) readRegistrations(
	ctx context.Context,
	deliveryID kernel.UUID,
) ([]RegistrationResponse, error) {
	registrations := make([]RegistrationResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			payload,
			occurred_at
		FROM registrations
		WHERE delivery_id = ?
		ORDER BY seq
	`, deliveryID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var registration RegistrationResponse
		var id uuid.UUID

		if err = rows.Scan(&id, &registration.Payload, &registration.OccurredAt); err != nil {
			return nil, err
		}

		registration.ID, err = kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}

		registrations = append(registrations, registration)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

func nullableTime(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
