package deliveryrepo

import (
	"context"
	"errors"

	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDeliveryRepository implements ports.DeliveryRepository using GORM.
//
// The optimistic-concurrency contract rests on two database guarantees:
// inserts are guarded by the primary key, so a concurrent Add for the same
// identifier surfaces as a duplicate key; updates are guarded by a
// WHERE version = ? predicate, so a stale writer matches zero rows. Both
// outcomes map to errs.ErrVersionConflict.
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GORM delivery repository.
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Add saves a brand-new delivery to the database.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Another writer created the delivery first. Reported as a
			// version conflict so the caller reloads and sees the winner.
			return errs.NewVersionConflictErrorWithCause("delivery", aggregate.Version(), err)
		}
		return err
	}

	return nil
}

// Update saves changes to an existing delivery. The write succeeds only when
// the stored version still equals expectedVersion; otherwise nothing changes
// and errs.ErrVersionConflict is returned.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery, expectedVersion int) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	result := r.db.WithContext(ctx).
		Model(&DeliveryDTO{}).
		Where("id = ? AND version = ?", dto.ID, expectedVersion).
		Updates(map[string]any{
			"status":       dto.Status,
			"started_at":   dto.StartedAt,
			"completed_at": dto.CompletedAt,
			"failed_at":    dto.FailedAt,
			"version":      dto.Version,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionConflictError("delivery", expectedVersion)
	}

	// Registrations are append-only; rows that already exist are left alone.
	if len(dto.Registrations) > 0 {
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&dto.Registrations).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// Get retrieves a delivery by ID with its registrations in insertion order.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryDTO
	err := r.db.WithContext(ctx).
		Preload("Registrations", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
