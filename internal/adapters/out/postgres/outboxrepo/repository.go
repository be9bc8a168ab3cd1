package outboxrepo

import (
	"context"
	"time"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository implements ports.OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM outbox repository.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add stages a message for publication. Staging an event id that already
// exists is a no-op: a retried handler cycle re-stages the same deterministic
// event and must not duplicate the row.
func (r *GormOutboxRepository) Add(ctx context.Context, message ports.OutboxMessage) error {
	dto := fromMessage(message)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto).Error
}

// GetUndispatched returns up to limit staged messages that have not been
// published yet, oldest first.
func (r *GormOutboxRepository) GetUndispatched(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).
		Where("dispatched_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		message, msgErr := toMessage(dto)
		if msgErr != nil {
			return nil, msgErr
		}
		messages = append(messages, message)
	}

	return messages, nil
}

// MarkDispatched records that the message was handed to the broker.
func (r *GormOutboxRepository) MarkDispatched(ctx context.Context, id kernel.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id = ?", id.Bytes()).
		Update("dispatched_at", &now).Error
}
