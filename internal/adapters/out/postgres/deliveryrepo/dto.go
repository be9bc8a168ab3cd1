// Package deliveryrepo provides data transfer objects and mapping functions
// for delivery persistence. It implements the repository pattern for the
// delivery aggregate, handling the conversion between domain entities and
// database rows.
package deliveryrepo

import (
	"time"

	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO represents the database structure for persisting delivery
// aggregates. The version column carries the optimistic-concurrency token
// that guards every update.
type DeliveryDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status        int
	StartedAt     *time.Time
	CompletedAt   *time.Time
	FailedAt      *time.Time
	Version       int
	Registrations []RegistrationDTO `gorm:"foreignKey:DeliveryID;references:ID"`
}

// TableName specifies the database table name for delivery entities.
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// RegistrationDTO represents a persisted delivery checkpoint. The seq column
// is database-assigned and preserves insertion order across reads, which the
// aggregate relies on when it is restored.
type RegistrationDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeliveryID uuid.UUID `gorm:"type:uuid;index"`
	Seq        int64     `gorm:"autoIncrement;uniqueIndex"`
	Payload    string
	OccurredAt time.Time
}

// TableName specifies the database table name for registration entities.
func (RegistrationDTO) TableName() string {
	return "registrations"
}

// fromDomain converts a delivery aggregate to its database representation.
func fromDomain(aggregate *delivery.Delivery) DeliveryDTO {
	registrations := aggregate.Registrations()
	registrationDTOs := make([]RegistrationDTO, 0, len(registrations))
	for _, registration := range registrations {
		registrationDTOs = append(registrationDTOs, RegistrationDTO{
			ID:         registration.ID().Bytes(),
			DeliveryID: registration.DeliveryID().Bytes(),
			Payload:    registration.Payload(),
			OccurredAt: registration.OccurredAt(),
		})
	}

	return DeliveryDTO{
		ID:            aggregate.ID().Bytes(),
		Status:        int(aggregate.Status()),
		StartedAt:     aggregate.StartedAt(),
		CompletedAt:   aggregate.CompletedAt(),
		FailedAt:      aggregate.FailedAt(),
		Version:       aggregate.Version(),
		Registrations: registrationDTOs,
	}
}

// toDomain converts a database DTO to a delivery aggregate, re-running all
// domain validation via RestoreDelivery.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	registrations := make([]delivery.Registration, 0, len(dto.Registrations))
	for _, registrationDTO := range dto.Registrations {
		registration, regErr := toDomainRegistration(registrationDTO)
		if regErr != nil {
			return nil, regErr
		}
		registrations = append(registrations, registration)
	}

	return delivery.RestoreDelivery(
		id,
		delivery.Status(dto.Status),
		registrations,
		dto.StartedAt,
		dto.CompletedAt,
		dto.FailedAt,
		dto.Version,
	)
}

func toDomainRegistration(dto RegistrationDTO) (delivery.Registration, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return delivery.Registration{}, err
	}

	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return delivery.Registration{}, err
	}

	return delivery.RestoreRegistration(id, deliveryID, dto.Payload, dto.OccurredAt)
}
