package delivery

import (
	"errors"
	"fmt"
	"time"

	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/errs"
)

// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not
// created through NewDelivery or RestoreDelivery. This ensures all deliveries
// are properly validated.
var ErrDeliveryIsNotConstructed = errors.New(
	"Delivery must be created via NewDelivery or RestoreDelivery")

// Delivery represents one shipment's lifecycle from creation through
// completion or failure. It is the aggregate root and the consistency
// boundary: every invariant is enforced by operations that load, mutate, and
// save the delivery as one unit.
//
// Delivery follows these invariants:
//   - Must have a valid unique identifier, immutable once created
//   - Status transitions only along the edges of the Status state machine
//   - Registrations may be appended only while Pending or InProgress, and
//     insertion order is preserved
//   - startedAt/completedAt/failedAt are set exactly once, on the
//     corresponding transition
//   - version increases by exactly one per mutation; the repository persists
//     it with an optimistic-concurrency check against the previous version
//
// The struct uses private fields to ensure encapsulation; it is created
// implicitly on the first StartDelivery command for an identifier and never
// physically deleted by this service.
type Delivery struct {
	// id is the unique identifier for the delivery
	id kernel.UUID

	// status represents the current state in the delivery lifecycle
	status Status

	// registrations is the chronological list of observed checkpoints
	registrations []Registration

	// startedAt/completedAt/failedAt are set once on their transition
	startedAt   *time.Time
	completedAt *time.Time
	failedAt    *time.Time

	// version is the optimistic-concurrency counter. It equals the persisted
	// version after a save and the pending version between a mutation and the
	// save that persists it. A fresh, unsaved delivery has version 0.
	version int

	// isConstructed ensures the delivery was created via a constructor
	isConstructed bool
}

// NewDelivery creates a new Delivery in the implicit Pending state with
// version 0. A Pending delivery exists only in memory: the first persisted
// state is InProgress at version 1, written when StartDelivery is handled.
func NewDelivery(id kernel.UUID) (*Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return &Delivery{
		id:            id,
		status:        Pending,
		isConstructed: true,
	}, nil
}

// RestoreDelivery reconstructs a Delivery from persistence.
// All parts are re-validated so corrupt rows cannot produce an aggregate that
// violates its invariants. Registrations must be passed in insertion order
// and must belong to the delivery being restored.
func RestoreDelivery(
	id kernel.UUID,
	status Status,
	registrations []Registration,
	startedAt, completedAt, failedAt *time.Time,
	version int,
) (*Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause("version",
			fmt.Errorf("%d is not a valid persisted version", version))
	}

	for _, registration := range registrations {
		if err := registration.Validate(); err != nil {
			return nil, err
		}
		if !registration.DeliveryID().IsEqual(id) {
			return nil, errs.NewValueIsInvalidErrorWithCause("registration",
				fmt.Errorf("registration %s belongs to delivery %s", registration.ID(), registration.DeliveryID()))
		}
	}

	return &Delivery{
		id:            id,
		status:        status,
		registrations: registrations,
		startedAt:     startedAt,
		completedAt:   completedAt,
		failedAt:      failedAt,
		version:       version,
		isConstructed: true,
	}, nil
}

// Validate ensures the Delivery instance was properly constructed.
// Returns ErrDeliveryIsNotConstructed otherwise.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}

	return nil
}

// IsEqual compares two deliveries by their unique identifiers.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID {
	return d.id
}

// Status returns the current lifecycle status.
func (d *Delivery) Status() Status {
	return d.status
}

// Registrations returns the observed checkpoints in insertion order.
// The returned slice is a copy; mutating it does not affect the aggregate.
func (d *Delivery) Registrations() []Registration {
	registrations := make([]Registration, len(d.registrations))
	copy(registrations, d.registrations)
	return registrations
}

// StartedAt returns when the delivery was started, or nil before the
// StartDelivery transition.
func (d *Delivery) StartedAt() *time.Time {
	return d.startedAt
}

// CompletedAt returns when the delivery completed, or nil.
func (d *Delivery) CompletedAt() *time.Time {
	return d.completedAt
}

// FailedAt returns when the delivery failed, or nil.
func (d *Delivery) FailedAt() *time.Time {
	return d.failedAt
}

// Version returns the optimistic-concurrency version. See the field comment
// for its meaning between mutation and save.
func (d *Delivery) Version() int {
	return d.version
}

// Start transitions the delivery from Pending to InProgress and records the
// start time.
//
// A delivery that has already been started (or finished) rejects the
// transition with an InvalidStateTransitionError: a duplicate StartDelivery
// is a no-op failure, never a silent overwrite.
func (d *Delivery) Start(at time.Time) error {
	newStatus, err := d.status.Start()
	if err != nil {
		return err
	}

	d.status = newStatus
	startedAt := at
	d.startedAt = &startedAt
	d.version++
	return nil
}

// Complete transitions the delivery from InProgress to Completed and records
// the completion time. Completed is terminal.
func (d *Delivery) Complete(at time.Time) error {
	newStatus, err := d.status.Complete()
	if err != nil {
		return err
	}

	d.status = newStatus
	completedAt := at
	d.completedAt = &completedAt
	d.version++
	return nil
}

// Fail transitions the delivery from InProgress to Failed and records the
// failure time. Failed is terminal.
func (d *Delivery) Fail(at time.Time) error {
	newStatus, err := d.status.Fail()
	if err != nil {
		return err
	}

	d.status = newStatus
	failedAt := at
	d.failedAt = &failedAt
	d.version++
	return nil
}

// AddRegistration appends a checkpoint to the delivery.
//
// The registration must be constructed, must reference this delivery, and the
// delivery must not be in a terminal state. Duplicate redeliveries of the
// same checkpoint are accepted as distinct registrations: they are
// append-only observations and two identical scans are legitimately two
// events.
func (d *Delivery) AddRegistration(registration Registration) error {
	if err := registration.Validate(); err != nil {
		return err
	}

	if !registration.DeliveryID().IsEqual(d.id) {
		return errs.NewValueIsInvalidErrorWithCause("registration",
			fmt.Errorf("registration %s belongs to delivery %s", registration.ID(), registration.DeliveryID()))
	}

	if err := d.status.ValidateAddRegistration(); err != nil {
		return err
	}

	d.registrations = append(d.registrations, registration)
	d.version++
	return nil
}
