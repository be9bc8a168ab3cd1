package delivery

import (
	"errors"
	"fmt"

	"deliveries/internal/pkg/errs"
)

// ErrInvalidStateTransition is the sentinel for every rejected lifecycle
// transition. Use errors.Is against it to classify the failure as permanent:
// a command applied against the wrong state never succeeds on redelivery.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// InvalidStateTransitionError reports a command that is inapplicable to the
// delivery's current state, naming both the attempted action and the actual
// state. Unwraps to ErrInvalidStateTransition.
type InvalidStateTransitionError struct {
	Action  string
	Current Status
}

// NewInvalidStateTransitionError creates an InvalidStateTransitionError for
// the given attempted action and current status.
func NewInvalidStateTransitionError(action string, current Status) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Action: action, Current: current}
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s delivery in status %s", ErrInvalidStateTransition, e.Action, e.Current)
}

func (e *InvalidStateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// Status represents the lifecycle state of a delivery.
// It implements a state machine with defined transitions so deliveries follow
// the correct workflow regardless of the order commands arrive in.
//
// State transitions:
//
//	Pending ──> InProgress ──┬──> Completed
//	                         └──> Failed
//
// Registrations may be appended while Pending or InProgress. Completed and
// Failed are terminal states with no further transitions.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the implicit initial status before the first StartDelivery
	// command. A Pending delivery has never been persisted.
	Pending

	// InProgress indicates the delivery has been started and checkpoints may
	// be registered against it.
	InProgress

	// Completed indicates the delivery finished successfully. Terminal.
	Completed

	// Failed indicates the delivery was aborted. Terminal.
	Failed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "Unknown",
		Pending:    "Pending",
		InProgress: "InProgress",
		Completed:  "Completed",
		Failed:     "Failed",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "Pending",
		InProgress: "InProgress",
		Completed:  "Completed",
		Failed:     "Failed",
	}
}

// Validate checks if the Status value is valid.
// Valid statuses are Pending, InProgress, Completed, and Failed; Unknown (0)
// and any other values are invalid. Used when reconstructing deliveries from
// persistence to reject corrupt rows.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status. Implements
// fmt.Stringer and is safe to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed
}

// Start transitions the status to InProgress.
//
// Valid transitions:
//   - Pending -> InProgress
//
// A second StartDelivery for the same identifier lands here with InProgress
// (or a terminal state) and is rejected rather than silently overwriting,
// which guards against duplicate command delivery.
//
// Returns (InProgress, nil) on a valid transition, or (0, error) with an
// InvalidStateTransitionError otherwise.
func (s Status) Start() (Status, error) {
	if s != Pending {
		return 0, NewInvalidStateTransitionError("start", s)
	}

	return InProgress, nil
}

// Complete transitions the status to Completed.
//
// Valid transitions:
//   - InProgress -> Completed
//
// Returns (Completed, nil) on a valid transition, or (0, error) with an
// InvalidStateTransitionError otherwise. Completed is terminal.
func (s Status) Complete() (Status, error) {
	if s != InProgress {
		return 0, NewInvalidStateTransitionError("complete", s)
	}

	return Completed, nil
}

// Fail transitions the status to Failed.
//
// Valid transitions:
//   - InProgress -> Failed
//
// Returns (Failed, nil) on a valid transition, or (0, error) with an
// InvalidStateTransitionError otherwise. Failed is terminal.
func (s Status) Fail() (Status, error) {
	if s != InProgress {
		return 0, NewInvalidStateTransitionError("fail", s)
	}

	return Failed, nil
}

// ValidateAddRegistration checks whether a registration may be appended
// without performing any transition. Registrations are accepted while the
// delivery is Pending or InProgress; terminal deliveries are immutable.
func (s Status) ValidateAddRegistration() error {
	if s != Pending && s != InProgress {
		return NewInvalidStateTransitionError("register a checkpoint for", s)
	}
	return nil
}
