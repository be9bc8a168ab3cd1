package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used as classification anchors for errors.Is checks.
var (
	// ErrObjectNotFound indicates that a requested object does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrValueIsInvalid indicates that a provided value failed validation.
	ErrValueIsInvalid = errors.New("value is invalid")

	// ErrValueIsRequired indicates that a required value is missing.
	ErrValueIsRequired = errors.New("value is required")

	// ErrVersionConflict indicates that an optimistic-concurrency write was
	// rejected because the stored version differs from the expected one.
	ErrVersionConflict = errors.New("version conflict")

	// ErrConcurrencyExhausted indicates that the bounded number of retries
	// for a conflicting write has been used up.
	ErrConcurrencyExhausted = errors.New("concurrency retries exhausted")
)

// sanitize removes newlines from values interpolated into error messages so
// that a single error always renders as a single log line.
func sanitize(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, "\n", " "), "\r", " ")
}

// ObjectNotFoundError is returned when an object cannot be located by its
// identifier. Unwraps to ErrObjectNotFound.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without a cause.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping the
// underlying cause, typically a storage-level error.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, sanitize(e.ParamName), sanitize(fmt.Sprintf("%s", e.ID)), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(fmt.Sprintf("%s", e.ID)))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError is returned when a value fails a validation rule.
// Unwraps to ErrValueIsInvalid.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError without a cause.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping the
// validation failure that triggered it.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, sanitize(e.ParamName), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, sanitize(e.ParamName))
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsRequiredError is returned when a required value is absent.
// Unwraps to ErrValueIsRequired.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError without a cause.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping the
// underlying cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, sanitize(e.ParamName), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, sanitize(e.ParamName))
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// VersionConflictError is returned when a write with an expected version does
// not match the stored version. The caller must reload the aggregate and
// retry or fail the command. Unwraps to ErrVersionConflict.
type VersionConflictError struct {
	ParamName       string
	ExpectedVersion int
	Cause           error
}

// NewVersionConflictError creates a VersionConflictError without a cause.
func NewVersionConflictError(paramName string, expectedVersion int) *VersionConflictError {
	return &VersionConflictError{ParamName: paramName, ExpectedVersion: expectedVersion}
}

// NewVersionConflictErrorWithCause creates a VersionConflictError wrapping the
// storage-level error that revealed the conflict.
func NewVersionConflictErrorWithCause(paramName string, expectedVersion int, cause error) *VersionConflictError {
	return &VersionConflictError{ParamName: paramName, ExpectedVersion: expectedVersion, Cause: cause}
}

func (e *VersionConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s, expected version is: %d (cause: %v)",
			ErrVersionConflict, sanitize(e.ParamName), e.ExpectedVersion, e.Cause)
	}
	return fmt.Sprintf("%s: %s, expected version is: %d",
		ErrVersionConflict, sanitize(e.ParamName), e.ExpectedVersion)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}

// ConcurrencyExhaustedError is returned when the bounded load-apply-save retry
// cycle kept hitting version conflicts. Unwraps to ErrConcurrencyExhausted.
type ConcurrencyExhaustedError struct {
	ParamName string
	Attempts  int
	Cause     error
}

// NewConcurrencyExhaustedError creates a ConcurrencyExhaustedError without a cause.
func NewConcurrencyExhaustedError(paramName string, attempts int) *ConcurrencyExhaustedError {
	return &ConcurrencyExhaustedError{ParamName: paramName, Attempts: attempts}
}

// NewConcurrencyExhaustedErrorWithCause creates a ConcurrencyExhaustedError
// wrapping the last conflict seen before giving up.
func NewConcurrencyExhaustedErrorWithCause(paramName string, attempts int, cause error) *ConcurrencyExhaustedError {
	return &ConcurrencyExhaustedError{ParamName: paramName, Attempts: attempts, Cause: cause}
}

func (e *ConcurrencyExhaustedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s, attempts made: %d (cause: %v)",
			ErrConcurrencyExhausted, sanitize(e.ParamName), e.Attempts, e.Cause)
	}
	return fmt.Sprintf("%s: %s, attempts made: %d",
		ErrConcurrencyExhausted, sanitize(e.ParamName), e.Attempts)
}

func (e *ConcurrencyExhaustedError) Unwrap() error {
	return ErrConcurrencyExhausted
}
