// Package errs provides standardized error types for the deliveries application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ObjectNotFoundError: For when an object cannot be found
//   - VersionConflictError: For optimistic-concurrency write conflicts
//   - ConcurrencyExhaustedError: For when conflict retries ran out
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g. ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// This standardized approach enables error classification with errors.Is at the
// adapter boundary: version conflicts and exhausted retries are transient and
// lead to broker redelivery, while missing objects and invalid values are
// permanent and become rejection events.
package errs
