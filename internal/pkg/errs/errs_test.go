package errs_test

import (
	"errors"
	"testing"

	"deliveries/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("deliveryId", "123")

		assert.Equal(t, "deliveryId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("deliveryId", "123", cause)

		assert.Equal(t, "deliveryId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: deliveryId, ID is: 123 (cause: database connection failed)",
			err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("status")

		assert.Equal(t, "status", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: status", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New("invalid format")
		err := errs.NewValueIsInvalidErrorWithCause("status", cause)

		assert.Equal(t, "status", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is invalid: status (cause: invalid format)", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("sanitize function with newlines", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("hello\nworld")
		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("NewValueIsRequiredError", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("registrationPayload")

		assert.Equal(t, "registrationPayload", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is required: registrationPayload", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("NewValueIsRequiredErrorWithCause", func(t *testing.T) {
		cause := errors.New("missing required field")
		err := errs.NewValueIsRequiredErrorWithCause("registrationPayload", cause)

		assert.Equal(t, "registrationPayload", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is required: registrationPayload (cause: missing required field)", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})
}

func TestVersionConflictError(t *testing.T) {
	t.Run("NewVersionConflictError", func(t *testing.T) {
		err := errs.NewVersionConflictError("delivery", 3)

		assert.Equal(t, "delivery", err.ParamName)
		assert.Equal(t, 3, err.ExpectedVersion)
		require.NoError(t, err.Cause)
		assert.Equal(t, "version conflict: delivery, expected version is: 3", err.Error())
		assert.Equal(t, errs.ErrVersionConflict, err.Unwrap())
	})

	t.Run("NewVersionConflictErrorWithCause", func(t *testing.T) {
		cause := errors.New("duplicated key")
		err := errs.NewVersionConflictErrorWithCause("delivery", 0, cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "version conflict: delivery, expected version is: 0 (cause: duplicated key)", err.Error())
		assert.Equal(t, errs.ErrVersionConflict, err.Unwrap())
	})
}

func TestConcurrencyExhaustedError(t *testing.T) {
	t.Run("NewConcurrencyExhaustedError", func(t *testing.T) {
		err := errs.NewConcurrencyExhaustedError("delivery", 3)

		assert.Equal(t, "delivery", err.ParamName)
		assert.Equal(t, 3, err.Attempts)
		assert.Equal(t, "concurrency retries exhausted: delivery, attempts made: 3", err.Error())
		assert.Equal(t, errs.ErrConcurrencyExhausted, err.Unwrap())
	})

	t.Run("NewConcurrencyExhaustedErrorWithCause", func(t *testing.T) {
		cause := errs.NewVersionConflictError("delivery", 5)
		err := errs.NewConcurrencyExhaustedErrorWithCause("delivery", 3, cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"concurrency retries exhausted: delivery, attempts made: 3 (cause: version conflict: delivery, expected version is: 5)",
			err.Error())
	})
}

func TestSentinelErrors(t *testing.T) {
	t.Run("sentinel errors are defined", func(t *testing.T) {
		require.Error(t, errs.ErrObjectNotFound)
		require.Error(t, errs.ErrValueIsInvalid)
		require.Error(t, errs.ErrValueIsRequired)
		require.Error(t, errs.ErrVersionConflict)
		require.Error(t, errs.ErrConcurrencyExhausted)
	})

	t.Run("error messages match expectations", func(t *testing.T) {
		assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
		assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
		assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
		assert.Equal(t, "version conflict", errs.ErrVersionConflict.Error())
		assert.Equal(t, "concurrency retries exhausted", errs.ErrConcurrencyExhausted.Error())
	})
}

func TestErrorsCanBeUnwrapped(t *testing.T) {
	t.Run("errors.Is works with custom errors", func(t *testing.T) {
		objectNotFoundErr := errs.NewObjectNotFoundError("deliveryId", "123")
		require.ErrorIs(t, objectNotFoundErr, errs.ErrObjectNotFound)

		valueInvalidErr := errs.NewValueIsInvalidError("status")
		require.ErrorIs(t, valueInvalidErr, errs.ErrValueIsInvalid)

		valueRequiredErr := errs.NewValueIsRequiredError("payload")
		require.ErrorIs(t, valueRequiredErr, errs.ErrValueIsRequired)

		versionConflictErr := errs.NewVersionConflictError("delivery", 1)
		require.ErrorIs(t, versionConflictErr, errs.ErrVersionConflict)

		concurrencyExhaustedErr := errs.NewConcurrencyExhaustedError("delivery", 3)
		require.ErrorIs(t, concurrencyExhaustedErr, errs.ErrConcurrencyExhausted)
	})
}
