package delivery_test

import (
	"testing"

	"deliveries/internal/core/domain/model/delivery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	testCases := []struct {
		status   delivery.Status
		expected string
	}{
		{delivery.Unknown, "Unknown"},
		{delivery.Pending, "Pending"},
		{delivery.InProgress, "InProgress"},
		{delivery.Completed, "Completed"},
		{delivery.Failed, "Failed"},
		{delivery.Status(42), "Unknown"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.status.String())
	}
}

func TestStatus_Validate(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, s := range []delivery.Status{delivery.Pending, delivery.InProgress, delivery.Completed, delivery.Failed} {
			assert.NoError(t, s.Validate(), s.String())
		}
	})

	t.Run("invalid statuses", func(t *testing.T) {
		for _, s := range []delivery.Status{delivery.Unknown, delivery.Status(42)} {
			assert.Error(t, s.Validate())
		}
	})
}

func TestStatus_Start(t *testing.T) {
	t.Run("pending can start", func(t *testing.T) {
		newStatus, err := delivery.Pending.Start()

		require.NoError(t, err)
		assert.Equal(t, delivery.InProgress, newStatus)
	})

	t.Run("every other status is rejected", func(t *testing.T) {
		for _, s := range []delivery.Status{delivery.InProgress, delivery.Completed, delivery.Failed, delivery.Unknown} {
			_, err := s.Start()

			require.Error(t, err, s.String())
			assert.ErrorIs(t, err, delivery.ErrInvalidStateTransition)
		}
	})
}

func TestStatus_Complete(t *testing.T) {
	t.Run("in progress can complete", func(t *testing.T) {
		newStatus, err := delivery.InProgress.Complete()

		require.NoError(t, err)
		assert.Equal(t, delivery.Completed, newStatus)
	})

	t.Run("every other status is rejected", func(t *testing.T) {
		for _, s := range []delivery.Status{delivery.Pending, delivery.Completed, delivery.Failed, delivery.Unknown} {
			_, err := s.Complete()

			require.Error(t, err, s.String())
			assert.ErrorIs(t, err, delivery.ErrInvalidStateTransition)
		}
	})
}

func TestStatus_Fail(t *testing.T) {
	t.Run("in progress can fail", func(t *testing.T) {
		newStatus, err := delivery.InProgress.Fail()

		require.NoError(t, err)
		assert.Equal(t, delivery.Failed, newStatus)
	})

	t.Run("every other status is rejected", func(t *testing.T) {
		for _, s := range []delivery.Status{delivery.Pending, delivery.Completed, delivery.Failed, delivery.Unknown} {
			_, err := s.Fail()

			require.Error(t, err, s.String())
			assert.ErrorIs(t, err, delivery.ErrInvalidStateTransition)
		}
	})
}

func TestStatus_ValidateAddRegistration(t *testing.T) {
	t.Run("pending and in progress accept registrations", func(t *testing.T) {
		assert.NoError(t, delivery.Pending.ValidateAddRegistration())
		assert.NoError(t, delivery.InProgress.ValidateAddRegistration())
	})

	t.Run("terminal states reject registrations", func(t *testing.T) {
		for _, s := range []delivery.Status{delivery.Completed, delivery.Failed} {
			err := s.ValidateAddRegistration()

			require.Error(t, err, s.String())
			assert.ErrorIs(t, err, delivery.ErrInvalidStateTransition)
		}
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, delivery.Pending.IsTerminal())
	assert.False(t, delivery.InProgress.IsTerminal())
	assert.True(t, delivery.Completed.IsTerminal())
	assert.True(t, delivery.Failed.IsTerminal())
}

func TestInvalidStateTransitionError_NamesStates(t *testing.T) {
	err := delivery.NewInvalidStateTransitionError("complete", delivery.Failed)

	assert.Contains(t, err.Error(), "complete")
	assert.Contains(t, err.Error(), "Failed")
	assert.ErrorIs(t, err, delivery.ErrInvalidStateTransition)
}
