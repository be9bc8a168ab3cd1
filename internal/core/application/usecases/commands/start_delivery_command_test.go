package commands_test

import (
	"testing"

	"deliveries/internal/core/application/usecases/commands"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/correlation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartDeliveryCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	corr := correlation.New("corr-1", "cause-1")

	cmd, err := commands.NewStartDeliveryCommand(id, corr)
	require.NoError(t, err)
	assert.Equal(t, id, cmd.DeliveryID())
	assert.Equal(t, "corr-1", cmd.Correlation().CorrelationID())
	assert.Equal(t, "cause-1", cmd.Correlation().CausationID())
	require.NoError(t, cmd.Validate())
}

func TestNewStartDeliveryCommand_ZeroCorrelationIsAccepted(t *testing.T) {
	cmd, err := commands.NewStartDeliveryCommand(kernel.NewUUID(), correlation.Context{})
	require.NoError(t, err)
	assert.True(t, cmd.Correlation().IsZero())
}

func TestNewStartDeliveryCommand_InvalidDeliveryID(t *testing.T) {
	_, err := commands.NewStartDeliveryCommand(kernel.UUID{}, correlation.Context{})
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestStartDeliveryCommand_Validate_NotConstructed(t *testing.T) {
	cmd := commands.StartDeliveryCommand{}
	err := cmd.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrStartDeliveryCommandIsNotConstructed)
}
