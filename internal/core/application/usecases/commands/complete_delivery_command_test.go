package commands_test

import (
	"testing"

	"deliveries/internal/core/application/usecases/commands"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/correlation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompleteDeliveryCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	cmd, err := commands.NewCompleteDeliveryCommand(id, correlation.New("corr-1", "cause-1"))
	require.NoError(t, err)
	assert.Equal(t, id, cmd.DeliveryID())
	require.NoError(t, cmd.Validate())
}

func TestNewCompleteDeliveryCommand_InvalidDeliveryID(t *testing.T) {
	_, err := commands.NewCompleteDeliveryCommand(kernel.UUID{}, correlation.Context{})
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestCompleteDeliveryCommand_Validate_NotConstructed(t *testing.T) {
	cmd := commands.CompleteDeliveryCommand{}
	err := cmd.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrCompleteDeliveryCommandIsNotConstructed)
}
