package commands_test

import (
	"encoding/json"
	"testing"
	"time"

	"deliveries/internal/core/application/usecases/commands"
	"deliveries/internal/core/domain/model/delivery"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/core/ports"
	"deliveries/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddDeliveryRegistrationCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	aggregate := inProgressDelivery(t)
	occurredAt := time.Now().UTC()
	cmd, _ := commands.NewAddDeliveryRegistrationCommand(
		aggregate.ID(), `{"lat":52.23,"lon":21.01}`, occurredAt, testCorrelation())

	repo := new(MockDeliveryRepository)
	outbox := new(MockOutboxRepository)
	uow := new(MockDeliveryUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("DeliveryRepository").Return(repo).Once()
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	repo.On("Update", mock.Anything, aggregate, 1).Return(nil).Once()
	uow.On("OutboxRepository").Return(outbox).Once()
	outbox.On("Add", mock.Anything, mock.AnythingOfType("ports.OutboxMessage")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	dispatcher := new(MockEventDispatcher)
	var dispatched ports.OutboxMessage
	dispatcher.On("Dispatch", mock.Anything, mock.AnythingOfType("ports.OutboxMessage")).
		Run(func(args mock.Arguments) { dispatched = args.Get(1).(ports.OutboxMessage) }).
		Return(nil).Once()

	h := commands.NewAddDeliveryRegistrationCommandHandler(factory, dispatcher)
	err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, delivery.InProgress, aggregate.Status())
	assert.Equal(t, 2, aggregate.Version())
	require.Len(t, aggregate.Registrations(), 1)

	registration := aggregate.Registrations()[0]
	assert.Equal(t, `{"lat":52.23,"lon":21.01}`, registration.Payload())
	assert.True(t, registration.DeliveryID().IsEqual(aggregate.ID()))

	assert.Equal(t, delivery.EventTypeDeliveryRegistrationAdded, dispatched.EventType)
	var event delivery.DeliveryRegistrationAddedEvent
	require.NoError(t, json.Unmarshal(dispatched.Payload, &event))
	assert.Equal(t, `{"lat":52.23,"lon":21.01}`, event.Payload)

	repo.AssertExpectations(t)
	outbox.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestAddDeliveryRegistrationCommandHandler_Handle_DuplicatesAreDistinct(t *testing.T) {
	ctx := t.Context()
	aggregate := inProgressDelivery(t)
	occurredAt := time.Now().UTC()
	cmd, _ := commands.NewAddDeliveryRegistrationCommand(
		aggregate.ID(), "checkpoint-a", occurredAt, testCorrelation())

	repo := new(MockDeliveryRepository)
	outbox := new(MockOutboxRepository)
	uow := new(MockDeliveryUoW)
	uow.On("Begin", mock.Anything).Return(nil).Times(2)
	uow.On("DeliveryRepository").Return(repo).Times(2)
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Times(2)
	repo.On("Update", mock.Anything, aggregate, 1).Return(nil).Once()
	repo.On("Update", mock.Anything, aggregate, 2).Return(nil).Once()
	uow.On("OutboxRepository").Return(outbox).Times(2)
	outbox.On("Add", mock.Anything, mock.AnythingOfType("ports.OutboxMessage")).Return(nil).Times(2)
	uow.On("Commit", mock.Anything).Return(nil).Times(2)
	uow.On("Rollback", mock.Anything).Return(nil).Times(2)

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Times(2)

	dispatcher := new(MockEventDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.AnythingOfType("ports.OutboxMessage")).Return(nil).Times(2)

	// A redelivered checkpoint is recorded again as its own registration.
	h := commands.NewAddDeliveryRegistrationCommandHandler(factory, dispatcher)
	require.NoError(t, h.Handle(ctx, cmd))
	require.NoError(t, h.Handle(ctx, cmd))

	registrations := aggregate.Registrations()
	require.Len(t, registrations, 2)
	assert.Equal(t, registrations[0].Payload(), registrations[1].Payload())
	assert.False(t, registrations[0].ID().IsEqual(registrations[1].ID()))
	assert.Equal(t, 3, aggregate.Version())
}

func TestAddDeliveryRegistrationCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, _ := commands.NewAddDeliveryRegistrationCommand(
		id, "checkpoint-a", time.Now().UTC(), testCorrelation())

	repo := new(MockDeliveryRepository)
	uow := new(MockDeliveryUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("DeliveryRepository").Return(repo).Once()
	repo.On("Get", mock.Anything, id).Return(nil, errs.NewObjectNotFoundError("delivery", id)).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAddDeliveryRegistrationCommandHandler(factory, new(MockEventDispatcher))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	factory.AssertNumberOfCalls(t, "Create", 1)
}

func TestAddDeliveryRegistrationCommandHandler_Handle_TerminalDelivery(t *testing.T) {
	ctx := t.Context()
	aggregate := inProgressDelivery(t)
	require.NoError(t, aggregate.Complete(*aggregate.StartedAt()))
	cmd, _ := commands.NewAddDeliveryRegistrationCommand(
		aggregate.ID(), "checkpoint-a", time.Now().UTC(), testCorrelation())

	repo := new(MockDeliveryRepository)
	uow := new(MockDeliveryUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("DeliveryRepository").Return(repo).Once()
	repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAddDeliveryRegistrationCommandHandler(factory, new(MockEventDispatcher))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, delivery.ErrInvalidStateTransition)
	assert.Len(t, aggregate.Registrations(), 0)
}

func TestAddDeliveryRegistrationCommandHandler_Handle_ConflictThenSuccess(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, _ := commands.NewAddDeliveryRegistrationCommand(
		id, "checkpoint-a", time.Now().UTC(), testCorrelation())

	stale := freshInProgress(t, id)
	fresh := freshInProgress(t, id)

	repo := new(MockDeliveryRepository)
	outbox := new(MockOutboxRepository)
	uow := new(MockDeliveryUoW)
	uow.On("Begin", ctx).Return(nil).Times(2)
	uow.On("DeliveryRepository").Return(repo).Times(2)
	repo.On("Get", mock.Anything, id).Return(stale, nil).Once()
	repo.On("Get", mock.Anything, id).Return(fresh, nil).Once()
	repo.On("Update", mock.Anything, stale, 1).
		Return(errs.NewVersionConflictError("delivery", 1)).Once()
	repo.On("Update", mock.Anything, fresh, 1).Return(nil).Once()
	uow.On("OutboxRepository").Return(outbox).Once()
	outbox.On("Add", mock.Anything, mock.AnythingOfType("ports.OutboxMessage")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Times(2)

	factory := new(MockDeliveryUoWFactory)
	factory.On("Create").Return(uow).Times(2)

	dispatcher := new(MockEventDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.AnythingOfType("ports.OutboxMessage")).Return(nil).Once()

	h := commands.NewAddDeliveryRegistrationCommandHandler(factory, dispatcher)
	err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	// The retried cycle rebuilt the registration against the reloaded state.
	require.Len(t, fresh.Registrations(), 1)
	assert.Equal(t, 2, fresh.Version())

	repo.AssertExpectations(t)
	factory.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}
