package cmd

import (
	"log/slog"

	"deliveries/internal/adapters/out/postgres"
	"deliveries/internal/adapters/out/redis"
	"deliveries/internal/core/application/services"
	"deliveries/internal/core/application/usecases/commands"
	"deliveries/internal/core/application/usecases/queries"
	"deliveries/internal/core/ports"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters into the application's handlers. It owns no
// lifecycle; main opens and closes the underlying connections.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	dispatcher *services.OutboxDispatcher
	cache      *redis.DeliveryCache
}

// NewCompositionRoot creates the root for the given connections. The cache is
// optional; pass nil to serve every query from the database.
func NewCompositionRoot(
	_ Config,
	gormDB *gorm.DB,
	publisher ports.EventPublisher,
	cache *redis.DeliveryCache,
	logger *slog.Logger,
) CompositionRoot {
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)

	// A typed nil pointer must not reach the interface fields because the
	// downstream nil checks compare against the nil interface.
	var invalidator services.DeliveryCacheInvalidator
	if cache != nil {
		invalidator = cache
	}

	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: uowFactory,
		dispatcher: services.NewOutboxDispatcher(publisher, uowFactory, invalidator, logger),
		cache:      cache,
	}
}

func (c *CompositionRoot) CreateStartDeliveryCommandHandler() commands.StartDeliveryCommandHandler {
	return commands.NewStartDeliveryCommandHandler(c.deliveryUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	return commands.NewCompleteDeliveryCommandHandler(c.deliveryUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateFailDeliveryCommandHandler() commands.FailDeliveryCommandHandler {
	return commands.NewFailDeliveryCommandHandler(c.deliveryUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateAddDeliveryRegistrationCommandHandler() commands.AddDeliveryRegistrationCommandHandler {
	return commands.NewAddDeliveryRegistrationCommandHandler(c.deliveryUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	var cache queries.DeliveryCache
	if c.cache != nil {
		cache = c.cache
	}
	return queries.NewGetDeliveryQueryHandler(c.gormDB, cache)
}

// CreateEventDispatcher returns the shared outbox dispatcher, used both
// inline by the command handlers and by the relay job.
func (c *CompositionRoot) CreateEventDispatcher() *services.OutboxDispatcher {
	return c.dispatcher
}

func (c *CompositionRoot) deliveryUoWFactory() commands.DeliveryUoWFactory {
	return FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
}

type FuncDeliveryUoWFactory func() commands.DeliveryUoW

func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}
