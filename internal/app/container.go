package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	catalogCommands "github.com/felixgeelhaar/mealslot/internal/catalog/application/commands"
	catalogQueries "github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	catalogDomain "github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/felixgeelhaar/mealslot/internal/catalog/infrastructure/cache"
	deliveryCommands "github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	deliveryQueries "github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/subscribers"
	deliveryDomain "github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	"github.com/felixgeelhaar/mealslot/internal/delivery/infrastructure/slotcatalog"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/mealslot/pkg/config"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  sharedApplication.Clock

	// Infrastructure
	DBConn      database.Connection
	DBDriver    database.Driver
	RedisClient *redis.Client
	Metrics     *observability.PrometheusMetrics
	Health      *observability.HealthRegistry

	// Repositories
	MealRepo    catalogDomain.Repository
	SlotRepo    deliveryDomain.Repository
	AttemptRepo deliveryDomain.AttemptRepository
	OutboxRepo  outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork

	// Scheduling
	Catalog  *deliveryDomain.TimeSlotCatalog
	Resolver *deliveryDomain.Resolver
	Expander *deliveryQueries.MealExpander

	// Meal handlers
	CreateMealHandler *catalogCommands.CreateMealHandler
	ListMealsHandler  *catalogQueries.ListMealsHandler
	GetMealHandler    *catalogQueries.GetMealHandler

	// Delivery slot command handlers
	CreateSlotHandler       *deliveryCommands.CreateSlotHandler
	RescheduleSlotHandler   *deliveryCommands.RescheduleSlotHandler
	UpdateMealEntryHandler  *deliveryCommands.UpdateMealEntryHandler
	ChangeSlotStatusHandler *deliveryCommands.ChangeSlotStatusHandler

	// Delivery slot query handlers
	ListSlotsHandler              *deliveryQueries.ListSlotsHandler
	GetSlotHandler                *deliveryQueries.GetSlotHandler
	FindSlotsForDateHandler       *deliveryQueries.FindSlotsForDateHandler
	ListRescheduleAttemptsHandler *deliveryQueries.ListRescheduleAttemptsHandler

	// Events
	EventPublisher     eventbus.Publisher
	ConsumerRegistry   *eventbus.ConsumerRegistry
	ActivitySubscriber *subscribers.ActivitySubscriber
	OutboxProcessor    *outbox.Processor
}

// Option customises a Container before its handlers are built.
type Option func(*Container)

// WithClock replaces the system clock. Tests use it to pin "now".
func WithClock(clock sharedApplication.Clock) Option {
	return func(c *Container) { c.Clock = clock }
}

// WithPublisher replaces the event publisher chosen from configuration.
func WithPublisher(publisher eventbus.Publisher) Option {
	return func(c *Container) { c.EventPublisher = publisher }
}

// NewContainer creates a new dependency container. An empty DatabaseURL runs
// against local SQLite, which is migrated on startup.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Clock:   sharedApplication.SystemClock{},
		Metrics: observability.NewPrometheusMetrics(),
		Health:  observability.NewHealthRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.Health.Register("database", observability.PingChecker("database", conn.Ping))
	logger.Info("connected to database", "driver", c.DBDriver)

	if c.DBDriver == database.DriverSQLite {
		if _, err := c.Migrate(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := c.buildRepositories(); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	catalog, err := slotcatalog.Load(cfg.TimeSlotCatalogPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load time slot catalog: %w", err)
	}
	c.Catalog = catalog
	c.Resolver = deliveryDomain.NewResolver(catalog)
	logger.Info("time slot catalog loaded", "slots", len(catalog.Slots()))

	c.buildHandlers()

	if err := c.buildEvents(); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"cache", c.RedisClient != nil,
		"local_mode", cfg.LocalMode,
	)
	return c, nil
}

func (c *Container) buildRepositories() error {
	factory := NewRepositoryFactory(c.DBConn)

	mealRepo, err := factory.MealRepository()
	if err != nil {
		return fmt.Errorf("failed to create meal repository: %w", err)
	}
	c.MealRepo = mealRepo

	slotRepo, err := factory.SlotRepository()
	if err != nil {
		return fmt.Errorf("failed to create delivery slot repository: %w", err)
	}
	c.SlotRepo = slotRepo

	attemptRepo, err := factory.AttemptRepository()
	if err != nil {
		return fmt.Errorf("failed to create reschedule attempt repository: %w", err)
	}
	c.AttemptRepo = attemptRepo

	outboxRepo, err := factory.OutboxRepository()
	if err != nil {
		return fmt.Errorf("failed to create outbox repository: %w", err)
	}
	c.OutboxRepo = outboxRepo

	uow, err := factory.UnitOfWork()
	if err != nil {
		return fmt.Errorf("failed to create unit of work: %w", err)
	}
	c.UnitOfWork = uow
	return nil
}

// connectRedis puts the meal cache in front of the meal repository. Redis is
// optional in development: a bad URL or an unreachable server only warns.
func (c *Container) connectRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, meal cache disabled", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, meal cache disabled", "error", err)
		return nil
	}

	cacheCfg := cache.DefaultConfig()
	if c.Config.MealCacheTTL > 0 {
		cacheCfg.TTL = c.Config.MealCacheTTL
	}
	c.RedisClient = client
	c.MealRepo = cache.NewCachedMealRepository(c.MealRepo, client, cacheCfg, c.Metrics, c.Logger)
	c.Health.Register("redis", observability.OptionalPingChecker("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis", "ttl", cacheCfg.TTL)
	return nil
}

func (c *Container) buildHandlers() {
	c.Expander = deliveryQueries.NewMealExpander(c.MealRepo)

	c.CreateMealHandler = catalogCommands.NewCreateMealHandler(c.MealRepo, c.OutboxRepo, c.UnitOfWork)
	c.ListMealsHandler = catalogQueries.NewListMealsHandler(c.MealRepo)
	c.GetMealHandler = catalogQueries.NewGetMealHandler(c.MealRepo)

	c.CreateSlotHandler = deliveryCommands.NewCreateSlotHandler(c.SlotRepo, c.OutboxRepo, c.UnitOfWork)
	c.RescheduleSlotHandler = deliveryCommands.NewRescheduleSlotHandler(c.SlotRepo, c.AttemptRepo, c.OutboxRepo, c.UnitOfWork, c.Resolver)
	c.UpdateMealEntryHandler = deliveryCommands.NewUpdateMealEntryHandler(c.SlotRepo, c.OutboxRepo, c.UnitOfWork)
	c.ChangeSlotStatusHandler = deliveryCommands.NewChangeSlotStatusHandler(c.SlotRepo, c.OutboxRepo, c.UnitOfWork)

	c.ListSlotsHandler = deliveryQueries.NewListSlotsHandler(c.SlotRepo, c.Expander)
	c.GetSlotHandler = deliveryQueries.NewGetSlotHandler(c.SlotRepo, c.Expander)
	c.FindSlotsForDateHandler = deliveryQueries.NewFindSlotsForDateHandler(c.SlotRepo, c.Expander)
	c.ListRescheduleAttemptsHandler = deliveryQueries.NewListRescheduleAttemptsHandler(c.SlotRepo, c.AttemptRepo)
}

// buildEvents wires the consumer registry and the outbox relay. Without
// RabbitMQ the relay feeds the registry in-process.
func (c *Container) buildEvents() error {
	c.ConsumerRegistry = eventbus.NewConsumerRegistry(c.Logger)
	c.ActivitySubscriber = subscribers.NewActivitySubscriber(c.Metrics, c.Logger)
	c.ConsumerRegistry.Register(c.ActivitySubscriber)

	if c.EventPublisher == nil {
		publisher, err := c.newPublisher()
		if err != nil {
			return err
		}
		c.EventPublisher = publisher
	}

	processorCfg := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		processorCfg.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		processorCfg.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		processorCfg.MaxRetries = c.Config.OutboxMaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, c.Logger,
		outbox.WithMetrics(c.Metrics),
		outbox.WithClock(c.Clock.Now),
	)
	return nil
}

func (c *Container) newPublisher() (eventbus.Publisher, error) {
	if c.Config.RabbitMQURL == "" {
		c.Logger.Info("RabbitMQ not configured, relaying events in-process")
		return eventbus.NewLocalBus(c.ConsumerRegistry, c.Logger), nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, relaying events in-process", "error", err)
		return eventbus.NewLocalBus(c.ConsumerRegistry, c.Logger), nil
	}
	return publisher, nil
}

// Migrate applies pending schema migrations and returns their names.
func (c *Container) Migrate(ctx context.Context) ([]string, error) {
	switch conn := c.DBConn.(type) {
	case interface{ DB() *sql.DB }:
		applied, err := migrations.RunSQLiteMigrations(ctx, conn.DB())
		if err != nil {
			return nil, err
		}
		c.logMigrations(applied)
		return applied, nil
	case interface{ Pool() *pgxpool.Pool }:
		applied, err := migrations.RunPostgresMigrations(ctx, conn.Pool())
		if err != nil {
			return nil, err
		}
		c.logMigrations(applied)
		return applied, nil
	default:
		return nil, fmt.Errorf("migrations not supported for %T", c.DBConn)
	}
}

func (c *Container) logMigrations(applied []string) {
	if len(applied) == 0 {
		c.Logger.Debug("schema up to date")
		return
	}
	c.Logger.Info("migrations applied", "count", len(applied), "migrations", applied)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
