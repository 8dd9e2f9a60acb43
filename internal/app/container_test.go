package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	catalogCommands "github.com/felixgeelhaar/mealslot/internal/catalog/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/catalog/infrastructure/cache"
	deliveryCommands "github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	deliveryDomain "github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/mealslot/pkg/config"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

func localConfig() *config.Config {
	return &config.Config{
		AppEnv:         "development",
		DatabaseDriver: "sqlite",
		SQLitePath:     ":memory:",
		LocalMode:      true,
	}
}

func newTestContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewContainer(context.Background(), cfg, logger, WithClock(sharedApplication.FixedClock(testNow)))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewContainer_LocalMode(t *testing.T) {
	c := newTestContainer(t, localConfig())

	assert.Equal(t, database.DriverSQLite, c.DBDriver)
	assert.Nil(t, c.RedisClient)
	assert.Equal(t, deliveryDomain.DefaultTimeSlotCatalog().Strings(), c.Catalog.Strings())

	require.NotNil(t, c.CreateMealHandler)
	require.NotNil(t, c.RescheduleSlotHandler)
	require.NotNil(t, c.ListRescheduleAttemptsHandler)
	require.NotNil(t, c.OutboxProcessor)
	assert.False(t, c.OutboxProcessor.IsRunning())

	health := c.Health.Check(context.Background())
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "database")
}

func TestContainer_MigrateIsIdempotent(t *testing.T) {
	c := newTestContainer(t, localConfig())

	applied, err := c.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestContainer_RescheduleRelaysEventsInProcess(t *testing.T) {
	c := newTestContainer(t, localConfig())
	ctx := context.Background()
	now := c.Clock.Now()

	meal, err := c.CreateMealHandler.Handle(ctx, catalogCommands.CreateMealCommand{Name: "Salmon bowl", Description: "Rice and salmon", Now: now})
	require.NoError(t, err)

	created, err := c.CreateSlotHandler.Handle(ctx, deliveryCommands.CreateSlotCommand{
		Date:          "2024-06-01",
		ScheduledTime: "13:00",
		DeliveryType:  string(deliveryDomain.DeliveryTypeDelivery),
		CustomerName:  "Ada",
		Address:       "1 Main St",
		MealIDs:       []string{meal.Meal.ID().String()},
		Now:           now,
	})
	require.NoError(t, err)

	result, err := c.RescheduleSlotHandler.Handle(ctx, deliveryCommands.RescheduleSlotCommand{
		SlotID:        created.Slot.ID().String(),
		Date:          "2024-06-01",
		ScheduledTime: "13:00",
		Now:           now,
	})
	require.NoError(t, err)
	assert.Equal(t, "17:00", result.Resolved.ScheduledTime.String())

	pending, err := c.OutboxRepo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pending)

	relayed, err := c.OutboxProcessor.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, relayed)

	pending, err = c.OutboxRepo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.Equal(t, uint64(3), c.OutboxProcessor.GetStats().PublishedCount)
}

func TestNewContainer_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := localConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.MealCacheTTL = time.Minute

	c := newTestContainer(t, cfg)

	require.NotNil(t, c.RedisClient)
	assert.IsType(t, &cache.CachedMealRepository{}, c.MealRepo)
	assert.Contains(t, c.Health.Check(context.Background()).Checks, "redis")
}

func TestNewContainer_RedisUnavailableInDevelopment(t *testing.T) {
	cfg := localConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"

	c := newTestContainer(t, cfg)

	assert.Nil(t, c.RedisClient)
	assert.NotContains(t, c.Health.Check(context.Background()).Checks, "redis")
}

func TestNewContainer_RedisRequiredInProduction(t *testing.T) {
	cfg := localConfig()
	cfg.AppEnv = "production"
	cfg.RedisURL = "not a url"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewContainer(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis URL")
}

func TestNewContainer_BadCatalog(t *testing.T) {
	cfg := localConfig()
	path := filepath.Join(t.TempDir(), "slots.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_slots: []\n"), 0o600))
	cfg.TimeSlotCatalogPath = path

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewContainer(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time slot catalog")
}
