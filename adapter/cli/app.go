package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/app"
	catalogCommands "github.com/felixgeelhaar/mealslot/internal/catalog/application/commands"
	catalogQueries "github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	deliveryCommands "github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	deliveryQueries "github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	deliveryDomain "github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/mealslot/pkg/config"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
)

// ErrAppNotInitialized is returned by commands that need the database.
var ErrAppNotInitialized = errors.New("application not initialized - database connection required")

// Migrator applies schema migrations.
type Migrator interface {
	Migrate(ctx context.Context) ([]string, error)
}

// App holds the CLI application dependencies.
type App struct {
	Config *config.Config
	Clock  sharedApplication.Clock

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
	Expander                      *deliveryQueries.MealExpander
	Catalog                       *deliveryDomain.TimeSlotCatalog

	// Operations
	Migrator        Migrator
	OutboxProcessor *outbox.Processor
	Health          *observability.HealthRegistry
	Metrics         observability.Metrics
	MetricsHandler  http.Handler
}

// NewApp creates a CLI application from a wired container.
func NewApp(c *app.Container) *App {
	return &App{
		Config:                        c.Config,
		Clock:                         c.Clock,
		CreateMealHandler:             c.CreateMealHandler,
		ListMealsHandler:              c.ListMealsHandler,
		GetMealHandler:                c.GetMealHandler,
		CreateSlotHandler:             c.CreateSlotHandler,
		RescheduleSlotHandler:         c.RescheduleSlotHandler,
		UpdateMealEntryHandler:        c.UpdateMealEntryHandler,
		ChangeSlotStatusHandler:       c.ChangeSlotStatusHandler,
		ListSlotsHandler:              c.ListSlotsHandler,
		GetSlotHandler:                c.GetSlotHandler,
		FindSlotsForDateHandler:       c.FindSlotsForDateHandler,
		ListRescheduleAttemptsHandler: c.ListRescheduleAttemptsHandler,
		Expander:                      c.Expander,
		Catalog:                       c.Catalog,
		Migrator:                      c,
		OutboxProcessor:               c.OutboxProcessor,
		Health:                        c.Health,
		Metrics:                       c.Metrics,
		MetricsHandler:                c.Metrics.Handler(),
	}
}

// Now returns the instant a command runs at. Commands read it once.
func (a *App) Now() time.Time {
	if a.Clock == nil {
		return sharedApplication.SystemClock{}.Now()
	}
	return a.Clock.Now()
}

var currentApp *App

// SetApp sets the current CLI application.
func SetApp(a *App) {
	currentApp = a
}

// GetApp returns the current CLI application.
func GetApp() *App {
	return currentApp
}
