package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/mealslot/adapter/api"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr string
	noRelay   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Routes are served at the root and mirrored under /api.

Unless --no-relay is given (or OUTBOX_PROCESSOR_ENABLED=false), the outbox
relay runs in this process too. Disable it when a worker is deployed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		cfg := api.DefaultServerConfig()
		if app.Config != nil {
			cfg.Addr = app.Config.HTTPAddr
			cfg.ReadTimeout = app.Config.HTTPReadTimeout
			cfg.WriteTimeout = app.Config.HTTPWriteTimeout
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		server := NewAPIServer(app, cfg)

		relay := !noRelay && (app.Config == nil || app.Config.OutboxProcessorEnabled)
		if relay && app.OutboxProcessor != nil {
			app.OutboxProcessor.Start(ctx)
			defer app.OutboxProcessor.Stop()
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("API server failed: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

// NewAPIServer builds the HTTP API over the application's handlers.
func NewAPIServer(app *App, cfg api.ServerConfig) *api.Server {
	l := logger
	if l == nil {
		l = slog.Default()
	}
	return api.NewServer(cfg, api.ServerDeps{
		Meals: api.NewMealHandler(api.MealHandlerConfig{
			ListMeals:  app.ListMealsHandler,
			GetMeal:    app.GetMealHandler,
			CreateMeal: app.CreateMealHandler,
			Clock:      app.Clock,
			Logger:     l,
		}),
		Slots: api.NewSlotHandler(api.SlotHandlerConfig{
			ListSlots:              app.ListSlotsHandler,
			GetSlot:                app.GetSlotHandler,
			FindSlotsForDate:       app.FindSlotsForDateHandler,
			ListRescheduleAttempts: app.ListRescheduleAttemptsHandler,
			CreateSlot:             app.CreateSlotHandler,
			RescheduleSlot:         app.RescheduleSlotHandler,
			UpdateMealEntry:        app.UpdateMealEntryHandler,
			ChangeSlotStatus:       app.ChangeSlotStatusHandler,
			Expander:               app.Expander,
			Clock:                  app.Clock,
			Logger:                 l,
		}),
		Health:         app.Health,
		Metrics:        app.Metrics,
		MetricsHandler: app.MetricsHandler,
		Logger:         l,
	})
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&noRelay, "no-relay", false, "do not relay outbox events from this process")
	rootCmd.AddCommand(serveCmd)
}
