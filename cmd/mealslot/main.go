package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/adapter/cli/mcp"
	"github.com/felixgeelhaar/mealslot/adapter/cli/meal"
	"github.com/felixgeelhaar/mealslot/adapter/cli/slot"
	"github.com/felixgeelhaar/mealslot/internal/app"
	"github.com/felixgeelhaar/mealslot/pkg/config"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.IsDevelopment() {
		logCfg := observability.DefaultLogConfig()
		logCfg.Level = observability.LogLevelDebug
		logCfg.ServiceVersion = cli.Version
		logger = observability.NewLogger(logCfg)
	}
	slog.SetDefault(logger)
	cli.SetLogger(logger)

	// Commands that need storage report ErrAppNotInitialized when this fails
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cliApp = cli.NewApp(container)
	}
	cli.SetApp(cliApp)

	cli.AddCommand(meal.Cmd)
	cli.AddCommand(slot.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
