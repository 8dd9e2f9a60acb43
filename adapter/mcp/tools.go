package mcp

import (
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mealslot/adapter/cli"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App    *cli.App
	Logger *slog.Logger
}

// toolset holds the handlers behind every tool and resource.
type toolset struct {
	app    *cli.App
	logger *slog.Logger
}

func newToolset(deps ToolDependencies) *toolset {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &toolset{app: deps.App, logger: logger}
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	t := newToolset(deps)
	registerCoreTools(srv, t)
	registerMealTools(srv, t)
	registerSlotTools(srv, t)
	return nil
}
