package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/mealslot/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Expose the meal catalog and delivery slots as MCP tools over HTTP.

Set MCP_AUTH_TOKEN to require a bearer token on every request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		cfg := *app.Config
		if mcpAddr != "" {
			cfg.MCPAddr = mcpAddr
		}

		err = mcpinternal.Serve(cmd.Context(), &cfg, app, slog.Default())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&mcpAddr, "addr", "", "listen address (default MCP_ADDR)")
}
