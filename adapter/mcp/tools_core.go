package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
)

type timeSlotsOutput struct {
	TimeSlots []string `json:"time_slots"`
}

func registerCoreTools(srv *mcp.Server, t *toolset) {
	srv.Tool("cli.health").
		Description("Check database and cache connectivity").
		Handler(t.health)

	srv.Tool("cli.version").
		Description("Get version information").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{
				"version":   cli.Version,
				"commit":    cli.Commit,
				"buildDate": cli.BuildDate,
			}, nil
		})

	srv.Tool("slot.time_slots").
		Description("List the catalog of delivery times, in HH:MM UTC, that past reschedule requests snap to").
		Handler(t.timeSlots)
}

func (t *toolset) health(ctx context.Context, _ struct{}) (*observability.OverallHealth, error) {
	if t.app.Health == nil {
		return nil, errNoDatabase
	}
	result := t.app.Health.Check(ctx)
	return &result, nil
}

func (t *toolset) timeSlots(_ context.Context, _ struct{}) (*timeSlotsOutput, error) {
	if t.app.Catalog == nil {
		return nil, errNoDatabase
	}
	return &timeSlotsOutput{TimeSlots: t.app.Catalog.Strings()}, nil
}
