package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose meal and delivery data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}
	t := newToolset(deps)

	srv.Resource("mealslot://meals").
		Name("Meals").
		Description("The meal catalog").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			meals, err := t.listMeals(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, meals)
		})

	srv.Resource("mealslot://delivery-slots").
		Name("Delivery slots").
		Description("All delivery slots with their meals").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			slots, err := t.listSlots(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, slots)
		})

	srv.Resource("mealslot://time-slots").
		Name("Time slot catalog").
		Description("Delivery times, in HH:MM UTC, that past reschedule requests snap to").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			slots, err := t.timeSlots(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, slots)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
