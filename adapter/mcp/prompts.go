package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common delivery workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("reschedule_delivery").
		Description("Walk a customer's delivery slot to a new date and time, explaining any adjustment.").
		Argument("slot_id", "ID of the delivery slot to move", true).
		Argument("date", "Requested date (YYYY-MM-DD)", true).
		Argument("time", "Requested time (HH:MM, UTC)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			slotID := args["slot_id"]
			date := args["date"]
			requested := args["time"]
			if requested == "" {
				requested = "the customer's preferred time"
			}

			return &mcp.PromptResult{
				Description: "Reschedule a delivery",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Reschedule delivery slot %s to %s at %s.

1. Read the slot with slot.get and confirm it is not completed or cancelled.
2. Check the available times with the mealslot://time-slots resource.
3. Call slot.reschedule with the date and time.

If the result is adjusted, tell the customer the time they asked for has
passed and which time the delivery moved to. If no time is left that day,
suggest the first catalog time on the following day instead.`, slotID, date, requested),
						},
					},
				},
			}, nil
		})

	srv.Prompt("daily_deliveries").
		Description("Summarize the deliveries planned for one day.").
		Argument("date", "Day to review (YYYY-MM-DD)", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Daily delivery review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`List the delivery slots for %s using slot.for_date.

Group them by scheduled time and delivery type. Point out slots that were
rescheduled, and any meal entries that were skipped or swapped.`, args["date"]),
						},
					},
				},
			}, nil
		})

	return nil
}
