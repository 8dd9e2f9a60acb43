package slot

import (
	"fmt"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	"github.com/spf13/cobra"
)

var (
	rescheduleDate string
	rescheduleTime string
)

type rescheduleOutput struct {
	Slot      *queries.SlotDTO `json:"data"`
	Requested scheduleOutput   `json:"requested"`
	Resolved  scheduleOutput   `json:"resolved"`
	Adjusted  bool             `json:"adjusted"`
}

type scheduleOutput struct {
	Date          string `json:"date"`
	ScheduledTime string `json:"scheduledTime"`
}

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule [slot-id]",
	Short: "Reschedule a delivery slot",
	Long: `Move a delivery slot to a new date and time.

A request in the future is kept as given. A request at or before the
current time moves to the next catalog time after now on the requested
date, and fails when no catalog time is left that day.

Examples:
  mealslot slot reschedule <slot-id> --date 2024-06-02 --time 10:00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.RescheduleSlotHandler.Handle(ctx, commands.RescheduleSlotCommand{
			SlotID:        args[0],
			Date:          rescheduleDate,
			ScheduledTime: rescheduleTime,
			Now:           app.Now(),
		})
		if err != nil {
			return err
		}

		dto, err := app.Expander.ToDTO(ctx, result.Slot)
		if err != nil {
			return err
		}
		output := rescheduleOutput{
			Slot: dto,
			Requested: scheduleOutput{
				Date:          result.Requested.Date.String(),
				ScheduledTime: result.Requested.Time.String(),
			},
			Resolved: scheduleOutput{
				Date:          result.Resolved.Date.String(),
				ScheduledTime: result.Resolved.ScheduledTime.String(),
			},
			Adjusted: result.Resolved.Adjusted,
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, output)
		}
		fmt.Fprintln(out, "Delivery slot rescheduled successfully")
		fmt.Fprintf(out, "  requested: %s %s\n", output.Requested.Date, output.Requested.ScheduledTime)
		fmt.Fprintf(out, "  resolved:  %s %s\n", output.Resolved.Date, output.Resolved.ScheduledTime)
		if output.Adjusted {
			fmt.Fprintln(out, "  (moved to the next available time)")
		}
		return nil
	},
}

func init() {
	rescheduleCmd.Flags().StringVar(&rescheduleDate, "date", "", "new date (YYYY-MM-DD)")
	rescheduleCmd.Flags().StringVar(&rescheduleTime, "time", "", "new time (HH:MM)")
}
