package slot

import (
	"fmt"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	"github.com/spf13/cobra"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts [slot-id]",
	Short: "Show the reschedule history of a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		attempts, err := app.ListRescheduleAttemptsHandler.Handle(cmd.Context(), queries.ListRescheduleAttemptsQuery{SlotID: args[0]})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, attempts)
		}
		if len(attempts) == 0 {
			fmt.Fprintln(out, "No reschedule attempts.")
			return nil
		}
		for _, a := range attempts {
			result := "ok"
			if !a.Success {
				result = "failed: " + a.FailureReason
			}
			fmt.Fprintf(out, "%s  %s %s -> %s %s  requested %s %s  %s\n",
				a.AttemptedAt.Format("2006-01-02 15:04:05"),
				a.PreviousDate, a.PreviousTime,
				a.ResolvedDate, a.ResolvedTime,
				a.RequestedDate, a.RequestedTime,
				result,
			)
		}
		return nil
	},
}
