package slot

import (
	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	"github.com/spf13/cobra"
)

var forDateCmd = &cobra.Command{
	Use:   "for-date [date]",
	Short: "List delivery slots on a UTC day",
	Long: `List the slots whose delivery instant falls inside the given UTC day,
from 00:00:00.000 to 23:59:59.999 inclusive.

Examples:
  mealslot slot for-date 2024-06-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		slots, err := app.FindSlotsForDateHandler.Handle(cmd.Context(), queries.FindSlotsForDateQuery{Date: args[0]})
		if err != nil {
			return err
		}
		return printSlots(cmd, slots, "No delivery slots on "+args[0]+".")
	},
}
