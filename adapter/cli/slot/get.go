package slot

import (
	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:     "get [slot-id]",
	Short:   "Show a delivery slot",
	Aliases: []string{"show"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		slot, err := app.GetSlotHandler.Handle(cmd.Context(), queries.GetSlotQuery{SlotID: args[0]})
		if err != nil {
			return err
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), slot)
		}
		printSlot(cmd.OutOrStdout(), *slot)
		return nil
	},
}
