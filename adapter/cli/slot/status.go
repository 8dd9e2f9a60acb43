package slot

import (
	"fmt"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:       "status [slot-id] [completed|cancelled]",
	Short:     "Complete or cancel a delivery slot",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"completed", "cancelled"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		slot, err := app.ChangeSlotStatusHandler.Handle(ctx, commands.ChangeSlotStatusCommand{
			SlotID: args[0],
			Status: args[1],
			Now:    app.Now(),
		})
		if err != nil {
			return err
		}

		dto, err := app.Expander.ToDTO(ctx, slot)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, dto)
		}
		fmt.Fprintf(out, "Delivery slot %s is now %s\n", dto.ID, dto.Status)
		return nil
	},
}
