package slot

import (
	"fmt"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List delivery slots",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		slots, err := app.ListSlotsHandler.Handle(cmd.Context(), queries.ListSlotsQuery{})
		if err != nil {
			return fmt.Errorf("failed to list delivery slots: %w", err)
		}
		return printSlots(cmd, slots, "No delivery slots found.")
	},
}
