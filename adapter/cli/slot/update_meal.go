package slot

import (
	"fmt"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	"github.com/spf13/cobra"
)

var (
	entryStatus string
	entryMeal   string
)

var updateMealCmd = &cobra.Command{
	Use:   "update-meal [slot-id] [entry-id]",
	Short: "Update one meal in a delivery slot",
	Long: `Change the status of a meal entry, or swap the meal it refers to.
Other entries in the slot are left untouched.

Statuses: scheduled, skipped, swapped, moved.

Examples:
  mealslot slot update-meal <slot-id> <entry-id> --status swapped --meal <meal-id>`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		update := commands.UpdateMealEntryCommand{
			SlotID:  args[0],
			EntryID: args[1],
			Now:     app.Now(),
		}
		if entryStatus != "" {
			update.Status = &entryStatus
		}
		if entryMeal != "" {
			update.MealID = &entryMeal
		}

		ctx := cmd.Context()
		result, err := app.UpdateMealEntryHandler.Handle(ctx, update)
		if err != nil {
			return err
		}

		dto, err := app.Expander.ToDTO(ctx, result.Slot)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, dto)
		}
		fmt.Fprintf(out, "Meal entry %s is now %s\n", result.Entry.ID(), result.Entry.Status())
		printSlot(out, *dto)
		return nil
	},
}

func init() {
	updateMealCmd.Flags().StringVar(&entryStatus, "status", "", "new entry status")
	updateMealCmd.Flags().StringVar(&entryMeal, "meal", "", "replacement meal ID")
}
