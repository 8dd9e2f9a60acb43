package meal

import (
	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:     "get [meal-id]",
	Short:   "Show a meal",
	Aliases: []string{"show"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		meal, err := app.GetMealHandler.Handle(cmd.Context(), queries.GetMealQuery{MealID: args[0]})
		if err != nil {
			return err
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), meal)
		}
		printMeal(cmd.OutOrStdout(), *meal)
		return nil
	},
}
