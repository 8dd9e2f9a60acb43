package meal

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List meals",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		meals, err := app.ListMealsHandler.Handle(cmd.Context(), queries.ListMealsQuery{})
		if err != nil {
			return fmt.Errorf("failed to list meals: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, meals)
		}
		if len(meals) == 0 {
			fmt.Fprintln(out, "No meals found.")
			return nil
		}

		fmt.Fprintf(out, "Meals (%d):\n", len(meals))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, m := range meals {
			printMeal(out, m)
			fmt.Fprintln(out)
		}
		return nil
	},
}
