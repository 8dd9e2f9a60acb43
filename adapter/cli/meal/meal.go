package meal

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the meal command group
var Cmd = &cobra.Command{
	Use:   "meal",
	Short: "Manage the meal catalog",
	Long:  `List, show, and create meals that delivery slots can carry.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
}

func printMeal(w io.Writer, m queries.MealDTO) {
	fmt.Fprintf(w, "%s\n", m.Name)
	fmt.Fprintf(w, "   ID: %s\n", m.ID)
	if m.Description != "" {
		fmt.Fprintf(w, "   %s\n", m.Description)
	}
	fmt.Fprintf(w, "   %.0f kcal | protein %.0fg | fat %.0fg | carbs %.0fg\n", m.Calories, m.Protein, m.Fat, m.Carbs)
}
