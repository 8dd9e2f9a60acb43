package meal

import (
	"fmt"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	"github.com/spf13/cobra"
)

var (
	description string
	imageURL    string
	protein     float64
	fat         float64
	carbs       float64
	calories    float64
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a meal",
	Long: `Create a meal. Macros are optional and default to zero.

Examples:
  mealslot meal create "Salmon bowl"
  mealslot meal create "Salmon bowl" --protein 35 --fat 18 --carbs 50 --calories 520`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		createMeal := commands.CreateMealCommand{
			Name:        args[0],
			Description: description,
			ImageURL:    imageURL,
			Now:         app.Now(),
		}
		flags := cmd.Flags()
		if flags.Changed("protein") {
			createMeal.Protein = &protein
		}
		if flags.Changed("fat") {
			createMeal.Fat = &fat
		}
		if flags.Changed("carbs") {
			createMeal.Carbs = &carbs
		}
		if flags.Changed("calories") {
			createMeal.Calories = &calories
		}

		result, err := app.CreateMealHandler.Handle(cmd.Context(), createMeal)
		if err != nil {
			return fmt.Errorf("failed to create meal: %w", err)
		}

		dto := queries.ToMealDTO(result.Meal)
		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, dto)
		}
		fmt.Fprintf(out, "Meal created: %s\n", dto.ID)
		fmt.Fprintf(out, "  name: %s\n", dto.Name)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&description, "description", "", "meal description")
	createCmd.Flags().StringVar(&imageURL, "image-url", "", "image URL")
	createCmd.Flags().Float64Var(&protein, "protein", 0, "protein in grams")
	createCmd.Flags().Float64Var(&fat, "fat", 0, "fat in grams")
	createCmd.Flags().Float64Var(&carbs, "carbs", 0, "carbohydrates in grams")
	createCmd.Flags().Float64Var(&calories, "calories", 0, "energy in kcal")
}
