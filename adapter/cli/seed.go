package cli

import (
	_ "embed"
	"fmt"

	"github.com/felixgeelhaar/mealslot/internal/catalog/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/security"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed seed_meals.yaml
var defaultSeed []byte

type seedFile struct {
	Meals []seedMeal `yaml:"meals"`
}

type seedMeal struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Protein     *float64 `yaml:"protein"`
	Fat         *float64 `yaml:"fat"`
	Carbs       *float64 `yaml:"carbs"`
	Calories    *float64 `yaml:"calories"`
	ImageURL    string   `yaml:"image_url"`
}

var seedPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a starter meal catalog",
	Long: `Create the starter meals. Meals whose name already exists are skipped,
so running seed twice is harmless.

Examples:
  mealslot seed
  mealslot seed --file meals.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		if app.CreateMealHandler == nil || app.ListMealsHandler == nil {
			return ErrAppNotInitialized
		}

		data := defaultSeed
		if seedPath != "" {
			if data, err = security.ReadFile(seedPath); err != nil {
				return fmt.Errorf("failed to read seed file: %w", err)
			}
		}

		var file seedFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse seed file: %w", err)
		}

		ctx := cmd.Context()
		existing, err := app.ListMealsHandler.Handle(ctx, queries.ListMealsQuery{})
		if err != nil {
			return fmt.Errorf("failed to list meals: %w", err)
		}
		known := make(map[string]bool, len(existing))
		for _, m := range existing {
			known[m.Name] = true
		}

		now := app.Now()
		out := cmd.OutOrStdout()
		created := 0
		for _, m := range file.Meals {
			if known[m.Name] {
				continue
			}
			if _, err := app.CreateMealHandler.Handle(ctx, commands.CreateMealCommand{
				Name:        m.Name,
				Description: m.Description,
				Protein:     m.Protein,
				Fat:         m.Fat,
				Carbs:       m.Carbs,
				Calories:    m.Calories,
				ImageURL:    m.ImageURL,
				Now:         now,
			}); err != nil {
				return fmt.Errorf("failed to create meal %q: %w", m.Name, err)
			}
			known[m.Name] = true
			created++
		}

		fmt.Fprintf(out, "Seeded %d meals (%d already present).\n", created, len(file.Meals)-created)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedPath, "file", "f", "", "YAML file with a meals list (defaults to the built-in catalog)")
	rootCmd.AddCommand(seedCmd)
}
