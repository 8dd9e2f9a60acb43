package cli

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/mealslot/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database and cache connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		result := app.Health.Check(cmd.Context())
		if jsonOutput {
			if err := PrintJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
		} else {
			names := make([]string, 0, len(result.Checks))
			for name := range result.Checks {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status: %s\n", result.Status)
			for _, name := range names {
				check := result.Checks[name]
				fmt.Fprintf(out, "  %-10s %-10s %s\n", name, check.Status, check.Message)
			}
		}

		if result.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
