package slot

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the slot command group
var Cmd = &cobra.Command{
	Use:   "slot",
	Short: "Manage delivery slots",
	Long: `Book, list, reschedule, and complete delivery slots.

All dates are YYYY-MM-DD and all times are HH:MM in UTC.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(forDateCmd)
	Cmd.AddCommand(rescheduleCmd)
	Cmd.AddCommand(updateMealCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(attemptsCmd)
}

func statusIcon(status string) string {
	switch status {
	case "completed":
		return "[x]"
	case "cancelled":
		return "[-]"
	case "rescheduled":
		return "[>]"
	default:
		return "[ ]"
	}
}

func printSlot(w io.Writer, s queries.SlotDTO) {
	fmt.Fprintf(w, "%s %s %s %s (%s)\n",
		statusIcon(s.Status), s.Date.Format("2006-01-02"), s.ScheduledTime, s.CustomerName, s.DeliveryType)
	fmt.Fprintf(w, "   ID: %s  status: %s  version: %d\n", s.ID, s.Status, s.Version)
	if s.Address != "" {
		fmt.Fprintf(w, "   Address: %s\n", s.Address)
	}
	for _, entry := range s.Meals {
		name := entry.MealID.String()
		if entry.Meal != nil {
			name = entry.Meal.Name
		}
		fmt.Fprintf(w, "   - %s [%s] entry %s\n", name, entry.Status, entry.ID)
	}
}

func printSlots(cmd *cobra.Command, slots []queries.SlotDTO, empty string) error {
	out := cmd.OutOrStdout()
	if cli.JSONOutput() {
		return cli.PrintJSON(out, slots)
	}
	if len(slots) == 0 {
		fmt.Fprintln(out, empty)
		return nil
	}

	fmt.Fprintf(out, "Delivery slots (%d):\n", len(slots))
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, s := range slots {
		printSlot(out, s)
		fmt.Fprintln(out)
	}
	return nil
}
