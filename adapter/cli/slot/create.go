package slot

import (
	"fmt"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	"github.com/spf13/cobra"
)

var (
	createDate     string
	createTime     string
	createType     string
	createCustomer string
	createAddress  string
	createMeals    []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Book a delivery slot",
	Long: `Book a delivery slot for a customer.

Examples:
  mealslot slot create --date 2024-06-01 --time 13:00 --customer "Ada" --address "1 Main St" --meal <meal-id>
  mealslot slot create --date 2024-06-01 --time 17:00 --type Pickup --customer "Ada"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.CreateSlotHandler.Handle(ctx, commands.CreateSlotCommand{
			Date:          createDate,
			ScheduledTime: createTime,
			DeliveryType:  createType,
			CustomerName:  createCustomer,
			Address:       createAddress,
			MealIDs:       createMeals,
			Now:           app.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create delivery slot: %w", err)
		}

		dto, err := app.Expander.ToDTO(ctx, result.Slot)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, dto)
		}
		fmt.Fprintf(out, "Delivery slot created: %s\n", dto.ID)
		printSlot(out, *dto)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createDate, "date", "", "delivery date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&createTime, "time", "", "delivery time (HH:MM)")
	createCmd.Flags().StringVar(&createType, "type", string(domain.DeliveryTypeDelivery), "Delivery or Pickup")
	createCmd.Flags().StringVar(&createCustomer, "customer", "", "customer name")
	createCmd.Flags().StringVar(&createAddress, "address", "", "delivery address")
	createCmd.Flags().StringSliceVar(&createMeals, "meal", nil, "meal ID, repeatable")
	_ = createCmd.MarkFlagRequired("date")
	_ = createCmd.MarkFlagRequired("time")
	_ = createCmd.MarkFlagRequired("customer")
}
