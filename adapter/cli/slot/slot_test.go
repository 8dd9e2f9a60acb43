package slot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/felixgeelhaar/mealslot/adapter/cli"
	internalApp "github.com/felixgeelhaar/mealslot/internal/app"
	catalogCommands "github.com/felixgeelhaar/mealslot/internal/catalog/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var afternoon = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

func setupLocalModeTestApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     ":memory:",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger,
		internalApp.WithClock(sharedApplication.FixedClock(afternoon)))
	require.NoError(t, err)

	app := cli.NewApp(container)
	cli.SetApp(app)
	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return app
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func runJSON[T any](t *testing.T, cmd *cobra.Command, args ...string) T {
	t.Helper()
	require.NoError(t, cli.Root().PersistentFlags().Set("json", "true"))
	defer func() { _ = cli.Root().PersistentFlags().Set("json", "false") }()

	out, err := run(t, cmd, args...)
	require.NoError(t, err)

	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func seedMeal(t *testing.T, app *cli.App, name string) string {
	t.Helper()
	res, err := app.CreateMealHandler.Handle(context.Background(), catalogCommands.CreateMealCommand{
		Name: name, Description: name, Now: afternoon,
	})
	require.NoError(t, err)
	return res.Meal.ID().String()
}

func book(t *testing.T, date, at string, meals ...string) queries.SlotDTO {
	t.Helper()
	createDate, createTime = date, at
	createType = string(domain.DeliveryTypeDelivery)
	createCustomer, createAddress = "Ada", "1 Main St"
	createMeals = meals
	return runJSON[queries.SlotDTO](t, createCmd)
}

func TestCreateCmd_BooksSlot(t *testing.T) {
	app := setupLocalModeTestApp(t)
	mealID := seedMeal(t, app, "Salmon bowl")

	slot := book(t, "2024-06-01", "13:00", mealID)

	assert.Equal(t, "13:00", slot.ScheduledTime)
	assert.Equal(t, "scheduled", slot.Status)
	require.Len(t, slot.Meals, 1)
	require.NotNil(t, slot.Meals[0].Meal)
	assert.Equal(t, "Salmon bowl", slot.Meals[0].Meal.Name)
}

func TestCreateCmd_InvalidTime(t *testing.T) {
	setupLocalModeTestApp(t)

	createDate, createTime = "2024-06-01", "25:00"
	createCustomer = "Ada"
	createMeals = nil

	_, err := run(t, createCmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
}

func TestListAndForDate(t *testing.T) {
	setupLocalModeTestApp(t)

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No delivery slots found.")

	book(t, "2024-06-01", "09:00")
	book(t, "2024-06-01", "23:00")
	book(t, "2024-06-02", "00:00")

	out, err = run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Delivery slots (3):")

	sameDay := runJSON[[]queries.SlotDTO](t, forDateCmd, "2024-06-01")
	assert.Len(t, sameDay, 2)

	_, err = run(t, forDateCmd, "June 1st")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid date format")
}

func TestRescheduleCmd_PastRequestMovesToNextCatalogTime(t *testing.T) {
	setupLocalModeTestApp(t)
	slot := book(t, "2024-06-01", "09:00")

	rescheduleDate, rescheduleTime = "2024-06-01", "13:00"
	out, err := run(t, rescheduleCmd, slot.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Delivery slot rescheduled successfully")
	assert.Contains(t, out, "requested: 2024-06-01 13:00")
	assert.Contains(t, out, "resolved:  2024-06-01 17:00")
	assert.Contains(t, out, "moved to the next available time")
}

func TestRescheduleCmd_FutureRequestKept(t *testing.T) {
	setupLocalModeTestApp(t)
	slot := book(t, "2024-06-01", "09:00")

	rescheduleDate, rescheduleTime = "2024-06-02", "10:00"
	got := runJSON[rescheduleOutput](t, rescheduleCmd, slot.ID.String())

	assert.False(t, got.Adjusted)
	assert.Equal(t, "10:00", got.Resolved.ScheduledTime)
	assert.Equal(t, "rescheduled", got.Slot.Status)
	assert.Equal(t, 2, got.Slot.Version)
}

func TestRescheduleCmd_NoSlotLeft(t *testing.T) {
	app := setupLocalModeTestApp(t)
	slot := book(t, "2024-06-01", "09:00")
	app.Clock = sharedApplication.FixedClock(time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC))

	rescheduleDate, rescheduleTime = "2024-06-01", "23:00"
	_, err := run(t, rescheduleCmd, slot.ID.String())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoAvailableSlot)

	attempts := runJSON[[]queries.AttemptDTO](t, attemptsCmd, slot.ID.String())
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
}

func TestUpdateMealCmd_ChangesOnlyThatEntry(t *testing.T) {
	app := setupLocalModeTestApp(t)
	first := seedMeal(t, app, "Salmon bowl")
	second := seedMeal(t, app, "Lentil dahl")
	slot := book(t, "2024-06-01", "19:00", first, second)

	entryStatus, entryMeal = "swapped", ""
	got := runJSON[queries.SlotDTO](t, updateMealCmd, slot.ID.String(), slot.Meals[0].ID.String())

	require.Len(t, got.Meals, 2)
	assert.Equal(t, "swapped", got.Meals[0].Status)
	assert.Equal(t, "scheduled", got.Meals[1].Status)
	assert.Equal(t, slot.Meals[1].MealID, got.Meals[1].MealID)
}

func TestUpdateMealCmd_UnknownEntry(t *testing.T) {
	setupLocalModeTestApp(t)
	slot := book(t, "2024-06-01", "19:00")

	entryStatus, entryMeal = "skipped", ""
	_, err := run(t, updateMealCmd, slot.ID.String(), "00000000-0000-0000-0000-000000000001")
	require.Error(t, err)
	assert.ErrorIs(t, err, sharedDomain.ErrNotFound)
}

func TestStatusCmd_CompletedSlotCannotBeRescheduled(t *testing.T) {
	setupLocalModeTestApp(t)
	slot := book(t, "2024-06-01", "19:00")

	out, err := run(t, statusCmd, slot.ID.String(), "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "is now completed")

	rescheduleDate, rescheduleTime = "2024-06-02", "10:00"
	_, err = run(t, rescheduleCmd, slot.ID.String())
	require.Error(t, err)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
}

func TestAttemptsCmd_Empty(t *testing.T) {
	setupLocalModeTestApp(t)
	slot := book(t, "2024-06-01", "19:00")

	out, err := run(t, attemptsCmd, slot.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "No reschedule attempts.")
}
