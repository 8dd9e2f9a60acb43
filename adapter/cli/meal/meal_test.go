package meal

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
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLocalModeTestApp creates a test application over in-memory SQLite.
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
		internalApp.WithClock(sharedApplication.FixedClock(time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))))
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

func TestCreateCmd_CreatesMeal(t *testing.T) {
	app := setupLocalModeTestApp(t)

	description = "Rice and salmon"
	require.NoError(t, createCmd.Flags().Set("protein", "35"))
	require.NoError(t, createCmd.Flags().Set("calories", "520"))

	out, err := run(t, createCmd, "Salmon bowl")
	require.NoError(t, err)
	assert.Contains(t, out, "Meal created:")
	assert.Contains(t, out, "name: Salmon bowl")

	meals, err := app.ListMealsHandler.Handle(context.Background(), queries.ListMealsQuery{})
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "Rice and salmon", meals[0].Description)
	assert.Equal(t, 35.0, meals[0].Protein)
	assert.Equal(t, 520.0, meals[0].Calories)
	assert.Zero(t, meals[0].Fat)
}

func TestCreateCmd_RequiresName(t *testing.T) {
	setupLocalModeTestApp(t)
	description = "Something"

	_, err := run(t, createCmd, "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
}

func TestListCmd(t *testing.T) {
	setupLocalModeTestApp(t)

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No meals found.")

	description = "Red lentils"
	_, err = run(t, createCmd, "Lentil dahl")
	require.NoError(t, err)

	out, err = run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Meals (1):")
	assert.Contains(t, out, "Lentil dahl")
}

func TestGetCmd(t *testing.T) {
	app := setupLocalModeTestApp(t)

	description = "Slow-cooked"
	_, err := run(t, createCmd, "Beef chilli")
	require.NoError(t, err)
	meals, err := app.ListMealsHandler.Handle(context.Background(), queries.ListMealsQuery{})
	require.NoError(t, err)
	require.Len(t, meals, 1)

	require.NoError(t, cli.Root().PersistentFlags().Set("json", "true"))
	t.Cleanup(func() { _ = cli.Root().PersistentFlags().Set("json", "false") })

	out, err := run(t, getCmd, meals[0].ID.String())
	require.NoError(t, err)

	var got queries.MealDTO
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Beef chilli", got.Name)
}

func TestGetCmd_NotFound(t *testing.T) {
	setupLocalModeTestApp(t)

	_, err := run(t, getCmd, "00000000-0000-0000-0000-000000000001")
	require.Error(t, err)
	assert.ErrorIs(t, err, sharedDomain.ErrNotFound)
	assert.Contains(t, err.Error(), "Meal not found")
}

func TestCommands_RequireApp(t *testing.T) {
	cli.SetApp(nil)

	_, err := run(t, listCmd)
	assert.ErrorIs(t, err, cli.ErrAppNotInitialized)
}
