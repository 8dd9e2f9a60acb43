package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
)

type mealCreateInput struct {
	Name        string   `json:"name" jsonschema:"required"`
	Description string   `json:"description" jsonschema:"required"`
	Protein     *float64 `json:"protein,omitempty"`
	Fat         *float64 `json:"fat,omitempty"`
	Carbs       *float64 `json:"carbs,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

type mealIDInput struct {
	MealID string `json:"meal_id" jsonschema:"required"`
}

func registerMealTools(srv *mcp.Server, t *toolset) {
	srv.Tool("meal.list").
		Description("List all meals in the catalog").
		Handler(t.listMeals)

	srv.Tool("meal.get").
		Description("Get a meal by ID").
		Handler(t.getMeal)

	srv.Tool("meal.create").
		Description("Add a meal to the catalog").
		Handler(t.createMeal)
}

func (t *toolset) listMeals(ctx context.Context, _ struct{}) ([]queries.MealDTO, error) {
	if t.app.ListMealsHandler == nil {
		return nil, errNoDatabase
	}
	meals, err := t.app.ListMealsHandler.Handle(ctx, queries.ListMealsQuery{})
	return meals, t.publicError(ctx, "meal.list", err)
}

func (t *toolset) getMeal(ctx context.Context, input mealIDInput) (*queries.MealDTO, error) {
	if t.app.GetMealHandler == nil {
		return nil, errNoDatabase
	}
	meal, err := t.app.GetMealHandler.Handle(ctx, queries.GetMealQuery{MealID: input.MealID})
	return meal, t.publicError(ctx, "meal.get", err)
}

func (t *toolset) createMeal(ctx context.Context, input mealCreateInput) (*queries.MealDTO, error) {
	if t.app.CreateMealHandler == nil {
		return nil, errNoDatabase
	}
	result, err := t.app.CreateMealHandler.Handle(ctx, commands.CreateMealCommand{
		Name:        input.Name,
		Description: input.Description,
		Protein:     input.Protein,
		Fat:         input.Fat,
		Carbs:       input.Carbs,
		Calories:    input.Calories,
		ImageURL:    input.ImageURL,
		Now:         t.app.Now(),
	})
	if err != nil {
		return nil, t.publicError(ctx, "meal.create", err)
	}
	dto := queries.ToMealDTO(result.Meal)
	return &dto, nil
}
