package queries

import (
	"context"

	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
)

// ListMealsQuery lists the whole catalog.
type ListMealsQuery struct{}

// QueryName implements sharedApplication.Query.
func (ListMealsQuery) QueryName() string { return "catalog.list_meals" }

// ListMealsHandler handles the ListMealsQuery.
type ListMealsHandler struct {
	mealRepo domain.Repository
}

// NewListMealsHandler creates a new ListMealsHandler.
func NewListMealsHandler(mealRepo domain.Repository) *ListMealsHandler {
	return &ListMealsHandler{mealRepo: mealRepo}
}

// Handle executes the ListMealsQuery.
func (h *ListMealsHandler) Handle(ctx context.Context, _ ListMealsQuery) ([]MealDTO, error) {
	meals, err := h.mealRepo.FindAll(ctx)
	if err != nil {
		return nil, sharedDomain.StorageFailure(err)
	}

	dtos := make([]MealDTO, 0, len(meals))
	for _, meal := range meals {
		dtos = append(dtos, ToMealDTO(meal))
	}
	return dtos, nil
}
