package queries

import (
	"context"

	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
)

// MsgMealNotFound is reported when a meal does not exist.
const MsgMealNotFound = "Meal not found"

// GetMealQuery fetches one meal. MealID is the raw identifier so malformed
// IDs are reported the same way as unknown ones.
type GetMealQuery struct {
	MealID string
}

// QueryName implements sharedApplication.Query.
func (GetMealQuery) QueryName() string { return "catalog.get_meal" }

// GetMealHandler handles the GetMealQuery.
type GetMealHandler struct {
	mealRepo domain.Repository
}

// NewGetMealHandler creates a new GetMealHandler.
func NewGetMealHandler(mealRepo domain.Repository) *GetMealHandler {
	return &GetMealHandler{mealRepo: mealRepo}
}

// Handle executes the GetMealQuery.
func (h *GetMealHandler) Handle(ctx context.Context, query GetMealQuery) (*MealDTO, error) {
	id, err := uuid.Parse(query.MealID)
	if err != nil {
		return nil, sharedDomain.NotFound(MsgMealNotFound)
	}

	meal, err := h.mealRepo.FindByID(ctx, id)
	if err != nil {
		return nil, sharedDomain.StorageFailure(err)
	}
	if meal == nil {
		return nil, sharedDomain.NotFound(MsgMealNotFound)
	}

	dto := ToMealDTO(meal)
	return &dto, nil
}
