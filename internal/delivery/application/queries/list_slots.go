package queries

import (
	"context"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
)

// ListSlotsQuery lists every slot ordered by delivery time.
type ListSlotsQuery struct{}

// QueryName implements sharedApplication.Query.
func (ListSlotsQuery) QueryName() string { return "delivery.list_slots" }

// ListSlotsHandler handles the ListSlotsQuery.
type ListSlotsHandler struct {
	slotRepo domain.Repository
	expander *MealExpander
}

// NewListSlotsHandler creates a new ListSlotsHandler.
func NewListSlotsHandler(slotRepo domain.Repository, expander *MealExpander) *ListSlotsHandler {
	return &ListSlotsHandler{slotRepo: slotRepo, expander: expander}
}

// Handle executes the ListSlotsQuery.
func (h *ListSlotsHandler) Handle(ctx context.Context, _ ListSlotsQuery) ([]SlotDTO, error) {
	slots, err := h.slotRepo.FindAll(ctx)
	if err != nil {
		return nil, sharedDomain.StorageFailure(err)
	}
	return h.expander.ToDTOs(ctx, slots)
}
