package queries

import (
	"context"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
)

// GetSlotQuery fetches one slot by its raw identifier.
type GetSlotQuery struct {
	SlotID string
}

// QueryName implements sharedApplication.Query.
func (GetSlotQuery) QueryName() string { return "delivery.get_slot" }

// GetSlotHandler handles the GetSlotQuery.
type GetSlotHandler struct {
	slotRepo domain.Repository
	expander *MealExpander
}

// NewGetSlotHandler creates a new GetSlotHandler.
func NewGetSlotHandler(slotRepo domain.Repository, expander *MealExpander) *GetSlotHandler {
	return &GetSlotHandler{slotRepo: slotRepo, expander: expander}
}

// Handle executes the GetSlotQuery.
func (h *GetSlotHandler) Handle(ctx context.Context, query GetSlotQuery) (*SlotDTO, error) {
	id, err := uuid.Parse(query.SlotID)
	if err != nil {
		return nil, sharedDomain.NotFound(domain.MsgSlotNotFound)
	}

	slot, err := h.slotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, sharedDomain.StorageFailure(err)
	}
	if slot == nil {
		return nil, sharedDomain.NotFound(domain.MsgSlotNotFound)
	}
	return h.expander.ToDTO(ctx, slot)
}
