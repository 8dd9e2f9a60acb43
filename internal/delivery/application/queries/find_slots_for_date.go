package queries

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
)

// FindSlotsForDateQuery lists the slots delivered on one UTC calendar day.
type FindSlotsForDateQuery struct {
	Date string
}

// QueryName implements sharedApplication.Query.
func (FindSlotsForDateQuery) QueryName() string { return "delivery.find_slots_for_date" }

// FindSlotsForDateHandler handles the FindSlotsForDateQuery.
type FindSlotsForDateHandler struct {
	slotRepo domain.Repository
	expander *MealExpander
}

// NewFindSlotsForDateHandler creates a new FindSlotsForDateHandler.
func NewFindSlotsForDateHandler(slotRepo domain.Repository, expander *MealExpander) *FindSlotsForDateHandler {
	return &FindSlotsForDateHandler{slotRepo: slotRepo, expander: expander}
}

// Handle executes the FindSlotsForDateQuery. The day runs from 00:00:00.000
// to 23:59:59.999 UTC, both inclusive.
func (h *FindSlotsForDateHandler) Handle(ctx context.Context, query FindSlotsForDateQuery) ([]SlotDTO, error) {
	date, err := domain.ParseCalendarDate(strings.TrimSpace(query.Date))
	if err != nil {
		return nil, sharedDomain.InvalidInput(domain.MsgInvalidDateFormat)
	}

	from, to := date.DayBounds()
	slots, err := h.slotRepo.FindByDeliveryRange(ctx, from, to)
	if err != nil {
		return nil, sharedDomain.StorageFailure(err)
	}
	return h.expander.ToDTOs(ctx, slots)
}
