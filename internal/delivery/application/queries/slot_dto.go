package queries

import (
	"context"
	"time"

	catalogQueries "github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	catalogDomain "github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
)

// SlotDTO is the read model of a delivery slot with its meals expanded.
type SlotDTO struct {
	ID            uuid.UUID      `json:"id"`
	Date          time.Time      `json:"date"`
	DeliveryType  string         `json:"deliveryType"`
	CustomerName  string         `json:"customerName"`
	ScheduledTime string         `json:"scheduledTime"`
	Address       string         `json:"address,omitempty"`
	Status        string         `json:"status"`
	Meals         []MealEntryDTO `json:"meals"`
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// MealEntryDTO is one meal inside a slot. Meal is nil when the referenced
// meal no longer resolves.
type MealEntryDTO struct {
	ID     uuid.UUID               `json:"id"`
	MealID uuid.UUID               `json:"mealId"`
	Meal   *catalogQueries.MealDTO `json:"meal"`
	Status string                  `json:"status"`
}

// MealExpander resolves meal references to full meal records.
type MealExpander struct {
	mealRepo catalogDomain.Repository
}

// NewMealExpander creates a MealExpander over the meal catalog.
func NewMealExpander(mealRepo catalogDomain.Repository) *MealExpander {
	return &MealExpander{mealRepo: mealRepo}
}

// ToDTOs maps slots to read models, loading all referenced meals in one call.
func (e *MealExpander) ToDTOs(ctx context.Context, slots []*domain.DeliverySlot) ([]SlotDTO, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, slot := range slots {
		for _, id := range slot.MealIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	meals := make(map[uuid.UUID]catalogQueries.MealDTO, len(ids))
	if len(ids) > 0 {
		found, err := e.mealRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, sharedDomain.StorageFailure(err)
		}
		for _, m := range found {
			meals[m.ID()] = catalogQueries.ToMealDTO(m)
		}
	}

	dtos := make([]SlotDTO, 0, len(slots))
	for _, slot := range slots {
		dtos = append(dtos, toSlotDTO(slot, meals))
	}
	return dtos, nil
}

// ToDTO maps a single slot.
func (e *MealExpander) ToDTO(ctx context.Context, slot *domain.DeliverySlot) (*SlotDTO, error) {
	dtos, err := e.ToDTOs(ctx, []*domain.DeliverySlot{slot})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func toSlotDTO(slot *domain.DeliverySlot, meals map[uuid.UUID]catalogQueries.MealDTO) SlotDTO {
	entries := make([]MealEntryDTO, 0, len(slot.Meals()))
	for _, entry := range slot.Meals() {
		dto := MealEntryDTO{
			ID:     entry.ID(),
			MealID: entry.MealID(),
			Status: string(entry.Status()),
		}
		if meal, ok := meals[entry.MealID()]; ok {
			dto.Meal = &meal
		}
		entries = append(entries, dto)
	}

	return SlotDTO{
		ID:            slot.ID(),
		Date:          slot.DeliveryAt(),
		DeliveryType:  string(slot.DeliveryType()),
		CustomerName:  slot.CustomerName(),
		ScheduledTime: slot.ScheduledTime().String(),
		Address:       slot.Address(),
		Status:        string(slot.Status()),
		Meals:         entries,
		Version:       slot.Version(),
		CreatedAt:     slot.CreatedAt(),
		UpdatedAt:     slot.UpdatedAt(),
	}
}
