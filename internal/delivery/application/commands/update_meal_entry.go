package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// UpdateMealEntryCommand skips, swaps or moves one meal inside a slot.
// Nil fields are left unchanged.
type UpdateMealEntryCommand struct {
	SlotID  string
	EntryID string
	Status  *string
	MealID  *string
	Now     time.Time
}

// CommandName implements sharedApplication.Command.
func (UpdateMealEntryCommand) CommandName() string { return "delivery.update_meal_entry" }

// UpdateMealEntryResult contains the updated slot.
type UpdateMealEntryResult struct {
	Slot  *domain.DeliverySlot
	Entry *domain.MealEntry
}

// UpdateMealEntryHandler handles the UpdateMealEntryCommand.
type UpdateMealEntryHandler struct {
	slotRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewUpdateMealEntryHandler creates a new UpdateMealEntryHandler.
func NewUpdateMealEntryHandler(slotRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateMealEntryHandler {
	return &UpdateMealEntryHandler{
		slotRepo:   slotRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the UpdateMealEntryCommand.
func (h *UpdateMealEntryHandler) Handle(ctx context.Context, cmd UpdateMealEntryCommand) (*UpdateMealEntryResult, error) {
	slotID, err := uuid.Parse(cmd.SlotID)
	if err != nil {
		return nil, sharedDomain.NotFound(domain.MsgSlotNotFound)
	}
	entryID, err := uuid.Parse(cmd.EntryID)
	if err != nil {
		entryID = uuid.Nil
	}

	var change domain.MealEntryChange
	if cmd.Status != nil {
		status := domain.MealStatus(*cmd.Status)
		change.Status = &status
	}
	if cmd.MealID != nil {
		mealID, err := uuid.Parse(*cmd.MealID)
		if err != nil {
			return nil, sharedDomain.InvalidInput(domain.MsgInvalidMealReference)
		}
		change.MealID = &mealID
	}

	var result *UpdateMealEntryResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		slot, err := h.slotRepo.FindByID(txCtx, slotID)
		if err != nil {
			return storageError(err)
		}
		if slot == nil {
			return sharedDomain.NotFound(domain.MsgSlotNotFound)
		}

		entry, err := slot.UpdateMealEntry(entryID, change, cmd.Now)
		if err != nil {
			return err
		}
		if len(slot.DomainEvents()) > 0 {
			if err := h.slotRepo.Update(txCtx, slot); err != nil {
				return storageError(err)
			}
			if err := saveEvents(ctx, txCtx, h.outboxRepo, slot); err != nil {
				return err
			}
		}

		result = &UpdateMealEntryResult{Slot: slot, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
