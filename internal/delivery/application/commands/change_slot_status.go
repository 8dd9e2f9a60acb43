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

// ChangeSlotStatusCommand completes or cancels a slot.
type ChangeSlotStatusCommand struct {
	SlotID string
	Status string
	Now    time.Time
}

// CommandName implements sharedApplication.Command.
func (ChangeSlotStatusCommand) CommandName() string { return "delivery.change_slot_status" }

// ChangeSlotStatusHandler handles the ChangeSlotStatusCommand.
type ChangeSlotStatusHandler struct {
	slotRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewChangeSlotStatusHandler creates a new ChangeSlotStatusHandler.
func NewChangeSlotStatusHandler(slotRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ChangeSlotStatusHandler {
	return &ChangeSlotStatusHandler{
		slotRepo:   slotRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the ChangeSlotStatusCommand.
func (h *ChangeSlotStatusHandler) Handle(ctx context.Context, cmd ChangeSlotStatusCommand) (*domain.DeliverySlot, error) {
	target := domain.SlotStatus(cmd.Status)
	if !target.IsTerminal() {
		return nil, sharedDomain.InvalidInput(domain.MsgInvalidStatusChange)
	}
	slotID, err := uuid.Parse(cmd.SlotID)
	if err != nil {
		return nil, sharedDomain.NotFound(domain.MsgSlotNotFound)
	}

	var slot *domain.DeliverySlot
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		slot, err = h.slotRepo.FindByID(txCtx, slotID)
		if err != nil {
			return storageError(err)
		}
		if slot == nil {
			return sharedDomain.NotFound(domain.MsgSlotNotFound)
		}
		if err := slot.ChangeStatus(target, cmd.Now); err != nil {
			return err
		}
		if err := h.slotRepo.Update(txCtx, slot); err != nil {
			return storageError(err)
		}
		return saveEvents(ctx, txCtx, h.outboxRepo, slot)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}
