package commands

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RescheduleSlotCommand moves a slot to a new date and time. Now is the
// instant the request arrived; it is the only clock reading used.
type RescheduleSlotCommand struct {
	SlotID        string
	Date          string
	ScheduledTime string
	Now           time.Time
}

// CommandName implements sharedApplication.Command.
func (RescheduleSlotCommand) CommandName() string { return "delivery.reschedule_slot" }

// RescheduleSlotResult describes where the slot landed.
type RescheduleSlotResult struct {
	Slot      *domain.DeliverySlot
	Requested domain.RescheduleRequest
	Resolved  domain.ResolvedSchedule
	Attempt   *domain.RescheduleAttempt
}

// RescheduleSlotHandler handles the RescheduleSlotCommand.
type RescheduleSlotHandler struct {
	slotRepo    domain.Repository
	attemptRepo domain.AttemptRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	resolver    *domain.Resolver
}

// NewRescheduleSlotHandler creates a new RescheduleSlotHandler.
func NewRescheduleSlotHandler(
	slotRepo domain.Repository,
	attemptRepo domain.AttemptRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	resolver *domain.Resolver,
) *RescheduleSlotHandler {
	return &RescheduleSlotHandler{
		slotRepo:    slotRepo,
		attemptRepo: attemptRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		resolver:    resolver,
	}
}

// Handle executes the RescheduleSlotCommand. Missing fields are rejected
// first, then the slot must exist, then the date and time must parse.
// A request that cannot be resolved is still recorded in the audit trail,
// and its error is returned after the record commits.
func (h *RescheduleSlotHandler) Handle(ctx context.Context, cmd RescheduleSlotCommand) (*RescheduleSlotResult, error) {
	if strings.TrimSpace(cmd.Date) == "" || strings.TrimSpace(cmd.ScheduledTime) == "" {
		return nil, sharedDomain.InvalidInput(domain.MsgDateAndTimeRequired)
	}
	slotID, err := uuid.Parse(cmd.SlotID)
	if err != nil {
		return nil, sharedDomain.NotFound(domain.MsgSlotNotFound)
	}

	var (
		req        domain.RescheduleRequest
		result     *RescheduleSlotResult
		resolveErr error
	)
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		slot, err := h.slotRepo.FindByID(txCtx, slotID)
		if err != nil {
			return storageError(err)
		}
		if slot == nil {
			return sharedDomain.NotFound(domain.MsgSlotNotFound)
		}
		req, err = domain.ParseRescheduleRequest(cmd.Date, cmd.ScheduledTime)
		if err != nil {
			return err
		}

		resolved, err := h.resolver.Resolve(slot, req, cmd.Now)
		if err != nil {
			resolveErr = err
			attempt := domain.NewFailedAttempt(slot, req, sharedDomain.Message(err), cmd.Now)
			if err := h.attemptRepo.Save(txCtx, attempt); err != nil {
				return storageError(err)
			}
			return nil
		}

		attempt := domain.NewSuccessfulAttempt(slot, req, resolved, cmd.Now)
		slot.ApplyReschedule(resolved, cmd.Now)
		if err := h.slotRepo.Update(txCtx, slot); err != nil {
			return storageError(err)
		}
		if err := h.attemptRepo.Save(txCtx, attempt); err != nil {
			return storageError(err)
		}
		if err := saveEvents(ctx, txCtx, h.outboxRepo, slot); err != nil {
			return err
		}

		result = &RescheduleSlotResult{
			Slot:      slot,
			Requested: req,
			Resolved:  resolved,
			Attempt:   attempt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resolveErr != nil {
		return nil, resolveErr
	}
	return result, nil
}
