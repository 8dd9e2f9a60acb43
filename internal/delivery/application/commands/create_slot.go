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

// CreateSlotCommand contains the data needed to book a delivery slot.
type CreateSlotCommand struct {
	Date          string
	ScheduledTime string
	DeliveryType  string
	CustomerName  string
	Address       string
	MealIDs       []string
	Now           time.Time
}

// CommandName implements sharedApplication.Command.
func (CreateSlotCommand) CommandName() string { return "delivery.create_slot" }

// CreateSlotResult contains the stored slot.
type CreateSlotResult struct {
	Slot *domain.DeliverySlot
}

// CreateSlotHandler handles the CreateSlotCommand.
type CreateSlotHandler struct {
	slotRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateSlotHandler creates a new CreateSlotHandler.
func NewCreateSlotHandler(slotRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateSlotHandler {
	return &CreateSlotHandler{
		slotRepo:   slotRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateSlotCommand.
func (h *CreateSlotHandler) Handle(ctx context.Context, cmd CreateSlotCommand) (*CreateSlotResult, error) {
	params, err := cmd.params()
	if err != nil {
		return nil, err
	}
	slot, err := domain.NewDeliverySlot(params, cmd.Now)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.slotRepo.Create(txCtx, slot); err != nil {
			return storageError(err)
		}
		return saveEvents(ctx, txCtx, h.outboxRepo, slot)
	})
	if err != nil {
		return nil, err
	}

	return &CreateSlotResult{Slot: slot}, nil
}

func (cmd CreateSlotCommand) params() (domain.NewSlotParams, error) {
	if strings.TrimSpace(cmd.Date) == "" {
		return domain.NewSlotParams{}, sharedDomain.InvalidInput("date is required")
	}
	date, err := domain.ParseCalendarDate(strings.TrimSpace(cmd.Date))
	if err != nil {
		return domain.NewSlotParams{}, sharedDomain.InvalidInput(domain.MsgInvalidDateFormat)
	}
	if strings.TrimSpace(cmd.ScheduledTime) == "" {
		return domain.NewSlotParams{}, sharedDomain.InvalidInput("scheduledTime is required")
	}
	at, err := domain.ParseTimeOfDay(strings.TrimSpace(cmd.ScheduledTime))
	if err != nil {
		return domain.NewSlotParams{}, sharedDomain.InvalidInput(domain.MsgInvalidTimeFormat)
	}

	mealIDs := make([]uuid.UUID, 0, len(cmd.MealIDs))
	for _, raw := range cmd.MealIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.NewSlotParams{}, sharedDomain.InvalidInput(domain.MsgInvalidMealReference)
		}
		mealIDs = append(mealIDs, id)
	}

	return domain.NewSlotParams{
		Date:          date,
		ScheduledTime: at,
		DeliveryType:  domain.DeliveryType(cmd.DeliveryType),
		CustomerName:  cmd.CustomerName,
		Address:       cmd.Address,
		MealIDs:       mealIDs,
	}, nil
}
