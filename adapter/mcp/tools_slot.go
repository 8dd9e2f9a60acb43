package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
)

type slotIDInput struct {
	SlotID string `json:"slot_id" jsonschema:"required"`
}

type slotCreateInput struct {
	Date          string   `json:"date" jsonschema:"required"`
	ScheduledTime string   `json:"scheduled_time" jsonschema:"required"`
	DeliveryType  string   `json:"delivery_type,omitempty"`
	CustomerName  string   `json:"customer_name" jsonschema:"required"`
	Address       string   `json:"address" jsonschema:"required"`
	MealIDs       []string `json:"meal_ids,omitempty"`
}

type slotForDateInput struct {
	Date string `json:"date" jsonschema:"required"`
}

type slotRescheduleInput struct {
	SlotID        string `json:"slot_id" jsonschema:"required"`
	Date          string `json:"date" jsonschema:"required"`
	ScheduledTime string `json:"scheduled_time" jsonschema:"required"`
}

type slotUpdateMealInput struct {
	SlotID  string `json:"slot_id" jsonschema:"required"`
	EntryID string `json:"entry_id" jsonschema:"required"`
	Status  string `json:"status,omitempty"`
	MealID  string `json:"meal_id,omitempty"`
}

type slotStatusInput struct {
	SlotID string `json:"slot_id" jsonschema:"required"`
	Status string `json:"status" jsonschema:"required"`
}

type scheduleOutput struct {
	Date          string `json:"date"`
	ScheduledTime string `json:"scheduledTime"`
}

type rescheduleOutput struct {
	Slot      *queries.SlotDTO `json:"data"`
	Requested scheduleOutput   `json:"requested"`
	Resolved  scheduleOutput   `json:"resolved"`
	Adjusted  bool             `json:"adjusted"`
}

func registerSlotTools(srv *mcp.Server, t *toolset) {
	srv.Tool("slot.list").
		Description("List all delivery slots with their meals").
		Handler(t.listSlots)

	srv.Tool("slot.get").
		Description("Get a delivery slot by ID").
		Handler(t.getSlot)

	srv.Tool("slot.create").
		Description("Book a delivery slot for a customer").
		Handler(t.createSlot)

	srv.Tool("slot.for_date").
		Description("List the delivery slots on one UTC day (YYYY-MM-DD)").
		Handler(t.slotsForDate)

	srv.Tool("slot.reschedule").
		Description("Move a delivery slot. Requests at or before now snap to the next catalog time that day").
		Handler(t.rescheduleSlot)

	srv.Tool("slot.update_meal").
		Description("Skip, swap or move one meal inside a delivery slot").
		Handler(t.updateMeal)

	srv.Tool("slot.status").
		Description("Mark a delivery slot completed or cancelled").
		Handler(t.changeStatus)

	srv.Tool("slot.attempts").
		Description("List the reschedule attempts recorded for a delivery slot").
		Handler(t.listAttempts)
}

func (t *toolset) listSlots(ctx context.Context, _ struct{}) ([]queries.SlotDTO, error) {
	if t.app.ListSlotsHandler == nil {
		return nil, errNoDatabase
	}
	slots, err := t.app.ListSlotsHandler.Handle(ctx, queries.ListSlotsQuery{})
	return slots, t.publicError(ctx, "slot.list", err)
}

func (t *toolset) getSlot(ctx context.Context, input slotIDInput) (*queries.SlotDTO, error) {
	if t.app.GetSlotHandler == nil {
		return nil, errNoDatabase
	}
	slot, err := t.app.GetSlotHandler.Handle(ctx, queries.GetSlotQuery{SlotID: input.SlotID})
	return slot, t.publicError(ctx, "slot.get", err)
}

func (t *toolset) createSlot(ctx context.Context, input slotCreateInput) (*queries.SlotDTO, error) {
	if t.app.CreateSlotHandler == nil {
		return nil, errNoDatabase
	}
	deliveryType := input.DeliveryType
	if deliveryType == "" {
		deliveryType = "Delivery"
	}
	result, err := t.app.CreateSlotHandler.Handle(ctx, commands.CreateSlotCommand{
		Date:          input.Date,
		ScheduledTime: input.ScheduledTime,
		DeliveryType:  deliveryType,
		CustomerName:  input.CustomerName,
		Address:       input.Address,
		MealIDs:       input.MealIDs,
		Now:           t.app.Now(),
	})
	if err != nil {
		return nil, t.publicError(ctx, "slot.create", err)
	}
	dto, err := t.app.Expander.ToDTO(ctx, result.Slot)
	return dto, t.publicError(ctx, "slot.create", err)
}

func (t *toolset) slotsForDate(ctx context.Context, input slotForDateInput) ([]queries.SlotDTO, error) {
	if t.app.FindSlotsForDateHandler == nil {
		return nil, errNoDatabase
	}
	slots, err := t.app.FindSlotsForDateHandler.Handle(ctx, queries.FindSlotsForDateQuery{Date: input.Date})
	return slots, t.publicError(ctx, "slot.for_date", err)
}

func (t *toolset) rescheduleSlot(ctx context.Context, input slotRescheduleInput) (*rescheduleOutput, error) {
	if t.app.RescheduleSlotHandler == nil {
		return nil, errNoDatabase
	}
	result, err := t.app.RescheduleSlotHandler.Handle(ctx, commands.RescheduleSlotCommand{
		SlotID:        input.SlotID,
		Date:          input.Date,
		ScheduledTime: input.ScheduledTime,
		Now:           t.app.Now(),
	})
	if err != nil {
		return nil, t.publicError(ctx, "slot.reschedule", err)
	}
	dto, err := t.app.Expander.ToDTO(ctx, result.Slot)
	if err != nil {
		return nil, t.publicError(ctx, "slot.reschedule", err)
	}
	return &rescheduleOutput{
		Slot: dto,
		Requested: scheduleOutput{
			Date:          result.Requested.Date.String(),
			ScheduledTime: result.Requested.Time.String(),
		},
		Resolved: scheduleOutput{
			Date:          result.Resolved.Date.String(),
			ScheduledTime: result.Resolved.ScheduledTime.String(),
		},
		Adjusted: result.Resolved.Adjusted,
	}, nil
}

func (t *toolset) updateMeal(ctx context.Context, input slotUpdateMealInput) (*queries.SlotDTO, error) {
	if t.app.UpdateMealEntryHandler == nil {
		return nil, errNoDatabase
	}
	cmd := commands.UpdateMealEntryCommand{
		SlotID:  input.SlotID,
		EntryID: input.EntryID,
		Now:     t.app.Now(),
	}
	if input.Status != "" {
		cmd.Status = &input.Status
	}
	if input.MealID != "" {
		cmd.MealID = &input.MealID
	}
	result, err := t.app.UpdateMealEntryHandler.Handle(ctx, cmd)
	if err != nil {
		return nil, t.publicError(ctx, "slot.update_meal", err)
	}
	dto, err := t.app.Expander.ToDTO(ctx, result.Slot)
	return dto, t.publicError(ctx, "slot.update_meal", err)
}

func (t *toolset) changeStatus(ctx context.Context, input slotStatusInput) (*queries.SlotDTO, error) {
	if t.app.ChangeSlotStatusHandler == nil {
		return nil, errNoDatabase
	}
	slot, err := t.app.ChangeSlotStatusHandler.Handle(ctx, commands.ChangeSlotStatusCommand{
		SlotID: input.SlotID,
		Status: input.Status,
		Now:    t.app.Now(),
	})
	if err != nil {
		return nil, t.publicError(ctx, "slot.status", err)
	}
	dto, err := t.app.Expander.ToDTO(ctx, slot)
	return dto, t.publicError(ctx, "slot.status", err)
}

func (t *toolset) listAttempts(ctx context.Context, input slotIDInput) ([]queries.AttemptDTO, error) {
	if t.app.ListRescheduleAttemptsHandler == nil {
		return nil, errNoDatabase
	}
	attempts, err := t.app.ListRescheduleAttemptsHandler.Handle(ctx, queries.ListRescheduleAttemptsQuery{SlotID: input.SlotID})
	return attempts, t.publicError(ctx, "slot.attempts", err)
}
