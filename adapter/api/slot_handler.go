package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/mealslot/internal/delivery/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/delivery/application/queries"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	"github.com/go-chi/chi/v5"
)

// Reschedule envelope messages.
const (
	msgRescheduled      = "Delivery slot rescheduled successfully"
	msgRescheduleFailed = "Server error during rescheduling"
)

// SlotHandler handles delivery slot requests.
type SlotHandler struct {
	list         *queries.ListSlotsHandler
	get          *queries.GetSlotHandler
	forDate      *queries.FindSlotsForDateHandler
	attempts     *queries.ListRescheduleAttemptsHandler
	create       *commands.CreateSlotHandler
	reschedule   *commands.RescheduleSlotHandler
	updateMeal   *commands.UpdateMealEntryHandler
	changeStatus *commands.ChangeSlotStatusHandler
	expander     *queries.MealExpander
	clock        sharedApplication.Clock
	logger       *slog.Logger
}

// SlotHandlerConfig holds dependencies for the slot handler.
type SlotHandlerConfig struct {
	ListSlots              *queries.ListSlotsHandler
	GetSlot                *queries.GetSlotHandler
	FindSlotsForDate       *queries.FindSlotsForDateHandler
	ListRescheduleAttempts *queries.ListRescheduleAttemptsHandler
	CreateSlot             *commands.CreateSlotHandler
	RescheduleSlot         *commands.RescheduleSlotHandler
	UpdateMealEntry        *commands.UpdateMealEntryHandler
	ChangeSlotStatus       *commands.ChangeSlotStatusHandler
	Expander               *queries.MealExpander
	Clock                  sharedApplication.Clock
	Logger                 *slog.Logger
}

// NewSlotHandler creates a new slot handler.
func NewSlotHandler(cfg SlotHandlerConfig) *SlotHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = sharedApplication.SystemClock{}
	}
	return &SlotHandler{
		list:         cfg.ListSlots,
		get:          cfg.GetSlot,
		forDate:      cfg.FindSlotsForDate,
		attempts:     cfg.ListRescheduleAttempts,
		create:       cfg.CreateSlot,
		reschedule:   cfg.RescheduleSlot,
		updateMeal:   cfg.UpdateMealEntry,
		changeStatus: cfg.ChangeSlotStatus,
		expander:     cfg.Expander,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
	}
}

// List handles GET /delivery-slots
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	slots, err := h.list.Handle(r.Context(), queries.ListSlotsQuery{})
	if err != nil {
		writeError(w, r, h.logger, "list delivery slots", err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// Get handles GET /delivery-slots/{id}
func (h *SlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	slot, err := h.get.Handle(r.Context(), queries.GetSlotQuery{SlotID: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, r, h.logger, "get delivery slot", err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

// ForDate handles GET /delivery-slots/date/{date}
func (h *SlotHandler) ForDate(w http.ResponseWriter, r *http.Request) {
	slots, err := h.forDate.Handle(r.Context(), queries.FindSlotsForDateQuery{Date: chi.URLParam(r, "date")})
	if err != nil {
		writeError(w, r, h.logger, "find delivery slots for date", err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// Attempts handles GET /delivery-slots/{id}/reschedule-attempts
func (h *SlotHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attempts.Handle(r.Context(), queries.ListRescheduleAttemptsQuery{SlotID: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, r, h.logger, "list reschedule attempts", err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

// mealRefs accepts meal references either as plain IDs or as
// {"meal": "<id>"} objects.
type mealRefs []string

func (m *mealRefs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	refs := make(mealRefs, 0, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			refs = append(refs, id)
			continue
		}
		var obj struct {
			Meal string `json:"meal"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("meal reference: %w", err)
		}
		refs = append(refs, obj.Meal)
	}
	*m = refs
	return nil
}

type createSlotRequest struct {
	Date          string   `json:"date"`
	DeliveryType  string   `json:"deliveryType"`
	CustomerName  string   `json:"customerName"`
	ScheduledTime string   `json:"scheduledTime"`
	Address       string   `json:"address"`
	Meals         mealRefs `json:"meals"`
}

// Create handles POST /delivery-slots
func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()

	var req createSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.create.Handle(r.Context(), commands.CreateSlotCommand{
		Date:          req.Date,
		ScheduledTime: req.ScheduledTime,
		DeliveryType:  req.DeliveryType,
		CustomerName:  req.CustomerName,
		Address:       req.Address,
		MealIDs:       req.Meals,
		Now:           now,
	})
	if err != nil {
		writeError(w, r, h.logger, "create delivery slot", err)
		return
	}

	dto, err := h.expander.ToDTO(r.Context(), result.Slot)
	if err != nil {
		writeError(w, r, h.logger, "create delivery slot", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

type rescheduleRequest struct {
	Date          string `json:"date"`
	ScheduledTime string `json:"scheduledTime"`
}

type scheduleJSON struct {
	Date          string `json:"date"`
	ScheduledTime string `json:"scheduledTime"`
}

type rescheduleResponse struct {
	Success   bool             `json:"success"`
	Data      *queries.SlotDTO `json:"data,omitempty"`
	Message   string           `json:"message"`
	Error     string           `json:"error,omitempty"`
	Requested *scheduleJSON    `json:"requested,omitempty"`
	Resolved  *scheduleJSON    `json:"resolved,omitempty"`
	Adjusted  *bool            `json:"adjusted,omitempty"`
}

// Reschedule handles PATCH /delivery-slots/{id}/reschedule. A request time
// already in the past is moved to the next catalog time of that day.
func (h *SlotHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()

	var req rescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, rescheduleResponse{Message: "Invalid JSON body"})
		return
	}

	result, err := h.reschedule.Handle(r.Context(), commands.RescheduleSlotCommand{
		SlotID:        chi.URLParam(r, "id"),
		Date:          req.Date,
		ScheduledTime: req.ScheduledTime,
		Now:           now,
	})
	if err != nil {
		h.writeRescheduleError(w, r, err)
		return
	}

	dto, err := h.expander.ToDTO(r.Context(), result.Slot)
	if err != nil {
		h.writeRescheduleError(w, r, err)
		return
	}

	adjusted := result.Resolved.Adjusted
	writeJSON(w, http.StatusOK, rescheduleResponse{
		Success: true,
		Data:    dto,
		Message: msgRescheduled,
		Requested: &scheduleJSON{
			Date:          result.Requested.Date.String(),
			ScheduledTime: result.Requested.Time.String(),
		},
		Resolved: &scheduleJSON{
			Date:          result.Resolved.Date.String(),
			ScheduledTime: result.Resolved.ScheduledTime.String(),
		},
		Adjusted: &adjusted,
	})
}

func (h *SlotHandler) writeRescheduleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "reschedule delivery slot failed", "error", err)
		writeJSON(w, status, rescheduleResponse{Message: msgRescheduleFailed, Error: msgInternal})
		return
	}
	writeJSON(w, status, rescheduleResponse{Message: publicMessage(err, status)})
}

type updateMealRequest struct {
	Status string `json:"status"`
	Meal   string `json:"meal"`
}

// UpdateMeal handles PATCH /delivery-slots/{slotId}/meals/{mealId}. The
// mealId path segment is the ID of the entry inside the slot.
func (h *SlotHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()

	var req updateMealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	cmd := commands.UpdateMealEntryCommand{
		SlotID:  chi.URLParam(r, "slotId"),
		EntryID: chi.URLParam(r, "mealId"),
		Now:     now,
	}
	if req.Status != "" {
		cmd.Status = &req.Status
	}
	if req.Meal != "" {
		cmd.MealID = &req.Meal
	}

	result, err := h.updateMeal.Handle(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, "update meal entry", err)
		return
	}

	dto, err := h.expander.ToDTO(r.Context(), result.Slot)
	if err != nil {
		writeError(w, r, h.logger, "update meal entry", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus handles PATCH /delivery-slots/{id}/status
func (h *SlotHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()

	var req changeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	slot, err := h.changeStatus.Handle(r.Context(), commands.ChangeSlotStatusCommand{
		SlotID: chi.URLParam(r, "id"),
		Status: req.Status,
		Now:    now,
	})
	if err != nil {
		writeError(w, r, h.logger, "change delivery slot status", err)
		return
	}

	dto, err := h.expander.ToDTO(r.Context(), slot)
	if err != nil {
		writeError(w, r, h.logger, "change delivery slot status", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}
