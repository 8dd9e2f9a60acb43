package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
)

// AttemptDTO is the read model of a reschedule attempt.
type AttemptDTO struct {
	ID            uuid.UUID `json:"id"`
	SlotID        uuid.UUID `json:"slotId"`
	RequestedDate string    `json:"requestedDate"`
	RequestedTime string    `json:"requestedTime"`
	PreviousDate  string    `json:"previousDate"`
	PreviousTime  string    `json:"previousTime"`
	ResolvedDate  string    `json:"resolvedDate,omitempty"`
	ResolvedTime  string    `json:"resolvedTime,omitempty"`
	Adjusted      bool      `json:"adjusted"`
	Success       bool      `json:"success"`
	FailureReason string    `json:"failureReason,omitempty"`
	AttemptedAt   time.Time `json:"attemptedAt"`
}

// ToAttemptDTO maps an attempt to its read model.
func ToAttemptDTO(a *domain.RescheduleAttempt) AttemptDTO {
	s := a.Snapshot()
	dto := AttemptDTO{
		ID:            s.ID,
		SlotID:        s.SlotID,
		RequestedDate: s.RequestedDate.String(),
		RequestedTime: s.RequestedTime.String(),
		PreviousDate:  s.PreviousDate.String(),
		PreviousTime:  s.PreviousTime.String(),
		Adjusted:      s.Adjusted,
		Success:       s.Success,
		FailureReason: s.FailureReason,
		AttemptedAt:   s.AttemptedAt,
	}
	if s.ResolvedDate != nil {
		dto.ResolvedDate = s.ResolvedDate.String()
	}
	if s.ResolvedTime != nil {
		dto.ResolvedTime = s.ResolvedTime.String()
	}
	return dto
}

// ListRescheduleAttemptsQuery lists the audit trail of one slot.
type ListRescheduleAttemptsQuery struct {
	SlotID string
}

// QueryName implements sharedApplication.Query.
func (ListRescheduleAttemptsQuery) QueryName() string { return "delivery.list_reschedule_attempts" }

// ListRescheduleAttemptsHandler handles the ListRescheduleAttemptsQuery.
type ListRescheduleAttemptsHandler struct {
	slotRepo    domain.Repository
	attemptRepo domain.AttemptRepository
}

// NewListRescheduleAttemptsHandler creates a new ListRescheduleAttemptsHandler.
func NewListRescheduleAttemptsHandler(slotRepo domain.Repository, attemptRepo domain.AttemptRepository) *ListRescheduleAttemptsHandler {
	return &ListRescheduleAttemptsHandler{slotRepo: slotRepo, attemptRepo: attemptRepo}
}

// Handle executes the ListRescheduleAttemptsQuery. Attempts are ordered by
// the time they were made.
func (h *ListRescheduleAttemptsHandler) Handle(ctx context.Context, query ListRescheduleAttemptsQuery) ([]AttemptDTO, error) {
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

	attempts, err := h.attemptRepo.FindBySlotID(ctx, id)
	if err != nil {
		return nil, sharedDomain.StorageFailure(err)
	}
	dtos := make([]AttemptDTO, 0, len(attempts))
	for _, a := range attempts {
		dtos = append(dtos, ToAttemptDTO(a))
	}
	return dtos, nil
}
