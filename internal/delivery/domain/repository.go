package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for delivery slot persistence.
type Repository interface {
	// Create inserts a new slot at version 1.
	Create(ctx context.Context, slot *DeliverySlot) error

	// Update writes the slot if its stored version still matches, then
	// advances the version. A mismatch returns ErrConcurrentModification.
	Update(ctx context.Context, slot *DeliverySlot) error

	// FindByID returns the slot or nil when it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*DeliverySlot, error)

	// FindAll returns every slot ordered by delivery time.
	FindAll(ctx context.Context) ([]*DeliverySlot, error)

	// FindByDeliveryRange returns slots delivered within [from, to], both inclusive.
	FindByDeliveryRange(ctx context.Context, from, to time.Time) ([]*DeliverySlot, error)
}

// AttemptRepository stores the reschedule audit trail.
type AttemptRepository interface {
	Save(ctx context.Context, attempt *RescheduleAttempt) error
	FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*RescheduleAttempt, error)
}
