package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for meal persistence.
type Repository interface {
	// Save inserts a new meal.
	Save(ctx context.Context, meal *Meal) error

	// FindByID returns the meal or nil when it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*Meal, error)

	// FindByIDs returns the meals that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Meal, error)

	// FindAll returns every meal ordered by name.
	FindAll(ctx context.Context) ([]*Meal, error)
}

// ListingInvalidator is implemented by repositories that cache the meal listing.
// Callers invalidate once the write that changed the listing has committed.
type ListingInvalidator interface {
	InvalidateListing(ctx context.Context)
}
