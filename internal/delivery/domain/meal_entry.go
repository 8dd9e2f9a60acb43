package domain

import (
	"github.com/google/uuid"
)

// MealStatus is the per-meal state inside a slot.
type MealStatus string

const (
	MealStatusScheduled MealStatus = "scheduled"
	MealStatusSkipped   MealStatus = "skipped"
	MealStatusSwapped   MealStatus = "swapped"
	MealStatusMoved     MealStatus = "moved"
)

// IsValid checks if the meal status is valid.
func (s MealStatus) IsValid() bool {
	switch s {
	case MealStatusScheduled, MealStatusSkipped, MealStatusSwapped, MealStatusMoved:
		return true
	default:
		return false
	}
}

// MealEntry is one meal reference within a slot. Entries have their own
// identity so they can be mutated individually.
type MealEntry struct {
	id     uuid.UUID
	mealID uuid.UUID
	status MealStatus
}

// NewMealEntry creates a scheduled entry for a meal.
func NewMealEntry(mealID uuid.UUID) *MealEntry {
	return &MealEntry{id: uuid.New(), mealID: mealID, status: MealStatusScheduled}
}

// RehydrateMealEntry rebuilds an entry from persisted state.
func RehydrateMealEntry(id, mealID uuid.UUID, status MealStatus) *MealEntry {
	return &MealEntry{id: id, mealID: mealID, status: status}
}

func (e *MealEntry) ID() uuid.UUID      { return e.id }
func (e *MealEntry) MealID() uuid.UUID  { return e.mealID }
func (e *MealEntry) Status() MealStatus { return e.status }
