package domain

import (
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
)

// RoutingKeyMealCreated is the routing key of MealCreated.
const RoutingKeyMealCreated = "catalog.meal.created"

// MealCreated is emitted when a meal is added to the catalog.
type MealCreated struct {
	sharedDomain.BaseEvent
	MealID   uuid.UUID `json:"meal_id"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
}

// NewMealCreated creates a MealCreated event.
func NewMealCreated(m *Meal) *MealCreated {
	return &MealCreated{
		BaseEvent: sharedDomain.NewBaseEvent(m.ID(), aggregateType, RoutingKeyMealCreated, m.CreatedAt()),
		MealID:    m.ID(),
		Name:      m.Name(),
		Calories:  m.Macros().Calories,
	}
}
