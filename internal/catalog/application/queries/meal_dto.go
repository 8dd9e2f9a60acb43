package queries

import (
	"time"

	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/google/uuid"
)

// MealDTO is the read model of a meal.
type MealDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Protein     float64   `json:"protein"`
	Fat         float64   `json:"fat"`
	Carbs       float64   `json:"carbs"`
	Calories    float64   `json:"calories"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToMealDTO maps a meal to its read model.
func ToMealDTO(m *domain.Meal) MealDTO {
	macros := m.Macros()
	return MealDTO{
		ID:          m.ID(),
		Name:        m.Name(),
		Description: m.Description(),
		Protein:     macros.Protein,
		Fat:         macros.Fat,
		Carbs:       macros.Carbs,
		Calories:    macros.Calories,
		ImageURL:    m.ImageURL(),
		IsAvailable: m.IsAvailable(),
		CreatedAt:   m.CreatedAt(),
		UpdatedAt:   m.UpdatedAt(),
	}
}
