package domain

import (
	"math"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Meal"

// Macros holds the nutritional values of a meal.
type Macros struct {
	Protein  float64
	Fat      float64
	Carbs    float64
	Calories float64
}

// Validate checks that every macro is a finite, non-negative number.
func (m Macros) Validate() error {
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"protein", m.Protein},
		{"fat", m.Fat},
		{"carbs", m.Carbs},
		{"calories", m.Calories},
	} {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return sharedDomain.InvalidInput(field.name + " must be a number")
		}
		if field.value < 0 {
			return sharedDomain.InvalidInput(field.name + " must not be negative")
		}
	}
	return nil
}

// Meal is a catalog entry. Meals are immutable once created.
type Meal struct {
	sharedDomain.BaseAggregateRoot
	name        string
	description string
	macros      Macros
	imageURL    string
	isAvailable bool
}

// NewMeal creates a new available meal.
func NewMeal(name, description string, macros Macros, imageURL string, now time.Time) (*Meal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, sharedDomain.InvalidInput("name is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, sharedDomain.InvalidInput("description is required")
	}
	if err := macros.Validate(); err != nil {
		return nil, err
	}

	meal := &Meal{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		name:              name,
		description:       description,
		macros:            macros,
		imageURL:          strings.TrimSpace(imageURL),
		isAvailable:       true,
	}
	meal.AddDomainEvent(NewMealCreated(meal))

	return meal, nil
}

// Getters
func (m *Meal) Name() string        { return m.name }
func (m *Meal) Description() string { return m.description }
func (m *Meal) Macros() Macros      { return m.macros }
func (m *Meal) ImageURL() string    { return m.imageURL }
func (m *Meal) IsAvailable() bool   { return m.isAvailable }

// Snapshot is the flat, serialisable form of a meal used by repositories
// and the cache.
type Snapshot struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Protein     float64   `json:"protein"`
	Fat         float64   `json:"fat"`
	Carbs       float64   `json:"carbs"`
	Calories    float64   `json:"calories"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns the flat form of the meal.
func (m *Meal) Snapshot() Snapshot {
	return Snapshot{
		ID:          m.ID(),
		Name:        m.name,
		Description: m.description,
		Protein:     m.macros.Protein,
		Fat:         m.macros.Fat,
		Carbs:       m.macros.Carbs,
		Calories:    m.macros.Calories,
		ImageURL:    m.imageURL,
		IsAvailable: m.isAvailable,
		CreatedAt:   m.CreatedAt(),
		UpdatedAt:   m.UpdatedAt(),
	}
}

// RehydrateMeal rebuilds a meal from persisted state without emitting events.
func RehydrateMeal(s Snapshot) *Meal {
	return &Meal{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt), 1,
		),
		name:        s.Name,
		description: s.Description,
		macros: Macros{
			Protein:  s.Protein,
			Fat:      s.Fat,
			Carbs:    s.Carbs,
			Calories: s.Calories,
		},
		imageURL:    s.ImageURL,
		isAvailable: s.IsAvailable,
	}
}
