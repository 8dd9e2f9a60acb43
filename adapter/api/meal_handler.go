package api

import (
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/mealslot/internal/catalog/application/commands"
	"github.com/felixgeelhaar/mealslot/internal/catalog/application/queries"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	"github.com/go-chi/chi/v5"
)

// MealHandler handles meal catalog requests.
type MealHandler struct {
	list   *queries.ListMealsHandler
	get    *queries.GetMealHandler
	create *commands.CreateMealHandler
	clock  sharedApplication.Clock
	logger *slog.Logger
}

// MealHandlerConfig holds dependencies for the meal handler.
type MealHandlerConfig struct {
	ListMeals  *queries.ListMealsHandler
	GetMeal    *queries.GetMealHandler
	CreateMeal *commands.CreateMealHandler
	Clock      sharedApplication.Clock
	Logger     *slog.Logger
}

// NewMealHandler creates a new meal handler.
func NewMealHandler(cfg MealHandlerConfig) *MealHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = sharedApplication.SystemClock{}
	}
	return &MealHandler{
		list:   cfg.ListMeals,
		get:    cfg.GetMeal,
		create: cfg.CreateMeal,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
}

// List handles GET /meals
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	meals, err := h.list.Handle(r.Context(), queries.ListMealsQuery{})
	if err != nil {
		writeError(w, r, h.logger, "list meals", err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

// Get handles GET /meals/{id}
func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	meal, err := h.get.Handle(r.Context(), queries.GetMealQuery{MealID: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, r, h.logger, "get meal", err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

type createMealRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Protein     *float64 `json:"protein"`
	Fat         *float64 `json:"fat"`
	Carbs       *float64 `json:"carbs"`
	Calories    *float64 `json:"calories"`
	ImageURL    string   `json:"imageUrl"`
}

// Create handles POST /meals
func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()

	var req createMealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.create.Handle(r.Context(), commands.CreateMealCommand{
		Name:        req.Name,
		Description: req.Description,
		Protein:     req.Protein,
		Fat:         req.Fat,
		Carbs:       req.Carbs,
		Calories:    req.Calories,
		ImageURL:    req.ImageURL,
		Now:         now,
	})
	if err != nil {
		writeError(w, r, h.logger, "create meal", err)
		return
	}
	writeJSON(w, http.StatusCreated, queries.ToMealDTO(result.Meal))
}
