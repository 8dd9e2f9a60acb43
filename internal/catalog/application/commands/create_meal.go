package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	sharedApplication "github.com/felixgeelhaar/mealslot/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
)

// CreateMealCommand contains the data needed to add a meal to the catalog.
// Macros are pointers so a missing value can be told apart from zero.
type CreateMealCommand struct {
	Name        string
	Description string
	Protein     *float64
	Fat         *float64
	Carbs       *float64
	Calories    *float64
	ImageURL    string
	Now         time.Time
}

// CommandName implements sharedApplication.Command.
func (CreateMealCommand) CommandName() string { return "catalog.create_meal" }

// CreateMealResult contains the stored meal.
type CreateMealResult struct {
	Meal *domain.Meal
}

// CreateMealHandler handles the CreateMealCommand.
type CreateMealHandler struct {
	mealRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateMealHandler creates a new CreateMealHandler.
func NewCreateMealHandler(mealRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateMealHandler {
	return &CreateMealHandler{
		mealRepo:   mealRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateMealCommand.
func (h *CreateMealHandler) Handle(ctx context.Context, cmd CreateMealCommand) (*CreateMealResult, error) {
	macros, err := cmd.macros()
	if err != nil {
		return nil, err
	}

	meal, err := domain.NewMeal(cmd.Name, cmd.Description, macros, cmd.ImageURL, cmd.Now)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.mealRepo.Save(txCtx, meal); err != nil {
			return sharedDomain.StorageFailure(err)
		}

		events := meal.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return sharedDomain.StorageFailure(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if inv, ok := h.mealRepo.(domain.ListingInvalidator); ok {
		inv.InvalidateListing(ctx)
	}

	meal.ClearDomainEvents()
	return &CreateMealResult{Meal: meal}, nil
}

func (cmd CreateMealCommand) macros() (domain.Macros, error) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"protein", cmd.Protein},
		{"fat", cmd.Fat},
		{"carbs", cmd.Carbs},
		{"calories", cmd.Calories},
	}
	for _, f := range fields {
		if f.value == nil {
			return domain.Macros{}, sharedDomain.InvalidInput(f.name + " is required")
		}
	}
	return domain.Macros{
		Protein:  *cmd.Protein,
		Fat:      *cmd.Fat,
		Carbs:    *cmd.Carbs,
		Calories: *cmd.Calories,
	}, nil
}
