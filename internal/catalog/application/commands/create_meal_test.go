package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMealRepo struct {
	mock.Mock
}

func (m *mockMealRepo) Save(ctx context.Context, meal *domain.Meal) error {
	args := m.Called(ctx, meal)
	return args.Error(0)
}

func (m *mockMealRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meal), args.Error(1)
}

func (m *mockMealRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meal, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Meal), args.Error(1)
}

func (m *mockMealRepo) FindAll(ctx context.Context) ([]*domain.Meal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Meal), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
	outbox.Repository
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

type mockUnitOfWork struct{}

func (mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (mockUnitOfWork) Commit(context.Context) error                       { return nil }
func (mockUnitOfWork) Rollback(context.Context) error                     { return nil }

func ptr(v float64) *float64 { return &v }

func validCommand() CreateMealCommand {
	return CreateMealCommand{
		Name:        "Chili",
		Description: "Three-bean chili",
		Protein:     ptr(22),
		Fat:         ptr(9),
		Carbs:       ptr(51),
		Calories:    ptr(0),
		Now:         time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC),
	}
}

func TestCreateMealHandler_Success(t *testing.T) {
	repo := new(mockMealRepo)
	outboxRepo := new(mockOutboxRepo)
	handler := NewCreateMealHandler(repo, outboxRepo, mockUnitOfWork{})

	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Meal")).Return(nil)
	outboxRepo.On("SaveBatch", mock.Anything, mock.MatchedBy(func(msgs []*outbox.Message) bool {
		return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyMealCreated
	})).Return(nil)

	result, err := handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, "Chili", result.Meal.Name())
	assert.Equal(t, 0.0, result.Meal.Macros().Calories)
	assert.Equal(t, validCommand().Now, result.Meal.CreatedAt())
	assert.Empty(t, result.Meal.DomainEvents())
	repo.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestCreateMealHandler_MissingMacro(t *testing.T) {
	repo := new(mockMealRepo)
	handler := NewCreateMealHandler(repo, new(mockOutboxRepo), mockUnitOfWork{})

	cmd := validCommand()
	cmd.Carbs = nil

	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
	assert.Equal(t, "carbs is required", err.Error())
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateMealHandler_StorageFailure(t *testing.T) {
	repo := new(mockMealRepo)
	handler := NewCreateMealHandler(repo, new(mockOutboxRepo), mockUnitOfWork{})

	dbErr := errors.New("disk full")
	repo.On("Save", mock.Anything, mock.Anything).Return(dbErr)

	_, err := handler.Handle(context.Background(), validCommand())
	assert.ErrorIs(t, err, sharedDomain.ErrStorageFailure)
	assert.ErrorIs(t, err, dbErr)
}

type invalidatingMealRepo struct {
	mockMealRepo
	invalidated int
}

func (m *invalidatingMealRepo) InvalidateListing(context.Context) { m.invalidated++ }

func TestCreateMealHandler_InvalidatesListingAfterCommit(t *testing.T) {
	repo := new(invalidatingMealRepo)
	outboxRepo := new(mockOutboxRepo)
	handler := NewCreateMealHandler(repo, outboxRepo, mockUnitOfWork{})

	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

	_, err := handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.invalidated)
}

func TestCreateMealHandler_FailedWriteKeepsListing(t *testing.T) {
	repo := new(invalidatingMealRepo)
	handler := NewCreateMealHandler(repo, new(mockOutboxRepo), mockUnitOfWork{})

	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := handler.Handle(context.Background(), validCommand())
	assert.ErrorIs(t, err, sharedDomain.ErrStorageFailure)
	assert.Zero(t, repo.invalidated)
}
