package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/felixgeelhaar/mealslot/internal/catalog/infrastructure/cache"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo is an in-memory domain.Repository that records calls.
type countingRepo struct {
	meals       map[uuid.UUID]*domain.Meal
	findByID    int
	findByIDs   int
	findAll     int
	lastBatchIn []uuid.UUID
}

func newCountingRepo() *countingRepo {
	return &countingRepo{meals: make(map[uuid.UUID]*domain.Meal)}
}

func (r *countingRepo) Save(_ context.Context, meal *domain.Meal) error {
	r.meals[meal.ID()] = meal
	return nil
}

func (r *countingRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Meal, error) {
	r.findByID++
	return r.meals[id], nil
}

func (r *countingRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Meal, error) {
	r.findByIDs++
	r.lastBatchIn = ids
	var out []*domain.Meal
	for _, id := range ids {
		if m, ok := r.meals[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *countingRepo) FindAll(_ context.Context) ([]*domain.Meal, error) {
	r.findAll++
	out := make([]*domain.Meal, 0, len(r.meals))
	for _, m := range r.meals {
		out = append(out, m)
	}
	return out, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *countingRepo, *cache.CachedMealRepository, *observability.InMemoryMetrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := newCountingRepo()
	metrics := observability.NewInMemoryMetrics()
	cfg := cache.DefaultConfig()
	cfg.FailureThreshold = 2
	return mr, inner, cache.NewCachedMealRepository(inner, client, cfg, metrics, nil), metrics
}

func meal(t *testing.T, name string) *domain.Meal {
	t.Helper()
	m, err := domain.NewMeal(name, "desc", domain.Macros{Protein: 1, Fat: 2, Carbs: 3, Calories: 4}, "",
		time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return m
}

func TestCachedMealRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	mr, inner, repo, metrics := setup(t)
	m := meal(t, "Bowl")
	require.NoError(t, repo.Save(ctx, m))

	first, err := repo.FindByID(ctx, m.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, m.ID())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.findByID, "second read is served from redis")
	assert.Equal(t, first.Snapshot(), second.Snapshot())
	assert.True(t, mr.Exists("mealslot:meal:"+m.ID().String()))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricMealCacheHits, observability.T("operation", "get")))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricMealCacheMisses, observability.T("operation", "get")))
}

func TestCachedMealRepository_MissingMealIsNotCached(t *testing.T) {
	ctx := context.Background()
	mr, _, repo, _ := setup(t)
	id := uuid.New()

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.False(t, mr.Exists("mealslot:meal:"+id.String()))
}

func TestCachedMealRepository_InvalidateListing(t *testing.T) {
	ctx := context.Background()
	_, inner, repo, _ := setup(t)
	require.NoError(t, repo.Save(ctx, meal(t, "Bowl")))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	_, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.findAll)

	require.NoError(t, repo.Save(ctx, meal(t, "Wrap")))
	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "save alone keeps the cached listing")
	assert.Equal(t, 1, inner.findAll)

	repo.InvalidateListing(ctx)
	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, inner.findAll)
}

func TestCachedMealRepository_FindByIDsLoadsOnlyMisses(t *testing.T) {
	ctx := context.Background()
	_, inner, repo, _ := setup(t)
	cached := meal(t, "Cached")
	fresh := meal(t, "Fresh")
	require.NoError(t, repo.Save(ctx, cached))
	require.NoError(t, repo.Save(ctx, fresh))
	_, err := repo.FindByID(ctx, cached.ID())
	require.NoError(t, err)

	meals, err := repo.FindByIDs(ctx, []uuid.UUID{cached.ID(), fresh.ID()})
	require.NoError(t, err)

	assert.Len(t, meals, 2)
	assert.Equal(t, []uuid.UUID{fresh.ID()}, inner.lastBatchIn)
}

func TestCachedMealRepository_FallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	mr, inner, repo, metrics := setup(t)
	m := meal(t, "Bowl")
	require.NoError(t, repo.Save(ctx, m))
	mr.Close()

	for i := 0; i < 4; i++ {
		found, err := repo.FindByID(ctx, m.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
	}

	assert.Equal(t, 4, inner.findByID)
	assert.Positive(t, metrics.GetCounter(observability.MetricMealCacheErrors, observability.T("operation", "get")))
}
