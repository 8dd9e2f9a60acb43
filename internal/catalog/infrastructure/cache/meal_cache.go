// Package cache provides a Redis read-through cache in front of the meal
// repository, guarded by a circuit breaker.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/catalog/domain"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const (
	keyPrefix  = "mealslot:meal:"
	keyAllMeal = "mealslot:meals:all"
)

// Config configures the meal cache.
type Config struct {
	TTL              time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:              5 * time.Minute,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// CachedMealRepository decorates a domain.Repository with a Redis cache.
// Cache failures never fail a read; they fall through to the inner repository.
type CachedMealRepository struct {
	inner   domain.Repository
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewCachedMealRepository wraps inner with a Redis cache.
func NewCachedMealRepository(inner domain.Repository, client *redis.Client, cfg Config, metrics observability.Metrics, logger *slog.Logger) *CachedMealRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	settings := gobreaker.Settings{
		Name:    "meal-cache",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &CachedMealRepository{
		inner:   inner,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		ttl:     cfg.TTL,
		metrics: metrics,
		logger:  logger,
	}
}

// Save stores the meal. The cached listing is left alone because ctx may
// carry a transaction that has not committed yet; see InvalidateListing.
func (r *CachedMealRepository) Save(ctx context.Context, meal *domain.Meal) error {
	return r.inner.Save(ctx, meal)
}

// InvalidateListing drops the cached catalog listing.
func (r *CachedMealRepository) InvalidateListing(ctx context.Context) {
	_, err := r.breaker.Execute(func() ([]byte, error) {
		return nil, r.client.Del(ctx, keyAllMeal).Err()
	})
	if err != nil {
		r.cacheError("invalidate", err)
	}
}

// FindByID returns the cached meal or loads and caches it.
func (r *CachedMealRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meal, error) {
	key := keyPrefix + id.String()
	var snapshot domain.Snapshot
	if r.get(ctx, "get", key, &snapshot) {
		return domain.RehydrateMeal(snapshot), nil
	}

	meal, err := r.inner.FindByID(ctx, id)
	if err != nil || meal == nil {
		return meal, err
	}
	r.set(ctx, key, meal.Snapshot())
	return meal, nil
}

// FindByIDs resolves each ID through the cache and loads the rest in one query.
func (r *CachedMealRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meal, error) {
	meals := make([]*domain.Meal, 0, len(ids))
	var missing []uuid.UUID
	for _, id := range ids {
		var snapshot domain.Snapshot
		if r.get(ctx, "get", keyPrefix+id.String(), &snapshot) {
			meals = append(meals, domain.RehydrateMeal(snapshot))
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return meals, nil
	}

	loaded, err := r.inner.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, meal := range loaded {
		r.set(ctx, keyPrefix+meal.ID().String(), meal.Snapshot())
	}
	return append(meals, loaded...), nil
}

// FindAll returns the cached catalog listing or loads and caches it.
func (r *CachedMealRepository) FindAll(ctx context.Context) ([]*domain.Meal, error) {
	var snapshots []domain.Snapshot
	if r.get(ctx, "list", keyAllMeal, &snapshots) {
		meals := make([]*domain.Meal, len(snapshots))
		for i, s := range snapshots {
			meals[i] = domain.RehydrateMeal(s)
		}
		return meals, nil
	}

	meals, err := r.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshots = make([]domain.Snapshot, len(meals))
	for i, meal := range meals {
		snapshots[i] = meal.Snapshot()
	}
	r.set(ctx, keyAllMeal, snapshots)
	return meals, nil
}

func (r *CachedMealRepository) get(ctx context.Context, operation, key string, dest any) bool {
	data, err := r.breaker.Execute(func() ([]byte, error) {
		return r.client.Get(ctx, key).Bytes()
	})
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		r.metrics.Counter(observability.MetricMealCacheMisses, 1, observability.T("operation", operation))
		return false
	default:
		r.cacheError(operation, err)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		r.cacheError(operation, err)
		return false
	}
	r.metrics.Counter(observability.MetricMealCacheHits, 1, observability.T("operation", operation))
	return true
}

func (r *CachedMealRepository) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.cacheError("set", err)
		return
	}
	_, err = r.breaker.Execute(func() ([]byte, error) {
		return nil, r.client.Set(ctx, key, data, r.ttl).Err()
	})
	if err != nil {
		r.cacheError("set", err)
	}
}

func (r *CachedMealRepository) cacheError(operation string, err error) {
	r.metrics.Counter(observability.MetricMealCacheErrors, 1, observability.T("operation", operation))
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	r.logger.Warn("meal cache unavailable", "operation", operation, "error", err)
}
