package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
)

// CachedTrainingAdapter wraps a TrainingRepository with read-through caching
type CachedTrainingAdapter struct {
	adapter repositories.TrainingRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedTrainingAdapter creates a new cached training adapter
func NewCachedTrainingAdapter(adapter repositories.TrainingRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.TrainingRepository {
	return &CachedTrainingAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// Cache TTLs (in seconds)
const (
	trainingByIDTTL  = 300
	trainingsListTTL = 60
)

const trainingsListCacheKey = "trainings:list"

func trainingCacheKey(id string) string {
	return fmt.Sprintf("training:%s", id)
}

// TrainingCacheKeys returns the cached reads made stale by a program event
func TrainingCacheKeys(event *entities.Event) []string {
	if event.Type != entities.EventTypeTrainingCreated {
		return nil
	}
	return []string{trainingsListCacheKey, trainingCacheKey(event.SubjectID)}
}

// Create stores the program and drops the cached listing
func (a *CachedTrainingAdapter) Create(ctx context.Context, program *entities.TrainingProgram) error {
	if err := a.adapter.Create(ctx, program); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, trainingsListCacheKey); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to invalidate trainings list cache")
	}
	return nil
}

// GetByID retrieves a program by ID with caching
func (a *CachedTrainingAdapter) GetByID(ctx context.Context, id string) (*entities.TrainingProgram, error) {
	key := trainingCacheKey(id)

	var program entities.TrainingProgram
	if a.load(ctx, key, &program) {
		return &program, nil
	}

	fresh, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.store(ctx, key, fresh, trainingByIDTTL)
	return fresh, nil
}

// GetByIDs is served from the database; batch reads are already a single query
func (a *CachedTrainingAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.TrainingProgram, error) {
	return a.adapter.GetByIDs(ctx, ids)
}

// List retrieves the whole collection with caching
func (a *CachedTrainingAdapter) List(ctx context.Context) ([]*entities.TrainingProgram, error) {
	var programs []*entities.TrainingProgram
	if a.load(ctx, trainingsListCacheKey, &programs) {
		return programs, nil
	}

	fresh, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}
	a.store(ctx, trainingsListCacheKey, fresh, trainingsListTTL)
	return fresh, nil
}

// ListByTrainer is not cached
func (a *CachedTrainingAdapter) ListByTrainer(ctx context.Context, trainerID string) ([]*entities.TrainingProgram, error) {
	return a.adapter.ListByTrainer(ctx, trainerID)
}

func (a *CachedTrainingAdapter) load(ctx context.Context, key string, dest interface{}) bool {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		observability.RecordCacheMiss(ctx, a.metrics, key)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached value")
		observability.RecordCacheMiss(ctx, a.metrics, key)
		return false
	}
	observability.RecordCacheHit(ctx, a.metrics, key)
	return true
}

func (a *CachedTrainingAdapter) store(ctx context.Context, key string, value interface{}, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to cache value")
	}
}
