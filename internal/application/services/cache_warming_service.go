package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
)

// CacheWarmingService primes cached program reads
type CacheWarmingService struct {
	trainings repositories.TrainingRepository
}

// NewCacheWarmingService creates a new cache warming service. trainings
// should be the cached repository.
func NewCacheWarmingService(trainings repositories.TrainingRepository) *CacheWarmingService {
	return &CacheWarmingService{trainings: trainings}
}

// WarmCache reads the program list and each program once so the first
// visitors are served from cache
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	programs, err := s.trainings.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm program list: %w", err)
	}

	warmed := 0
	for _, program := range programs {
		if _, err := s.trainings.GetByID(ctx, program.ID); err != nil {
			logger.Warn().Err(err).Str("training_id", program.ID).Msg("Failed to warm program")
			continue
		}
		warmed++
	}

	logger.Info().
		Int("programs", warmed).
		Dur("duration", time.Since(start)).
		Msg("Cache warming completed")
	return nil
}

// StartPeriodicWarming warms once immediately and then on every interval
// until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	logger := observability.LoggerFromContext(ctx)
	if err := s.WarmCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.WarmCache(ctx); err != nil {
				logger.Warn().Err(err).Msg("Periodic cache warming failed")
			}
		}
	}
}
