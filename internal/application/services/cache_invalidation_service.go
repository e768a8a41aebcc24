package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
)

// CacheKeysFunc returns the cache keys an event makes stale
type CacheKeysFunc func(event *entities.Event) []string

// CacheInvalidationService drops cached program reads when another process
// announces a new program
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	keysFor  CacheKeysFunc
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus, keysFor CacheKeysFunc) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		keysFor:  keysFor,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for program events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelTrainings)
	if err != nil {
		return fmt.Errorf("failed to subscribe to training updates: %w", err)
	}

	go s.processEvents(eventChan)
	observability.GetLogger().Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops the service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	<-s.done
	observability.GetLogger().Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.Event) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := observability.GetLogger()
	for _, key := range s.keysFor(event) {
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to invalidate cache key")
			continue
		}
		logger.Debug().Str("key", key).Str("event_type", string(event.Type)).Msg("Invalidated cache key")
	}
}
