package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/trainingportal/internal/adapters/cache"
	"github.com/zatekoja/trainingportal/internal/adapters/events"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
)

func TestCacheInvalidationService(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryAdapter()
	bus := events.NewLocalEventBus()
	require.NoError(t, store.Set(ctx, "trainings:list", []byte("[]"), 0))
	require.NoError(t, store.Set(ctx, "unrelated", []byte("1"), 0))

	service := services.NewCacheInvalidationService(store, bus, func(event *entities.Event) []string {
		return []string{"trainings:list"}
	})
	require.NoError(t, service.Start())
	defer service.Stop()

	require.Eventually(t, func() bool { return bus.SubscriberCount(providers.EventChannelTrainings) == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, bus.Publish(ctx, providers.EventChannelTrainings, entities.NewEvent(entities.EventTypeTrainingCreated, "p1", nil)))

	assert.Eventually(t, func() bool {
		exists, _ := store.Exists(ctx, "trainings:list")
		return !exists
	}, time.Second, 10*time.Millisecond)

	exists, err := store.Exists(ctx, "unrelated")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCacheWarmingService(t *testing.T) {
	ctx := context.Background()
	trainings := new(MockTrainingRepository)
	trainings.On("List", ctx).Return([]*entities.TrainingProgram{{ID: "p1"}, {ID: "p2"}}, nil)
	trainings.On("GetByID", ctx, "p1").Return(&entities.TrainingProgram{ID: "p1"}, nil)
	trainings.On("GetByID", ctx, "p2").Return(&entities.TrainingProgram{ID: "p2"}, nil)

	require.NoError(t, services.NewCacheWarmingService(trainings).WarmCache(ctx))
	trainings.AssertExpectations(t)
}

func TestCacheWarmingService_StartPeriodicWarming(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	warmed := make(chan struct{}, 1)
	trainings := new(MockTrainingRepository)
	trainings.On("List", mock.Anything).Return([]*entities.TrainingProgram{}, nil).Run(func(mock.Arguments) {
		select {
		case warmed <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		services.NewCacheWarmingService(trainings).StartPeriodicWarming(ctx, time.Hour)
		close(done)
	}()

	select {
	case <-warmed:
	case <-time.After(2 * time.Second):
		t.Fatal("initial warming did not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("warming loop did not stop")
	}
}
