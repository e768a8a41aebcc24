//go:build integration

package events_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/trainingportal/internal/adapters/events"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/redis"
	"github.com/zatekoja/trainingportal/pkg/config"
)

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	port, err := strconv.Atoi(os.Getenv("TEST_REDIS_PORT"))
	if err != nil {
		port = 6379
	}

	client, err := redis.NewClient(&config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err, "Failed to create redis client")
	t.Cleanup(func() { client.Close() })
	return client
}

func waitForEvent(t *testing.T, ch <-chan *entities.Event) *entities.Event {
	t.Helper()
	select {
	case event := <-ch:
		require.NotNil(t, event)
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	eventBus := events.NewRedisEventBus(newTestRedisClient(t))
	defer eventBus.Close()

	channel := providers.GetFeedbackChannel("redis-fanout")
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel1()
	defer cancel2()

	sub1, err := eventBus.Subscribe(ctx1, channel)
	require.NoError(t, err)
	sub2, err := eventBus.Subscribe(ctx2, channel)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := entities.NewEvent(entities.EventTypeFeedbackCreated, "f1", map[string]interface{}{"rating": 5})
	require.NoError(t, eventBus.Publish(context.Background(), channel, event))

	received1 := waitForEvent(t, sub1)
	received2 := waitForEvent(t, sub2)
	assert.Equal(t, event.ID, received1.ID)
	assert.Equal(t, event.ID, received2.ID)
	assert.Equal(t, entities.EventTypeFeedbackCreated, received1.Type)
}

func TestRedisEventBusReleasesOnCancelIntegration(t *testing.T) {
	eventBus := events.NewRedisEventBus(newTestRedisClient(t))
	defer eventBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := eventBus.Subscribe(ctx, providers.GetAuthChannel("sid-cancel"))
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-sub:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("subscription was not released")
	}
}
