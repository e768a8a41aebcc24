//go:build integration

package cache_test

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/trainingportal/internal/adapters/cache"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/redis"
	"github.com/zatekoja/trainingportal/pkg/config"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
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
	require.NoError(t, err)
	return client
}

func TestRedisAdapterIntegration(t *testing.T) {
	client := newTestRedisClient(t)
	defer client.Close()

	adapter := cache.NewRedisAdapter(client)
	ctx := context.Background()
	key := "test:session:" + uuid.New().String()

	_, err := adapter.Get(ctx, key)
	assert.True(t, errors.Is(err, providers.ErrCacheMiss))

	require.NoError(t, adapter.Set(ctx, key, []byte(`{"uid":"u-1"}`), 60))

	value, err := adapter.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid":"u-1"}`, string(value))

	exists, err := adapter.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, adapter.Delete(ctx, key))

	exists, err = adapter.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisAdapterIntegration_BackendErrorsAreExternal(t *testing.T) {
	client := newTestRedisClient(t)
	adapter := cache.NewRedisAdapter(client)
	require.NoError(t, client.Close())

	ctx := context.Background()
	_, err := adapter.Get(ctx, "test:closed")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.False(t, errors.Is(err, providers.ErrCacheMiss))

	err = adapter.Set(ctx, "test:closed", []byte("v"), 10)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))

	_, err = adapter.Exists(ctx, "test:closed")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}
