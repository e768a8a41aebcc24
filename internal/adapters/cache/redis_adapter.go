package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	redisclient "github.com/zatekoja/trainingportal/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

var _ providers.CacheProvider = (*RedisAdapter)(nil)

// RedisAdapter keeps sessions and cached programs in Redis. A missing key is
// reported as providers.ErrCacheMiss; anything else Redis returns is an
// external error.
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{client: client}
}

func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := a.client.Client().Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	case err != nil:
		return nil, apperrors.NewExternalError("cache read failed for "+key, err)
	}
	return value, nil
}

// Set stores value under key. Zero or less means no expiry.
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	var ttl time.Duration
	if expirationSeconds > 0 {
		ttl = time.Duration(expirationSeconds) * time.Second
	}
	if err := a.client.Client().Set(ctx, key, value, ttl).Err(); err != nil {
		return apperrors.NewExternalError("cache write failed for "+key, err)
	}
	return nil
}

func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Client().Del(ctx, key).Err(); err != nil {
		return apperrors.NewExternalError("cache delete failed for "+key, err)
	}
	return nil
}

func (a *RedisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.NewExternalError("cache lookup failed for "+key, err)
	}
	return n > 0, nil
}
