package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
)

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// MemoryAdapter is a process-local CacheProvider used when Redis is unavailable.
// Reads do not extend an entry's lifetime.
type MemoryAdapter struct {
	items     *ttlcache.Cache[string, []byte]
	closeOnce sync.Once
}

// NewMemoryAdapter creates an empty in-process cache and starts its expiry
// loop. Call Close to stop it.
func NewMemoryAdapter() *MemoryAdapter {
	items := ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go items.Start()

	return &MemoryAdapter{items: items}
}

// Get retrieves a copy of a live value
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	item := a.items.Get(key)
	if item == nil {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	}
	return append([]byte(nil), item.Value()...), nil
}

// Set stores a copy of value. Zero or less means no expiry.
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	ttl := ttlcache.NoTTL
	if expirationSeconds > 0 {
		ttl = time.Duration(expirationSeconds) * time.Second
	}
	a.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.items.Delete(key)
	return nil
}

// Exists checks if a live key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	return a.items.Get(key) != nil, nil
}

// Close stops the expiry loop
func (a *MemoryAdapter) Close() {
	a.closeOnce.Do(a.items.Stop)
}
