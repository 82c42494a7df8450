package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process Cache for single-instance deployments. Values
// are kept as encoded JSON so callers never share memory with the cache.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates an in-process cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(ttl, 2*ttl)}
}

func (mc *MemoryCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := mc.store.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw.([]byte), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (mc *MemoryCache) SetJSON(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	mc.store.SetDefault(key, data)
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		mc.store.Delete(key)
	}
	return nil
}

func (mc *MemoryCache) Health(context.Context) error { return nil }

func (mc *MemoryCache) Close() error {
	mc.store.Flush()
	return nil
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopCache) SetJSON(context.Context, string, interface{}) error         { return nil }
func (NopCache) Delete(context.Context, ...string) error                    { return nil }
func (NopCache) Health(context.Context) error                               { return nil }
func (NopCache) Close() error                                               { return nil }
