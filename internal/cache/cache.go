package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/sirupsen/logrus"
)

// Cache stores JSON snapshots of single entities keyed by Key.
type Cache interface {
	// GetJSON decodes the value at key into dest. found is false on a miss.
	GetJSON(ctx context.Context, key string, dest interface{}) (found bool, err error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Health(ctx context.Context) error
	Close() error
}

const keyPrefix = "tracking"

// Key builds the cache key for one entity.
func Key(entity string, id interface{}) string {
	return fmt.Sprintf("%s:%s:%v", keyPrefix, strings.ToLower(entity), id)
}

// New returns the cache selected by cfg.Cache.Driver.
func New(cfg *config.Config, logger *logrus.Logger) (Cache, error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		rc, err := NewRedisClient(&cfg.Redis, cfg.Cache.TTL, logger)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case config.CacheMemory:
		return NewMemoryCache(cfg.Cache.TTL), nil
	case config.CacheNone, "":
		return NopCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}
