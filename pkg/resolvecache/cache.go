package resolvecache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocachestore "github.com/eko/gocache/store/go_cache/v4"
	redisstore "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	KindRoute    = "route"
	KindHeadsign = "headsign"
)

const expiration = 6 * time.Hour

// Cache stores resolution results for a single run. Every key is namespaced
// by the run ID so results never leak between runs sharing a backend.
type Cache struct {
	RunID string

	cache cache.CacheInterface[string]

	hits   atomic.Int64
	misses atomic.Int64
}

func NewMemory(runID string) *Cache {
	client := gocache.New(expiration, 10*time.Minute)

	return &Cache{
		RunID: runID,
		cache: cache.New[string](gocachestore.NewGoCache(client)),
	}
}

func NewRedis(runID string, client *redis.Client) *Cache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &Cache{
		RunID: runID,
		cache: cache.New[string](redisStore),
	}
}

// Hits is the number of Get calls answered from the cache
func (c *Cache) Hits() int64 {
	return c.hits.Load()
}

func (c *Cache) Misses() int64 {
	return c.misses.Load()
}

func (c *Cache) key(kind string, id string) string {
	return fmt.Sprintf("translink-train:%s:%s:%s", c.RunID, kind, id)
}

// Get returns the cached value, or false on a miss
func Get[T any](ctx context.Context, c *Cache, kind string, id string) (*T, bool) {
	cacheValue, err := c.cache.Get(ctx, c.key(kind, id))
	if err != nil || cacheValue == "" {
		c.misses.Add(1)
		return nil, false
	}

	var value T
	if err := json.Unmarshal([]byte(cacheValue), &value); err != nil {
		log.Error().Err(err).Str("kind", kind).Str("id", id).Msg("Failed to decode cached value")
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return &value, true
}

func Set[T any](ctx context.Context, c *Cache, kind string, id string, value *T) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.cache.Set(ctx, c.key(kind, id), string(valueJSON), store.WithExpiration(expiration))
}
