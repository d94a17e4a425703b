package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	"github.com/pubzy/giveaways/internal/config"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Store is the cache backend shared by all prefixed caches of the process.
type Store struct {
	cache      *cache.Cache[any]
	cacheType  config.CacheType
	memory     *gocache.Cache
	redis      *redis.Client
	maxEntries int
}

// New creates the cache backend selected by cfg.
func New(cfg *config.CacheConfig) *Store {
	if cfg == nil {
		cfg = &config.CacheConfig{Type: config.CacheTypeMemory}
	}
	switch cfg.Type {
	case config.CacheTypeRedis:
		return newRedisStore(cfg)
	default:
		return newMemoryStore(cfg)
	}
}

func newMemoryStore(cfg *config.CacheConfig) *Store {
	// never expire items in memory cache by a janitor, we use the scheduler to sweep expired entries
	gocacheClient := gocache.New(gocache.NoExpiration, gocache.NoExpiration)
	gocacheStore := go_store.NewGoCache(gocacheClient)
	return &Store{
		cache:      cache.New[any](gocacheStore),
		cacheType:  config.CacheTypeMemory,
		memory:     gocacheClient,
		maxEntries: cfg.MaxEntries,
	}
}

func newRedisStore(cfg *config.CacheConfig) *Store {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	redisStore := redis_store.NewRedis(redisClient)
	return &Store{
		cache:     cache.New[any](redisStore),
		cacheType: config.CacheTypeRedis,
		redis:     redisClient,
	}
}

// Type returns the configured cache type.
func (s *Store) Type() config.CacheType {
	return s.cacheType
}

// Len returns the number of stored entries, or -1 when the backend can't tell.
func (s *Store) Len() int {
	if s.memory == nil {
		return -1
	}
	return s.memory.ItemCount()
}

// Full reports whether the memory store reached its configured capacity.
// Redis enforces its own memory limits.
func (s *Store) Full() bool {
	if s.memory == nil || s.maxEntries <= 0 {
		return false
	}
	return s.memory.ItemCount() >= s.maxEntries
}

func (s *Store) has(key string) bool {
	if s.memory == nil {
		return false
	}
	_, ok := s.memory.Get(key)
	return ok
}

// DeleteExpired removes expired entries from the memory store.
func (s *Store) DeleteExpired() {
	if s.memory != nil {
		s.memory.DeleteExpired()
	}
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Ping(ctx).Err()
}

// Clear removes all values from the cache.
func (s *Store) Clear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// GetStats returns the cache statistics.
func (s *Store) GetStats() *codec.Stats {
	return s.cache.GetCodec().GetStats()
}

// Close releases the backend connection, if any.
func (s *Store) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// PrefixedCache wraps the shared store and adds a prefix to all keys.
type PrefixedCache[T any] struct {
	store  *Store
	prefix string
}

// NewPrefixedCache creates a new prefixed cache wrapper.
func NewPrefixedCache[T any](s *Store, prefix string) *PrefixedCache[T] {
	return &PrefixedCache[T]{
		store:  s,
		prefix: prefix,
	}
}

func (p *PrefixedCache[T]) key(key any) string {
	return p.prefix + fmt.Sprintf("%v", key)
}

// Get retrieves a value from the cache with the prefixed key.
func (p *PrefixedCache[T]) Get(ctx context.Context, key any) (T, error) {
	raw, err := p.store.cache.Get(ctx, p.key(key))
	if err != nil {
		return *new(T), err
	}
	// the memory store hands back what was stored, redis returns a string
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return *new(T), fmt.Errorf("unexpected cache value type %T", raw)
	}
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return *new(T), err
	}
	return result, nil
}

// Set stores a value in the cache with the prefixed key.
func (p *PrefixedCache[T]) Set(ctx context.Context, key any, object T, options ...store.Option) error {
	data, err := json.Marshal(object)
	if err != nil {
		return err
	}
	return p.store.cache.Set(ctx, p.key(key), data, options...)
}

// Delete removes a value from the cache with the prefixed key.
func (p *PrefixedCache[T]) Delete(ctx context.Context, key any) error {
	return p.store.cache.Delete(ctx, p.key(key))
}

// GetType returns the cache type.
func (p *PrefixedCache[T]) GetType() string {
	return p.store.cache.GetType()
}
