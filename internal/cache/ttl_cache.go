package cache

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/store"
)

// Entry is a cached value together with the time it was stored.
type Entry[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"storedAt"`
}

type ttlOptions struct {
	now func() time.Time
}

// TTLOption configures a TTLCache.
type TTLOption func(*ttlOptions)

// WithClock replaces time.Now as the cache's notion of the current time.
func WithClock(now func() time.Time) TTLOption {
	return func(o *ttlOptions) {
		o.now = now
	}
}

// TTLCache serves a value only while it is younger than the ttl.
// Stale entries are overwritten on the next Set; the scheduler sweeps the rest.
type TTLCache[T any] struct {
	entries *PrefixedCache[Entry[T]]
	store   *Store
	ttl     time.Duration
	now     func() time.Time
}

// NewTTLCache creates a ttl cache on top of the shared store.
func NewTTLCache[T any](s *Store, prefix string, ttl time.Duration, opts ...TTLOption) *TTLCache[T] {
	o := ttlOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTLCache[T]{
		entries: NewPrefixedCache[Entry[T]](s, prefix),
		store:   s,
		ttl:     ttl,
		now:     o.now,
	}
}

// TTL returns the freshness window of the cache.
func (c *TTLCache[T]) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value for key if it is still fresh.
func (c *TTLCache[T]) Get(ctx context.Context, key string) (T, bool) {
	entry, err := c.entries.Get(ctx, key)
	if err != nil {
		log.Debug("Cache miss", "key", key)
		return *new(T), false
	}
	if c.now().Sub(entry.StoredAt) >= c.ttl {
		log.Debug("Cache entry expired", "key", key, "storedAt", entry.StoredAt)
		return *new(T), false
	}
	log.Debug("Cache hit", "key", key)
	return entry.Value, true
}

// Set stores value under key, stamped with the current time.
// When the memory store is full, expired entries are swept first and a new key is dropped if there is still no room.
func (c *TTLCache[T]) Set(ctx context.Context, key string, value T) {
	if c.store.Full() && !c.store.has(c.entries.key(key)) {
		c.store.DeleteExpired()
		if c.store.Full() {
			log.Debug("Cache full, skipping set", "key", key)
			return
		}
	}
	entry := Entry[T]{Value: value, StoredAt: c.now()}
	if err := c.entries.Set(ctx, key, entry, store.WithExpiration(c.ttl)); err != nil {
		log.Warn("Failed to store cache entry", "key", key, "error", err)
	}
}

// Delete drops the entry for key.
func (c *TTLCache[T]) Delete(ctx context.Context, key string) {
	if err := c.entries.Delete(ctx, key); err != nil {
		log.Debug("Failed to delete cache entry", "key", key, "error", err)
	}
}
