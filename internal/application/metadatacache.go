package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/text/cases"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// DefaultCacheTTL is how long a cached upstream response stays fresh.
const DefaultCacheTTL = 7 * 24 * time.Hour

// MetadataCache is a best-effort, time-bounded cache over a CacheStore.
// Keys are case-folded before they reach the store. Store failures are
// logged and degrade to cache misses; they never reach the caller.
type MetadataCache struct {
	store  driven.CacheStore
	ttl    time.Duration
	fold   cases.Caser
	now    func() time.Time
	logger *slog.Logger
}

// CacheOption customizes a MetadataCache.
type CacheOption func(*MetadataCache)

// WithCacheClock overrides the cache's time source.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *MetadataCache) { c.now = now }
}

// NewMetadataCache creates a MetadataCache. A non-positive ttl selects
// DefaultCacheTTL.
func NewMetadataCache(store driven.CacheStore, ttl time.Duration, logger *slog.Logger, opts ...CacheOption) *MetadataCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &MetadataCache{
		store:  store,
		ttl:    ttl,
		fold:   cases.Fold(),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init prepares the backing store. It is safe to call more than once.
func (c *MetadataCache) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Key builds the cache key for a source and title.
func (c *MetadataCache) Key(source model.SourceName, title string) string {
	return c.fold.String(source.CacheNamespace() + "_" + title)
}

// Read returns the value stored under key if it was written less than the
// TTL ago. Stale entries are left in place.
func (c *MetadataCache) Read(ctx context.Context, key string) (json.RawMessage, bool) {
	key = c.fold.String(key)

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if entry == nil || !entry.FreshAt(c.now(), c.ttl) {
		return nil, false
	}
	return entry.Value, true
}

// Write stores value under key with the current time. Failures are logged.
func (c *MetadataCache) Write(ctx context.Context, key string, value json.RawMessage) {
	key = c.fold.String(key)

	err := c.store.Put(ctx, model.CacheEntry{
		Key:       key,
		Value:     value,
		WrittenAt: c.now(),
	})
	if err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
