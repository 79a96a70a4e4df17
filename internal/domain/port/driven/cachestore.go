package driven

import (
	"context"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// CacheStore defines the driven port for persisted upstream responses.
// Keys arrive already case-folded; staleness is decided by the caller.
type CacheStore interface {
	// Init prepares the backing store. It must be idempotent.
	Init(ctx context.Context) error

	// Get returns the entry for key, or (nil, nil) if none exists.
	Get(ctx context.Context, key string) (*model.CacheEntry, error)

	// Put upserts the entry. The previous value for the key is replaced.
	Put(ctx context.Context, entry model.CacheEntry) error
}
