package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*CacheRepo)(nil)

// CacheRepo is the SQLite implementation of the CacheStore port.
// Each key is its own row, so concurrent writes to different keys never
// overwrite one another.
type CacheRepo struct {
	db *DB
}

// NewCacheRepo creates a new CacheRepo backed by the given DB.
func NewCacheRepo(db *DB) *CacheRepo {
	return &CacheRepo{db: db}
}

// Init applies pending migrations so the api_cache table exists.
func (r *CacheRepo) Init(_ context.Context) error {
	if _, err := RunMigrations(r.db.Writer); err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	return nil
}

// Get returns the entry stored under key, or nil if there is none.
func (r *CacheRepo) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	const query = `SELECT key, value, written_at FROM api_cache WHERE key = ?`

	var (
		entry     model.CacheEntry
		value     string
		writtenAt int64
	)
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&entry.Key, &value, &writtenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry %q: %w", key, err)
	}

	entry.Value = []byte(value)
	entry.WrittenAt = fromMillis(writtenAt)
	return &entry, nil
}

// Put upserts the entry; the last write for a key wins.
func (r *CacheRepo) Put(ctx context.Context, entry model.CacheEntry) error {
	const query = `
		INSERT INTO api_cache (key, value, written_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, written_at = excluded.written_at`

	_, err := r.db.Writer.ExecContext(ctx, query, entry.Key, string(entry.Value), toMillis(entry.WrittenAt))
	if err != nil {
		return fmt.Errorf("put cache entry %q: %w", entry.Key, err)
	}
	return nil
}
