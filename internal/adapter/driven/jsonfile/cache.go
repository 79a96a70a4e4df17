package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*CacheFile)(nil)

// fileEntry is one value in cache_api.json.
type fileEntry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
}

// CacheFile is a CacheStore backed by a single JSON object on disk.
// Every operation reads the whole file; Put rewrites it. mu serializes
// goroutines of this process, the file lock serializes processes.
type CacheFile struct {
	path   string
	mu     sync.Mutex
	lock   *flock.Flock
	logger *slog.Logger
}

// NewCacheFile creates a CacheFile for path. The file is not touched until
// Init, Get or Put is called.
func NewCacheFile(path string, logger *slog.Logger) *CacheFile {
	return &CacheFile{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Init creates the file holding an empty object if it does not exist yet.
func (c *CacheFile) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lockExclusive(ctx); err != nil {
		return err
	}
	defer c.unlock()

	entries := map[string]fileEntry{}
	exists, err := readJSON(c.path, &entries)
	if exists {
		// A corrupt file is left for Get to report; Init only creates.
		return nil
	}
	if err != nil {
		return err
	}

	if err := writeJSON(c.path, entries); err != nil {
		return fmt.Errorf("init cache file: %w", err)
	}
	c.logger.Info("cache file created", "path", c.path)
	return nil
}

// Get returns the entry stored under key, or nil if there is none. Values
// written by the first version of the bot are translated on read.
func (c *CacheFile) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return nil, fmt.Errorf("lock %s: %w", c.path, err)
	}
	defer c.unlock()

	entries := map[string]fileEntry{}
	if _, err := readJSON(c.path, &entries); err != nil {
		return nil, err
	}

	e, ok := entries[key]
	if !ok {
		return nil, nil
	}
	return &model.CacheEntry{
		Key:       key,
		Value:     upgradeValue(e.Value),
		WrittenAt: time.UnixMilli(e.Timestamp).UTC(),
	}, nil
}

// Put upserts the entry and rewrites the file.
func (c *CacheFile) Put(ctx context.Context, entry model.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lockExclusive(ctx); err != nil {
		return err
	}
	defer c.unlock()

	entries := map[string]fileEntry{}
	if _, err := readJSON(c.path, &entries); err != nil {
		return err
	}

	entries[entry.Key] = fileEntry{Value: entry.Value, Timestamp: entry.WrittenAt.UnixMilli()}
	return writeJSON(c.path, entries)
}

func (c *CacheFile) lockExclusive(ctx context.Context) error {
	if _, err := c.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock %s: %w", c.path, err)
	}
	return nil
}

func (c *CacheFile) unlock() {
	if err := c.lock.Unlock(); err != nil {
		c.logger.Warn("failed to release cache file lock", "path", c.path, "error", err)
	}
}
