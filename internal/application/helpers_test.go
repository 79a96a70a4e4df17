package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// memCacheStore is an in-memory CacheStore.
type memCacheStore struct {
	mu      sync.Mutex
	entries map[string]model.CacheEntry
	inits   int
	getErr  error
	putErr  error
}

func newMemCacheStore() *memCacheStore {
	return &memCacheStore{entries: make(map[string]model.CacheEntry)}
}

func (m *memCacheStore) Init(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inits++
	return nil
}

func (m *memCacheStore) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memCacheStore) Put(_ context.Context, entry model.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[entry.Key] = entry
	return nil
}

// stubSource is a MetadataSource returning a fixed record or error and
// counting its calls.
type stubSource struct {
	name  model.SourceName
	rec   *model.PartialGameRecord
	err   error
	calls atomic.Int32
}

func (s *stubSource) Name() model.SourceName { return s.name }

func (s *stubSource) Search(_ context.Context, _ string) (*model.PartialGameRecord, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if s.rec == nil {
		return nil, nil
	}
	rec := *s.rec
	return &rec, nil
}
