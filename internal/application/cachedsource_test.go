package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

func newTestCachedSource(src *stubSource, clock *fakeClock) (*CachedSource, *memCacheStore) {
	store := newMemCacheStore()
	cache := NewMetadataCache(store, DefaultCacheTTL, discardLogger(), WithCacheClock(clock.Now))
	return NewCachedSource(src, cache, discardLogger()), store
}

func TestCachedSource_FoundIsCached(t *testing.T) {
	src := &stubSource{name: model.SourceRAWG, rec: &model.PartialGameRecord{Title: "EarthBound", Rating: 4.4}}
	cs, store := newTestCachedSource(src, newFakeClock())
	ctx := context.Background()

	first := cs.Fetch(ctx, "EarthBound")
	second := cs.Fetch(ctx, "earthbound")

	require.True(t, first.Found())
	require.True(t, second.Found())
	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, model.SourceRAWG, second.Record.Source)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Contains(t, store.entries, "rawg_earthbound")
}

func TestCachedSource_ExpiredEntryRefetched(t *testing.T) {
	clock := newFakeClock()
	src := &stubSource{name: model.SourceHLTB, rec: &model.PartialGameRecord{HoursMain: 12}}
	cs, _ := newTestCachedSource(src, clock)
	ctx := context.Background()

	cs.Fetch(ctx, "Mother 3")
	clock.Advance(DefaultCacheTTL + time.Millisecond)
	out := cs.Fetch(ctx, "Mother 3")

	assert.False(t, out.CacheHit)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSource_EmptyNotCached(t *testing.T) {
	src := &stubSource{name: model.SourceIGDB}
	cs, store := newTestCachedSource(src, newFakeClock())
	ctx := context.Background()

	out := cs.Fetch(ctx, "Nothing")
	cs.Fetch(ctx, "Nothing")

	assert.Equal(t, model.OutcomeEmpty, out.Status)
	assert.Nil(t, out.Record)
	assert.Empty(t, store.entries)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSource_FailureReported(t *testing.T) {
	boom := errors.New("connection refused")
	src := &stubSource{name: model.SourceHLTB, err: boom}
	cs, store := newTestCachedSource(src, newFakeClock())

	out := cs.Fetch(context.Background(), "Chrono Trigger")

	assert.Equal(t, model.OutcomeFailed, out.Status)
	assert.ErrorIs(t, out.Err, boom)
	assert.False(t, out.Found())
	assert.Empty(t, store.entries)
}

func TestCachedSource_UnreadableEntryRefetched(t *testing.T) {
	clock := newFakeClock()
	src := &stubSource{name: model.SourceRAWG, rec: &model.PartialGameRecord{Rating: 3.9}}
	cs, store := newTestCachedSource(src, clock)
	store.entries["rawg_zelda"] = model.CacheEntry{Key: "rawg_zelda", Value: []byte(`not json`), WrittenAt: clock.Now()}

	out := cs.Fetch(context.Background(), "Zelda")

	require.True(t, out.Found())
	assert.False(t, out.CacheHit)
	assert.InDelta(t, 3.9, out.Record.Rating, 0.001)
}

func TestCachedSource_EntryWithoutFieldsRefetched(t *testing.T) {
	clock := newFakeClock()
	src := &stubSource{name: model.SourceIGDB, rec: &model.PartialGameRecord{Title: "Chrono Trigger", ReleaseYear: 1995}}
	cs, store := newTestCachedSource(src, clock)
	store.entries["igdb_chrono trigger"] = model.CacheEntry{
		Key:       "igdb_chrono trigger",
		Value:     []byte(`{"nombre":"Chrono Trigger","source":"IGDB"}`),
		WrittenAt: clock.Now(),
	}

	out := cs.Fetch(context.Background(), "Chrono Trigger")

	require.True(t, out.Found())
	assert.False(t, out.CacheHit)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1995, out.Record.ReleaseYear)
}
