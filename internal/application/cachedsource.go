package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

var errEmptyCacheEntry = errors.New("cached record has no fields")

// CachedSource answers title lookups for one MetadataSource, consulting the
// MetadataCache first and storing successful upstream results.
type CachedSource struct {
	source driven.MetadataSource
	cache  *MetadataCache
	logger *slog.Logger
}

// NewCachedSource wraps source with cache.
func NewCachedSource(source driven.MetadataSource, cache *MetadataCache, logger *slog.Logger) *CachedSource {
	return &CachedSource{source: source, cache: cache, logger: logger}
}

// Name returns the wrapped source's name.
func (s *CachedSource) Name() model.SourceName {
	return s.source.Name()
}

// Fetch returns the record for title. A fresh cache entry is returned
// without contacting the upstream; an entry that decodes to a record with no
// fields counts as unreadable. Empty and failed lookups are not cached.
func (s *CachedSource) Fetch(ctx context.Context, title string) model.FetchOutcome {
	name := s.source.Name()
	key := s.cache.Key(name, title)

	if raw, ok := s.cache.Read(ctx, key); ok {
		var rec model.PartialGameRecord
		err := json.Unmarshal(raw, &rec)
		if err == nil && rec.Empty() {
			err = errEmptyCacheEntry
		}
		if err == nil {
			rec.Source = name
			return model.FetchOutcome{Source: name, Status: model.OutcomeFound, Record: &rec, CacheHit: true}
		}
		s.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
	}

	rec, err := s.source.Search(ctx, title)
	if err != nil {
		s.logger.Warn("metadata source failed", "source", name, "title", title, "error", err)
		return model.FetchOutcome{Source: name, Status: model.OutcomeFailed, Err: err}
	}
	if rec == nil {
		s.logger.Debug("metadata source has no match", "source", name, "title", title)
		return model.FetchOutcome{Source: name, Status: model.OutcomeEmpty}
	}

	rec.Source = name
	if raw, err := json.Marshal(rec); err == nil {
		s.cache.Write(ctx, key, raw)
	}
	return model.FetchOutcome{Source: name, Status: model.OutcomeFound, Record: rec}
}
