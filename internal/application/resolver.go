package application

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// Fetcher returns a typed outcome for one source. CachedSource implements it.
type Fetcher interface {
	Name() model.SourceName
	Fetch(ctx context.Context, title string) model.FetchOutcome
}

// sourceOrder fixes the order of MergedGameRecord.Sources.
var sourceOrder = []model.SourceName{model.SourceIGDB, model.SourceHLTB, model.SourceRAWG}

// Resolver queries every configured source concurrently and merges their
// records into one view of a title.
type Resolver struct {
	sources []Fetcher
	logger  *slog.Logger
}

// NewResolver creates a Resolver over sources. Sources that are not
// configured (missing credentials) are simply left out.
func NewResolver(logger *slog.Logger, sources ...Fetcher) *Resolver {
	return &Resolver{sources: sources, logger: logger}
}

// Resolve returns the merged record for title. It never fails: when no
// source has data the result carries only the input title.
func (r *Resolver) Resolve(ctx context.Context, title string) model.MergedGameRecord {
	merged, _ := r.ResolveDetailed(ctx, title)
	return merged
}

// ResolveDetailed is Resolve plus the individual outcome of every source,
// in the canonical source order.
func (r *Resolver) ResolveDetailed(ctx context.Context, title string) (model.MergedGameRecord, []model.FetchOutcome) {
	outcomes := make([]model.FetchOutcome, len(r.sources))

	// Fetchers report failures in their outcome, so no goroutine returns an
	// error and one failing source never cancels the others.
	var g errgroup.Group
	for i, src := range r.sources {
		g.Go(func() error {
			outcomes[i] = src.Fetch(ctx, title)
			return nil
		})
	}
	_ = g.Wait()

	merged := Merge(title, outcomes)
	r.logger.Debug("metadata resolved",
		"title", title,
		"sources", merged.SourceLabel(),
		"queried", len(outcomes),
	)
	return merged, orderOutcomes(outcomes)
}

// Merge reduces outcomes into one record. IGDB wins the descriptive fields
// and the cover, HowLongToBeat supplies play times, and RAWG supplies the
// rating and a fallback cover.
func Merge(title string, outcomes []model.FetchOutcome) model.MergedGameRecord {
	found := make(map[model.SourceName]*model.PartialGameRecord, len(outcomes))
	for _, o := range outcomes {
		if o.Found() {
			found[o.Source] = o.Record
		}
	}

	merged := model.MergedGameRecord{Title: title}

	if igdb := found[model.SourceIGDB]; igdb != nil {
		if igdb.Title != "" {
			merged.Title = igdb.Title
		}
		merged.ReleaseYear = igdb.ReleaseYear
		merged.Platform = igdb.Platform
		merged.Genre = igdb.Genre
		merged.Description = igdb.Description
		merged.CoverURL = igdb.CoverURL
	}

	if hltb := found[model.SourceHLTB]; hltb != nil {
		merged.HoursMain = hltb.HoursMain
		merged.HoursMainExtra = hltb.HoursMainExtra
		merged.HoursCompletionist = hltb.HoursCompletionist
	}

	if rawg := found[model.SourceRAWG]; rawg != nil {
		merged.Rating = rawg.Rating
		if merged.CoverURL == "" {
			merged.CoverURL = rawg.CoverURL
		}
	}

	for _, name := range sourceOrder {
		if found[name] != nil {
			merged.Sources = append(merged.Sources, name)
		}
	}
	return merged
}

func orderOutcomes(outcomes []model.FetchOutcome) []model.FetchOutcome {
	ordered := make([]model.FetchOutcome, 0, len(outcomes))
	for _, name := range sourceOrder {
		for _, o := range outcomes {
			if o.Source == name {
				ordered = append(ordered, o)
			}
		}
	}
	for _, o := range outcomes {
		if !slices.Contains(sourceOrder, o.Source) {
			ordered = append(ordered, o)
		}
	}
	return ordered
}
