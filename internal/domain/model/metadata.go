package model

import "strings"

// SourceName identifies an upstream metadata provider.
type SourceName string

const (
	SourceIGDB  SourceName = "IGDB"
	SourceHLTB  SourceName = "HowLongToBeat"
	SourceRAWG  SourceName = "RAWG"
	SourceSheet SourceName = "Sheet"
)

// CacheNamespace returns the lowercase prefix used for cache keys of this source.
func (s SourceName) CacheNamespace() string {
	switch s {
	case SourceIGDB:
		return "igdb"
	case SourceHLTB:
		return "hltb"
	case SourceRAWG:
		return "rawg"
	default:
		return strings.ToLower(string(s))
	}
}

// PartialGameRecord is the normalized output of a single metadata source.
// Fields the upstream does not provide stay at their zero value; zero means unknown.
type PartialGameRecord struct {
	Title              string     `json:"title,omitempty"`
	ReleaseYear        int        `json:"release_year,omitempty"`
	Platform           string     `json:"platform,omitempty"`
	Genre              string     `json:"genre,omitempty"`
	Description        string     `json:"description,omitempty"`
	HoursMain          float64    `json:"hours_main,omitempty"`
	HoursMainExtra     float64    `json:"hours_main_extra,omitempty"`
	HoursCompletionist float64    `json:"hours_completionist,omitempty"`
	CoverURL           string     `json:"cover_url,omitempty"`
	Rating             float64    `json:"rating,omitempty"`
	Source             SourceName `json:"source"`
}

// Empty reports whether the record carries no data at all.
func (r PartialGameRecord) Empty() bool {
	return r.Title == "" && r.ReleaseYear == 0 && r.Platform == "" && r.Genre == "" &&
		r.Description == "" && r.CoverURL == "" && r.Rating == 0 &&
		r.HoursMain == 0 && r.HoursMainExtra == 0 && r.HoursCompletionist == 0
}

// MergedGameRecord is the reconciled view of all sources for one title.
type MergedGameRecord struct {
	Title              string
	ReleaseYear        int
	Platform           string
	Genre              string
	Description        string
	HoursMain          float64
	HoursMainExtra     float64
	HoursCompletionist float64
	CoverURL           string
	Rating             float64
	Sources            []SourceName
}

// SourceLabel joins the contributing sources for display, e.g. "IGDB + RAWG".
func (r MergedGameRecord) SourceLabel() string {
	names := make([]string, 0, len(r.Sources))
	for _, s := range r.Sources {
		names = append(names, string(s))
	}
	return strings.Join(names, " + ")
}

// Enriched reports whether at least one source contributed data.
func (r MergedGameRecord) Enriched() bool {
	return len(r.Sources) > 0
}
