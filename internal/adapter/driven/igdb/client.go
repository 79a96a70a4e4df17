// Package igdb implements the MetadataSource port for the IGDB games API.
package igdb

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MetadataSource = (*Client)(nil)

// TokenSource supplies a currently valid bearer token for every request.
type TokenSource interface {
	EnsureValidToken(ctx context.Context) (string, error)
}

// game is the subset of an IGDB game document requested by searchQuery.
type game struct {
	Name             string `json:"name"`
	FirstReleaseDate int64  `json:"first_release_date"`
	Summary          string `json:"summary"`
	Genres           []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Platforms []struct {
		Name string `json:"name"`
	} `json:"platforms"`
	Cover *struct {
		URL string `json:"url"`
	} `json:"cover"`
}

// Client searches IGDB. Every request asks tokens for a bearer token first.
type Client struct {
	http     *resty.Client
	clientID string
	tokens   TokenSource
	policy   *bluemonday.Policy
}

// NewClient creates a Client. http must already carry the IGDB base URL.
func NewClient(http *resty.Client, clientID string, tokens TokenSource) *Client {
	return &Client{
		http:     http,
		clientID: clientID,
		tokens:   tokens,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Name returns the source name used for attribution and cache keys.
func (c *Client) Name() model.SourceName {
	return model.SourceIGDB
}

// Search returns the top IGDB match for title, or nil when there is none.
func (c *Client) Search(ctx context.Context, title string) (*model.PartialGameRecord, error) {
	token, err := c.tokens.EnsureValidToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("igdb token: %w", err)
	}

	var games []game
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Client-ID", c.clientID).
		SetAuthToken(token).
		SetHeader("Content-Type", "text/plain").
		SetBody(searchQuery(title)).
		SetResult(&games).
		ForceContentType("application/json").
		Post("/games")
	if err != nil {
		return nil, fmt.Errorf("igdb search %q: %w", title, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("igdb search %q returned HTTP %d", title, resp.StatusCode())
	}

	if len(games) == 0 {
		return nil, nil
	}
	return c.normalize(games[0]), nil
}

// searchQuery builds the Apicalypse body for a single best match.
func searchQuery(title string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(title)
	return fmt.Sprintf(
		`fields name, first_release_date, genres.name, platforms.name, summary, cover.url; search "%s"; limit 1;`,
		escaped,
	)
}

func (c *Client) normalize(g game) *model.PartialGameRecord {
	rec := &model.PartialGameRecord{
		Title:       g.Name,
		Description: plainText(c.policy, g.Summary),
		Source:      model.SourceIGDB,
	}
	if g.FirstReleaseDate != 0 {
		rec.ReleaseYear = time.Unix(g.FirstReleaseDate, 0).UTC().Year()
	}
	if len(g.Platforms) > 0 {
		rec.Platform = g.Platforms[0].Name
	}
	if len(g.Genres) > 0 {
		rec.Genre = g.Genres[0].Name
	}
	if g.Cover != nil && g.Cover.URL != "" {
		rec.CoverURL = CoverURL(g.Cover.URL)
	}
	return rec
}

// plainText strips any markup from s. StrictPolicy escapes entities, which
// Discord would render literally, so they are unescaped again.
func plainText(p *bluemonday.Policy, s string) string {
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// CoverURL turns IGDB's protocol-relative thumbnail path into an absolute
// URL of the large cover size.
func CoverURL(raw string) string {
	u := raw
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return strings.Replace(u, "t_thumb", "t_cover_big", 1)
}
