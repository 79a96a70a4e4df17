// Package rawg implements the MetadataSource port for the RAWG video game
// database.
package rawg

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MetadataSource = (*Client)(nil)

type searchResponse struct {
	Results []struct {
		Name            string  `json:"name"`
		BackgroundImage string  `json:"background_image"`
		Rating          float64 `json:"rating"`
	} `json:"results"`
}

// Client searches RAWG with an API key passed as a query parameter.
type Client struct {
	http *resty.Client
	key  string
}

// NewClient creates a Client. http must already carry the RAWG base URL.
func NewClient(http *resty.Client, key string) *Client {
	return &Client{http: http, key: key}
}

// Name returns the source name used for attribution and cache keys.
func (c *Client) Name() model.SourceName {
	return model.SourceRAWG
}

// Search returns the cover image and community rating of the top match for
// title. A rating of 0 means the game is unrated and is left out.
func (c *Client) Search(ctx context.Context, title string) (*model.PartialGameRecord, error) {
	var body searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":       c.key,
			"search":    title,
			"page_size": "1",
		}).
		SetResult(&body).
		ForceContentType("application/json").
		Get("/api/games")
	if err != nil {
		return nil, fmt.Errorf("rawg search %q: %w", title, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rawg search %q returned HTTP %d", title, resp.StatusCode())
	}

	if len(body.Results) == 0 {
		return nil, nil
	}

	first := body.Results[0]
	return &model.PartialGameRecord{
		Title:    first.Name,
		CoverURL: first.BackgroundImage,
		Rating:   first.Rating,
		Source:   model.SourceRAWG,
	}, nil
}
