// Package hltb implements the MetadataSource port for HowLongToBeat
// completion-time estimates.
package hltb

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MetadataSource = (*Client)(nil)

// searchRequest mirrors the body the HowLongToBeat site posts to its search API.
type searchRequest struct {
	SearchType    string        `json:"searchType"`
	SearchTerms   []string      `json:"searchTerms"`
	SearchPage    int           `json:"searchPage"`
	Size          int           `json:"size"`
	SearchOptions searchOptions `json:"searchOptions"`
}

type searchOptions struct {
	Games struct {
		UserID        int    `json:"userId"`
		Platform      string `json:"platform"`
		SortCategory  string `json:"sortCategory"`
		RangeCategory string `json:"rangeCategory"`
		RangeTime     struct {
			Min int `json:"min"`
			Max int `json:"max"`
		} `json:"rangeTime"`
		Gameplay struct {
			Perspective string `json:"perspective"`
			Flow        string `json:"flow"`
			Genre       string `json:"genre"`
		} `json:"gameplay"`
		Modifier string `json:"modifier"`
	} `json:"games"`
	Users struct {
		SortCategory string `json:"sortCategory"`
	} `json:"users"`
	Filter     string `json:"filter"`
	Sort       int    `json:"sort"`
	Randomizer int    `json:"randomizer"`
}

// searchResponse holds the fields used from the search result list.
// Completion times are reported in seconds.
type searchResponse struct {
	Data []struct {
		GameName string  `json:"game_name"`
		CompMain float64 `json:"comp_main"`
		CompPlus float64 `json:"comp_plus"`
		Comp100  float64 `json:"comp_100"`
	} `json:"data"`
}

// Client queries HowLongToBeat. No credentials are needed, but the site
// rejects requests without a Referer of its own origin.
type Client struct {
	http    *resty.Client
	referer string
}

// NewClient creates a Client. baseURL is the site origin, e.g.
// https://howlongtobeat.com, and must match the base URL of http.
func NewClient(http *resty.Client, baseURL string) *Client {
	return &Client{http: http, referer: strings.TrimRight(baseURL, "/") + "/"}
}

// Name returns the source name used for attribution and cache keys.
func (c *Client) Name() model.SourceName {
	return model.SourceHLTB
}

// Search returns the completion-time estimates of the first match for title.
func (c *Client) Search(ctx context.Context, title string) (*model.PartialGameRecord, error) {
	req := searchRequest{
		SearchType:  "games",
		SearchTerms: strings.Fields(title),
		SearchPage:  1,
		Size:        20,
	}
	req.SearchOptions.Games.SortCategory = "popular"
	req.SearchOptions.Games.RangeCategory = "main"
	req.SearchOptions.Users.SortCategory = "postcount"

	var body searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Referer", c.referer).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&body).
		ForceContentType("application/json").
		Post("/api/search")
	if err != nil {
		return nil, fmt.Errorf("hltb search %q: %w", title, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("hltb search %q returned HTTP %d", title, resp.StatusCode())
	}

	if len(body.Data) == 0 {
		return nil, nil
	}

	first := body.Data[0]
	return &model.PartialGameRecord{
		Title:              first.GameName,
		HoursMain:          SecondsToHours(first.CompMain),
		HoursMainExtra:     SecondsToHours(first.CompPlus),
		HoursCompletionist: SecondsToHours(first.Comp100),
		Source:             model.SourceHLTB,
	}, nil
}

// SecondsToHours converts seconds to hours rounded to the nearest half hour.
// Non-positive input means no estimate and yields 0.
func SecondsToHours(seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Round(seconds/3600*2) / 2
}
