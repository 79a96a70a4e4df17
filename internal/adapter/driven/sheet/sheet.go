// Package sheet reads the community game catalog published as a Google
// Sheets CSV export.
package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/upstream"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CatalogSheet = (*Sheet)(nil)

// Sheet fetches the catalog on every call; the shared transport's HTTP
// cache makes repeated fetches conditional.
type Sheet struct {
	http   *resty.Client
	url    string
	logger *slog.Logger
}

// New creates a Sheet for the published CSV at url. An empty url yields a
// Sheet with no rows.
func New(http *resty.Client, url string, logger *slog.Logger) *Sheet {
	return &Sheet{http: http, url: url, logger: logger}
}

// Rows returns every data row keyed by its lower-cased, trimmed header.
func (s *Sheet) Rows(ctx context.Context) ([]map[string]string, error) {
	if s.url == "" {
		return nil, nil
	}

	resp, err := s.http.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog sheet: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching catalog sheet: HTTP %d", resp.StatusCode())
	}

	rows, err := parse(resp.Body())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog sheet fetched", "rows", len(rows), "from_http_cache", upstream.FromCache(resp))
	return rows, nil
}

func parse(data []byte) ([]map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading catalog row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) && h != "" {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
