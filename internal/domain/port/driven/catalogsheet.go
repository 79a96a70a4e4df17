package driven

import "context"

// CatalogSheet provides rows of a shared spreadsheet of known games.
// Each row maps a lower-cased, trimmed header to its cell value.
type CatalogSheet interface {
	Rows(ctx context.Context) ([]map[string]string, error)
}
