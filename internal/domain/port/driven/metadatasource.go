package driven

import (
	"context"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// MetadataSource defines the driven port for one upstream game catalog.
// Search issues exactly one request for the best match to title and
// returns (nil, nil) when the upstream has no result.
type MetadataSource interface {
	Name() model.SourceName
	Search(ctx context.Context, title string) (*model.PartialGameRecord, error)
}
