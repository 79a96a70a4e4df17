package driven

import (
	"context"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// ProgressStore defines the driven port for player-to-game links.
// Player comparisons in lookups are case-insensitive.
type ProgressStore interface {
	// Get returns the link for player and gameID, or (nil, nil) if none exists.
	Get(ctx context.Context, player string, gameID int64) (*model.PlayerProgress, error)

	// Create inserts a new link. Returns an error if one already exists.
	Create(ctx context.Context, p model.PlayerProgress) error

	// UpdateDetails replaces notes and RA user and touches updated_at.
	UpdateDetails(ctx context.Context, player string, gameID int64, notes, raUser string) error

	// UpdateProgress sets the completion percentage for the player's game
	// matched by title. Returns ErrGameNotLinked when no row matched.
	UpdateProgress(ctx context.Context, player, title string, percent int) error

	// Search returns up to limit links whose game title contains keyword,
	// most recently updated first.
	Search(ctx context.Context, player, keyword string, limit int) ([]model.ProgressView, error)

	// ListByPlayer returns all links for player, most recently updated first.
	ListByPlayer(ctx context.Context, player string) ([]model.ProgressView, error)
}
