package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// Sentinel errors returned by GameStore and ProgressStore implementations.
var (
	// ErrGameNotFound indicates no game with that title exists in the catalog.
	ErrGameNotFound = errors.New("game not found")

	// ErrGameNotLinked indicates the player has no progress row for the game.
	ErrGameNotLinked = errors.New("game not linked to player")
)

// GameStore defines the driven port for the global game catalog.
// Title lookups are case-insensitive.
type GameStore interface {
	Create(ctx context.Context, game model.Game) (int64, error)
	GetByTitle(ctx context.Context, title string) (*model.Game, error)
}
