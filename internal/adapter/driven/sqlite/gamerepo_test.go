package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

func TestGameRepo_CreateAndGetByTitle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Game{Title: "Chrono Trigger", ReleaseYear: 1995, Platform: "SNES", Setting: "RPG"})
	require.NoError(t, err)
	assert.NotZero(t, id)

	game, err := repo.GetByTitle(ctx, "chrono TRIGGER")
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, id, game.ID)
	assert.Equal(t, "Chrono Trigger", game.Title)
	assert.Equal(t, 1995, game.ReleaseYear)
	assert.Equal(t, "SNES", game.Platform)
	assert.False(t, game.CreatedAt.IsZero())
}

func TestGameRepo_GetByTitleMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepo(db)

	game, err := repo.GetByTitle(context.Background(), "Nope")
	require.NoError(t, err)
	assert.Nil(t, game)
}

func TestGameRepo_CreateDuplicateIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Game{Title: "Earthbound"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, model.Game{Title: "EARTHBOUND"})
	assert.ErrorIs(t, err, ErrGameExists)
}
