package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// ErrGameExists is returned by Create when a game with the same title
// (compared case-insensitively) is already in the catalog.
var ErrGameExists = errors.New("game already exists")

// Compile-time interface satisfaction check.
var _ driven.GameStore = (*GameRepo)(nil)

// GameRepo is the SQLite implementation of the GameStore port.
type GameRepo struct {
	db *DB
}

// NewGameRepo creates a new GameRepo backed by the given DB.
func NewGameRepo(db *DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create inserts a game and returns its id.
func (r *GameRepo) Create(ctx context.Context, game model.Game) (int64, error) {
	const query = `
		INSERT INTO games (title, release_year, platform, setting, retroarch_url, cover_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	createdAt := game.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.Writer.ExecContext(ctx, query,
		game.Title, game.ReleaseYear, game.Platform, game.Setting,
		game.RetroArchURL, game.CoverURL, toMillis(createdAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return 0, fmt.Errorf("create game %q: %w", game.Title, ErrGameExists)
		}
		return 0, fmt.Errorf("create game %q: %w", game.Title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read game id: %w", err)
	}
	return id, nil
}

// GetByTitle returns the game whose title matches case-insensitively, or nil.
func (r *GameRepo) GetByTitle(ctx context.Context, title string) (*model.Game, error) {
	const query = `
		SELECT id, title, release_year, platform, setting, retroarch_url, cover_url, created_at
		FROM games WHERE title = ? COLLATE NOCASE LIMIT 1`

	game, err := scanGame(r.db.Reader.QueryRowContext(ctx, query, strings.TrimSpace(title)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game %q: %w", title, err)
	}
	return game, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*model.Game, error) {
	var (
		g         model.Game
		createdAt int64
	)
	err := s.Scan(&g.ID, &g.Title, &g.ReleaseYear, &g.Platform, &g.Setting,
		&g.RetroArchURL, &g.CoverURL, &createdAt)
	if err != nil {
		return nil, err
	}
	g.CreatedAt = fromMillis(createdAt)
	return &g, nil
}
