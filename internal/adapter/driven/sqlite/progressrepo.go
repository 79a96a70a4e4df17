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

// Compile-time interface satisfaction check.
var _ driven.ProgressStore = (*ProgressRepo)(nil)

// ProgressRepo is the SQLite implementation of the ProgressStore port.
type ProgressRepo struct {
	db  *DB
	now func() time.Time
}

// NewProgressRepo creates a new ProgressRepo backed by the given DB.
func NewProgressRepo(db *DB) *ProgressRepo {
	return &ProgressRepo{db: db, now: time.Now}
}

const progressViewColumns = `
	g.id, g.title, g.release_year, g.platform, g.setting, g.retroarch_url, g.cover_url, g.created_at,
	p.id, p.player, p.game_id, p.ra_user, p.notes, p.progress, p.ra_progress, p.updated_at`

// Get returns the link between player and gameID, or nil if there is none.
func (r *ProgressRepo) Get(ctx context.Context, player string, gameID int64) (*model.PlayerProgress, error) {
	const query = `
		SELECT id, player, game_id, ra_user, notes, progress, ra_progress, updated_at
		FROM player_progress WHERE player = ? COLLATE NOCASE AND game_id = ?`

	p, err := scanProgress(r.db.Reader.QueryRowContext(ctx, query, player, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress %s/%d: %w", player, gameID, err)
	}
	return p, nil
}

// Create inserts a new link between a player and a game.
func (r *ProgressRepo) Create(ctx context.Context, p model.PlayerProgress) error {
	const query = `
		INSERT INTO player_progress (player, game_id, ra_user, notes, progress, ra_progress, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		p.Player, p.GameID, p.RAUser, p.Notes, nullableInt(p.Progress), nullableInt(p.RAProgress),
		toMillis(r.now()))
	if err != nil {
		return fmt.Errorf("create progress %s/%d: %w", p.Player, p.GameID, err)
	}
	return nil
}

// UpdateDetails replaces notes and RA user on an existing link.
func (r *ProgressRepo) UpdateDetails(ctx context.Context, player string, gameID int64, notes, raUser string) error {
	const query = `
		UPDATE player_progress SET notes = ?, ra_user = ?, updated_at = ?
		WHERE player = ? COLLATE NOCASE AND game_id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, notes, raUser, toMillis(r.now()), player, gameID)
	if err != nil {
		return fmt.Errorf("update progress details %s/%d: %w", player, gameID, err)
	}
	return requireAffected(res, driven.ErrGameNotLinked)
}

// UpdateProgress sets the completion percentage on the player's link to the
// game whose title matches case-insensitively.
func (r *ProgressRepo) UpdateProgress(ctx context.Context, player, title string, percent int) error {
	const query = `
		UPDATE player_progress SET progress = ?, updated_at = ?
		WHERE player = ? COLLATE NOCASE
		  AND game_id = (SELECT id FROM games WHERE title = ? COLLATE NOCASE)`

	res, err := r.db.Writer.ExecContext(ctx, query, percent, toMillis(r.now()), player, strings.TrimSpace(title))
	if err != nil {
		return fmt.Errorf("update progress %s/%q: %w", player, title, err)
	}
	return requireAffected(res, driven.ErrGameNotLinked)
}

// Search returns the player's links whose game title contains keyword.
func (r *ProgressRepo) Search(ctx context.Context, player, keyword string, limit int) ([]model.ProgressView, error) {
	query := `SELECT ` + progressViewColumns + `
		FROM player_progress p JOIN games g ON g.id = p.game_id
		WHERE p.player = ? COLLATE NOCASE AND g.title LIKE ? ESCAPE '\'
		ORDER BY p.updated_at DESC
		LIMIT ?`

	pattern := "%" + escapeLike(keyword) + "%"
	return r.queryViews(ctx, query, player, pattern, limit)
}

// ListByPlayer returns every link for player.
func (r *ProgressRepo) ListByPlayer(ctx context.Context, player string) ([]model.ProgressView, error) {
	query := `SELECT ` + progressViewColumns + `
		FROM player_progress p JOIN games g ON g.id = p.game_id
		WHERE p.player = ? COLLATE NOCASE
		ORDER BY p.updated_at DESC`

	return r.queryViews(ctx, query, player)
}

func (r *ProgressRepo) queryViews(ctx context.Context, query string, args ...any) ([]model.ProgressView, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	views := []model.ProgressView{}
	for rows.Next() {
		var (
			v                    model.ProgressView
			createdAt, updatedAt int64
			progress, raProgress sql.NullInt64
		)
		err := rows.Scan(
			&v.Game.ID, &v.Game.Title, &v.Game.ReleaseYear, &v.Game.Platform, &v.Game.Setting,
			&v.Game.RetroArchURL, &v.Game.CoverURL, &createdAt,
			&v.Progress.ID, &v.Progress.Player, &v.Progress.GameID, &v.Progress.RAUser, &v.Progress.Notes,
			&progress, &raProgress, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		v.Game.CreatedAt = fromMillis(createdAt)
		v.Progress.Progress = intPtr(progress)
		v.Progress.RAProgress = intPtr(raProgress)
		v.Progress.UpdatedAt = fromMillis(updatedAt)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}

	return views, nil
}

func scanProgress(s scanner) (*model.PlayerProgress, error) {
	var (
		p                    model.PlayerProgress
		progress, raProgress sql.NullInt64
		updatedAt            int64
	)
	err := s.Scan(&p.ID, &p.Player, &p.GameID, &p.RAUser, &p.Notes, &progress, &raProgress, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Progress = intPtr(progress)
	p.RAProgress = intPtr(raProgress)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// escapeLike escapes LIKE wildcards so keyword matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
