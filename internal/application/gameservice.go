package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// SearchLimit caps the rows returned by SearchPlayerGames.
const SearchLimit = 10

// ErrInvalidProgress is returned when a progress percentage is outside 0..100.
var ErrInvalidProgress = errors.New("progress must be between 0 and 100")

// MetadataResolver is the part of Resolver the game use-cases depend on.
type MetadataResolver interface {
	Resolve(ctx context.Context, title string) model.MergedGameRecord
}

// Catalog sheet column aliases, checked in order.
var (
	sheetTitleKeys    = []string{"título", "titulo"}
	sheetYearKeys     = []string{"año", "anio"}
	sheetPlatformKeys = []string{"plataforma", "consola", "sistema"}
	sheetSettingKeys  = []string{"ambientacion", "género", "genero"}
	sheetURLKeys      = []string{"retroarch_url", "retroarchurl", "url"}
	sheetCoverKeys    = []string{"imagen", "imagen_url", "portada"}
)

// AutofillResult is the outcome of Autofill.
type AutofillResult struct {
	Input     model.GameInput
	Metadata  model.MergedGameRecord
	FromSheet bool
}

// FilledBy lists where autofilled data came from, sheet first.
func (r AutofillResult) FilledBy() []model.SourceName {
	var out []model.SourceName
	if r.FromSheet {
		out = append(out, model.SourceSheet)
	}
	return append(out, r.Metadata.Sources...)
}

// GameService implements the player-facing game tracking use-cases over
// the catalog and progress stores.
type GameService struct {
	games    driven.GameStore
	progress driven.ProgressStore
	sheet    driven.CatalogSheet
	resolver MetadataResolver
	fold     cases.Caser
	logger   *slog.Logger
}

// NewGameService creates a GameService. sheet may be nil when no catalog
// sheet is configured.
func NewGameService(
	games driven.GameStore,
	progress driven.ProgressStore,
	sheet driven.CatalogSheet,
	resolver MetadataResolver,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		games:    games,
		progress: progress,
		sheet:    sheet,
		resolver: resolver,
		fold:     cases.Fold(),
		logger:   logger,
	}
}

// Autofill completes the empty fields of in, first from the catalog sheet
// and then from the upstream metadata sources. Fields the player supplied
// are never overwritten.
func (s *GameService) Autofill(ctx context.Context, in model.GameInput) AutofillResult {
	res := AutofillResult{Input: in}

	if row := s.sheetRow(ctx, in.Title); row != nil {
		res.Input = res.Input.Merge(rowInput(row))
		res.FromSheet = true
	}

	res.Metadata = s.resolver.Resolve(ctx, in.Title)
	res.Input = res.Input.Merge(model.GameInput{
		ReleaseYear: res.Metadata.ReleaseYear,
		Platform:    res.Metadata.Platform,
		Setting:     res.Metadata.Genre,
		CoverURL:    res.Metadata.CoverURL,
	})
	return res
}

// sheetRow returns the catalog row whose title matches exactly, ignoring
// case. Sheet failures are logged and treated as no match.
func (s *GameService) sheetRow(ctx context.Context, title string) map[string]string {
	if s.sheet == nil {
		return nil
	}
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		s.logger.Warn("reading catalog sheet failed", "error", err)
		return nil
	}
	want := s.fold.String(strings.TrimSpace(title))
	for _, row := range rows {
		if s.fold.String(firstValue(row, sheetTitleKeys)) == want {
			return row
		}
	}
	return nil
}

func rowInput(row map[string]string) model.GameInput {
	year, _ := strconv.Atoi(firstValue(row, sheetYearKeys))
	return model.GameInput{
		ReleaseYear:  year,
		Platform:     firstValue(row, sheetPlatformKeys),
		Setting:      firstValue(row, sheetSettingKeys),
		RetroArchURL: firstValue(row, sheetURLKeys),
		CoverURL:     firstValue(row, sheetCoverKeys),
	}
}

func firstValue(row map[string]string, keys []string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}

// FindOrCreateGame returns the catalog game with in.Title, creating it from
// in when no game with that title exists. created reports which happened.
func (s *GameService) FindOrCreateGame(ctx context.Context, in model.GameInput) (model.Game, bool, error) {
	existing, err := s.games.GetByTitle(ctx, in.Title)
	if err != nil {
		return model.Game{}, false, fmt.Errorf("find game %q: %w", in.Title, err)
	}
	if existing != nil {
		return *existing, false, nil
	}

	game := model.Game{
		Title:        in.Title,
		ReleaseYear:  in.ReleaseYear,
		Platform:     in.Platform,
		Setting:      in.Setting,
		RetroArchURL: in.RetroArchURL,
		CoverURL:     in.CoverURL,
	}
	id, err := s.games.Create(ctx, game)
	if err != nil {
		return model.Game{}, false, fmt.Errorf("create game %q: %w", in.Title, err)
	}
	game.ID = id

	s.logger.Info("game added to catalog", "game_id", id, "title", in.Title)
	return game, true, nil
}

// LinkPlayer links player to gameID. When a link already exists it is
// returned unchanged so the caller can ask before updating it.
func (s *GameService) LinkPlayer(ctx context.Context, player string, gameID int64, raUser, notes string) (*model.PlayerProgress, error) {
	existing, err := s.progress.Get(ctx, player, gameID)
	if err != nil {
		return nil, fmt.Errorf("check link for %s: %w", player, err)
	}
	if existing != nil {
		return existing, nil
	}

	err = s.progress.Create(ctx, model.PlayerProgress{
		Player: player,
		GameID: gameID,
		RAUser: raUser,
		Notes:  notes,
	})
	if err != nil {
		return nil, fmt.Errorf("link game %d to %s: %w", gameID, player, err)
	}
	return nil, nil
}

// UpdateLinkDetails replaces the notes and RetroAchievements user of an
// existing link.
func (s *GameService) UpdateLinkDetails(ctx context.Context, player string, gameID int64, notes, raUser string) error {
	if err := s.progress.UpdateDetails(ctx, player, gameID, notes, raUser); err != nil {
		return fmt.Errorf("update link %d for %s: %w", gameID, player, err)
	}
	return nil
}

// UpdateProgress records a completion percentage for the player's game
// with the given title.
func (s *GameService) UpdateProgress(ctx context.Context, player, title string, percent int) error {
	if percent < 0 || percent > 100 {
		return ErrInvalidProgress
	}
	if err := s.progress.UpdateProgress(ctx, player, title, percent); err != nil {
		return fmt.Errorf("update progress of %q for %s: %w", title, player, err)
	}
	return nil
}

// SearchPlayerGames returns up to SearchLimit of the player's games whose
// title contains keyword, most recently updated first.
func (s *GameService) SearchPlayerGames(ctx context.Context, player, keyword string) ([]model.ProgressView, error) {
	views, err := s.progress.Search(ctx, player, keyword, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search games of %s: %w", player, err)
	}
	return views, nil
}

// GetPlayerGame returns the player's progress for the game with title.
// It returns ErrGameNotFound when the catalog has no such game and
// ErrGameNotLinked when the player has not added it.
func (s *GameService) GetPlayerGame(ctx context.Context, player, title string) (*model.ProgressView, error) {
	game, err := s.games.GetByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("find game %q: %w", title, err)
	}
	if game == nil {
		return nil, driven.ErrGameNotFound
	}

	p, err := s.progress.Get(ctx, player, game.ID)
	if err != nil {
		return nil, fmt.Errorf("find link for %s: %w", player, err)
	}
	if p == nil {
		return nil, driven.ErrGameNotLinked
	}
	return &model.ProgressView{Game: *game, Progress: *p}, nil
}

// ListPlayerProgress returns every game the player has linked, most
// recently updated first.
func (s *GameService) ListPlayerProgress(ctx context.Context, player string) ([]model.ProgressView, error) {
	views, err := s.progress.ListByPlayer(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("list progress of %s: %w", player, err)
	}
	return views, nil
}
