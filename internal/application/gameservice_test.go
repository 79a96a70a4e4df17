package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// --- in-memory stores ---

type memGameStore struct {
	mu     sync.Mutex
	games  []model.Game
	getErr error
}

func (m *memGameStore) Create(_ context.Context, g model.Game) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.ID = int64(len(m.games) + 1)
	m.games = append(m.games, g)
	return g.ID, nil
}

func (m *memGameStore) GetByTitle(_ context.Context, title string) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, g := range m.games {
		if strings.EqualFold(g.Title, title) {
			return &g, nil
		}
	}
	return nil, nil
}

type memProgressStore struct {
	mu     sync.Mutex
	games  *memGameStore
	links  []model.PlayerProgress
	limits []int
}

func (m *memProgressStore) find(player string, gameID int64) int {
	for i, p := range m.links {
		if strings.EqualFold(p.Player, player) && p.GameID == gameID {
			return i
		}
	}
	return -1
}

func (m *memProgressStore) Get(_ context.Context, player string, gameID int64) (*model.PlayerProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.find(player, gameID); i >= 0 {
		p := m.links[i]
		return &p, nil
	}
	return nil, nil
}

func (m *memProgressStore) Create(_ context.Context, p model.PlayerProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(p.Player, p.GameID) >= 0 {
		return errors.New("duplicate link")
	}
	m.links = append(m.links, p)
	return nil
}

func (m *memProgressStore) UpdateDetails(_ context.Context, player string, gameID int64, notes, raUser string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(player, gameID)
	if i < 0 {
		return driven.ErrGameNotLinked
	}
	m.links[i].Notes = notes
	m.links[i].RAUser = raUser
	return nil
}

func (m *memProgressStore) UpdateProgress(ctx context.Context, player, title string, percent int) error {
	g, _ := m.games.GetByTitle(ctx, title)
	m.mu.Lock()
	defer m.mu.Unlock()
	if g == nil {
		return driven.ErrGameNotLinked
	}
	i := m.find(player, g.ID)
	if i < 0 {
		return driven.ErrGameNotLinked
	}
	m.links[i].Progress = &percent
	return nil
}

func (m *memProgressStore) Search(ctx context.Context, player, keyword string, limit int) ([]model.ProgressView, error) {
	m.mu.Lock()
	m.limits = append(m.limits, limit)
	m.mu.Unlock()

	all, _ := m.ListByPlayer(ctx, player)
	var out []model.ProgressView
	for _, v := range all {
		if strings.Contains(strings.ToLower(v.Game.Title), strings.ToLower(keyword)) && len(out) < limit {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memProgressStore) ListByPlayer(_ context.Context, player string) ([]model.ProgressView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ProgressView
	for _, p := range m.links {
		if strings.EqualFold(p.Player, player) {
			out = append(out, model.ProgressView{Game: m.games.games[p.GameID-1], Progress: p})
		}
	}
	return out, nil
}

type stubSheet struct {
	rows []map[string]string
	err  error
}

func (s *stubSheet) Rows(_ context.Context) ([]map[string]string, error) {
	return s.rows, s.err
}

type stubResolver struct {
	rec   model.MergedGameRecord
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, title string) model.MergedGameRecord {
	s.calls++
	rec := s.rec
	if rec.Title == "" {
		rec.Title = title
	}
	return rec
}

func newTestGameService(sheet driven.CatalogSheet, resolver MetadataResolver) (*GameService, *memGameStore, *memProgressStore) {
	games := &memGameStore{}
	progress := &memProgressStore{games: games}
	if resolver == nil {
		resolver = &stubResolver{}
	}
	return NewGameService(games, progress, sheet, resolver, discardLogger()), games, progress
}

// --- Autofill ---

func TestAutofill_SheetThenResolver(t *testing.T) {
	sheet := &stubSheet{rows: []map[string]string{
		{"título": "Other", "consola": "NES"},
		{"título": "chrono trigger", "año": "1995", "consola": "SNES", "url": "https://ra/ct"},
	}}
	resolver := &stubResolver{rec: model.MergedGameRecord{
		ReleaseYear: 1994, Platform: "Super Famicom", Genre: "RPG", CoverURL: "http://x/img.jpg",
		Sources: []model.SourceName{model.SourceIGDB, model.SourceRAWG},
	}}
	svc, _, _ := newTestGameService(sheet, resolver)

	res := svc.Autofill(context.Background(), model.GameInput{Title: "Chrono Trigger"})

	assert.True(t, res.FromSheet)
	assert.Equal(t, 1995, res.Input.ReleaseYear, "sheet wins over resolver")
	assert.Equal(t, "SNES", res.Input.Platform)
	assert.Equal(t, "https://ra/ct", res.Input.RetroArchURL)
	assert.Equal(t, "RPG", res.Input.Setting, "resolver fills what the sheet left empty")
	assert.Equal(t, "http://x/img.jpg", res.Input.CoverURL)
	assert.Equal(t, []model.SourceName{model.SourceSheet, model.SourceIGDB, model.SourceRAWG}, res.FilledBy())
}

func TestAutofill_PlayerValuesKept(t *testing.T) {
	sheet := &stubSheet{rows: []map[string]string{{"titulo": "Zelda", "plataforma": "NES", "género": "Aventura"}}}
	svc, _, _ := newTestGameService(sheet, nil)

	res := svc.Autofill(context.Background(), model.GameInput{Title: "ZELDA", Platform: "Famicom Disk System"})

	assert.Equal(t, "Famicom Disk System", res.Input.Platform)
	assert.Equal(t, "Aventura", res.Input.Setting)
}

func TestAutofill_SheetFailureIgnored(t *testing.T) {
	resolver := &stubResolver{rec: model.MergedGameRecord{Platform: "Genesis"}}
	svc, _, _ := newTestGameService(&stubSheet{err: errors.New("403")}, resolver)

	res := svc.Autofill(context.Background(), model.GameInput{Title: "Sonic"})

	assert.False(t, res.FromSheet)
	assert.Equal(t, "Genesis", res.Input.Platform)
	assert.Equal(t, 1, resolver.calls)
}

func TestAutofill_NoSheet(t *testing.T) {
	svc, _, _ := newTestGameService(nil, nil)

	res := svc.Autofill(context.Background(), model.GameInput{Title: "Sonic"})

	assert.False(t, res.FromSheet)
	assert.Empty(t, res.FilledBy())
	assert.Equal(t, model.GameInput{Title: "Sonic"}, res.Input)
}

// --- catalog and links ---

func TestFindOrCreateGame(t *testing.T) {
	svc, games, _ := newTestGameService(nil, nil)
	ctx := context.Background()

	g, created, err := svc.FindOrCreateGame(ctx, model.GameInput{Title: "Chrono Trigger", Platform: "SNES"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), g.ID)

	again, created, err := svc.FindOrCreateGame(ctx, model.GameInput{Title: "CHRONO TRIGGER", Platform: "DS"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, g.ID, again.ID)
	assert.Equal(t, "SNES", again.Platform)
	assert.Len(t, games.games, 1)
}

func TestFindOrCreateGame_StoreError(t *testing.T) {
	svc, games, _ := newTestGameService(nil, nil)
	games.getErr = errors.New("db locked")

	_, _, err := svc.FindOrCreateGame(context.Background(), model.GameInput{Title: "X"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db locked")
}

func TestLinkPlayer(t *testing.T) {
	svc, _, progress := newTestGameService(nil, nil)
	ctx := context.Background()
	g, _, err := svc.FindOrCreateGame(ctx, model.GameInput{Title: "EarthBound"})
	require.NoError(t, err)

	existing, err := svc.LinkPlayer(ctx, "ness", g.ID, "ness_ra", "first run")
	require.NoError(t, err)
	assert.Nil(t, existing)

	existing, err = svc.LinkPlayer(ctx, "NESS", g.ID, "other", "second")
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, "first run", existing.Notes)
	assert.Len(t, progress.links, 1)

	require.NoError(t, svc.UpdateLinkDetails(ctx, "ness", g.ID, "second", "other"))
	view, err := svc.GetPlayerGame(ctx, "ness", "earthbound")
	require.NoError(t, err)
	assert.Equal(t, "second", view.Progress.Notes)
	assert.Equal(t, "other", view.Progress.RAUser)
}

func TestUpdateProgress(t *testing.T) {
	svc, _, _ := newTestGameService(nil, nil)
	ctx := context.Background()
	g, _, _ := svc.FindOrCreateGame(ctx, model.GameInput{Title: "Metroid"})
	_, err := svc.LinkPlayer(ctx, "samus", g.ID, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProgress(ctx, "samus", "metroid", 80))
	view, err := svc.GetPlayerGame(ctx, "samus", "Metroid")
	require.NoError(t, err)
	assert.Equal(t, 80, view.Progress.ProgressPercent())

	assert.ErrorIs(t, svc.UpdateProgress(ctx, "samus", "Metroid", 101), ErrInvalidProgress)
	assert.ErrorIs(t, svc.UpdateProgress(ctx, "samus", "Metroid", -1), ErrInvalidProgress)
	assert.ErrorIs(t, svc.UpdateProgress(ctx, "samus", "Kid Icarus", 10), driven.ErrGameNotLinked)
}

func TestGetPlayerGame_Errors(t *testing.T) {
	svc, _, _ := newTestGameService(nil, nil)
	ctx := context.Background()
	_, _, err := svc.FindOrCreateGame(ctx, model.GameInput{Title: "Contra"})
	require.NoError(t, err)

	_, err = svc.GetPlayerGame(ctx, "bill", "Gradius")
	assert.ErrorIs(t, err, driven.ErrGameNotFound)

	_, err = svc.GetPlayerGame(ctx, "bill", "Contra")
	assert.ErrorIs(t, err, driven.ErrGameNotLinked)
}

func TestSearchAndListPlayerGames(t *testing.T) {
	svc, _, progress := newTestGameService(nil, nil)
	ctx := context.Background()
	for _, title := range []string{"Final Fantasy IV", "Final Fantasy VI", "Chrono Trigger"} {
		g, _, err := svc.FindOrCreateGame(ctx, model.GameInput{Title: title})
		require.NoError(t, err)
		_, err = svc.LinkPlayer(ctx, "terra", g.ID, "", "")
		require.NoError(t, err)
	}

	found, err := svc.SearchPlayerGames(ctx, "terra", "fantasy")
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, []int{SearchLimit}, progress.limits)

	all, err := svc.ListPlayerProgress(ctx, "terra")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.ListPlayerProgress(ctx, "locke")
	require.NoError(t, err)
	assert.Empty(t, none)
}
