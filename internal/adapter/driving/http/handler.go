package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// MetadataResolver resolves merged metadata together with per-source outcomes.
type MetadataResolver interface {
	ResolveDetailed(ctx context.Context, title string) (model.MergedGameRecord, []model.FetchOutcome)
}

// ProgressLister lists a player's tracked games.
type ProgressLister interface {
	ListPlayerProgress(ctx context.Context, player string) ([]model.ProgressView, error)
}

// Handler is the HTTP driving adapter that serves the ops API.
type Handler struct {
	resolver MetadataResolver
	progress ProgressLister
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(resolver MetadataResolver, progress ProgressLister, logger *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		progress: progress,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/metadata", h.GetMetadata)
	mux.HandleFunc("GET /api/v1/players/{player}/games", h.ListPlayerGames)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// GetMetadata resolves the title query parameter against every configured
// metadata source.
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	merged, outcomes := h.resolver.ResolveDetailed(r.Context(), title)

	writeJSON(w, http.StatusOK, toMetadataResponse(merged, outcomes))
}

// ListPlayerGames returns every game a player tracks, most recent first.
func (h *Handler) ListPlayerGames(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")

	views, err := h.progress.ListPlayerProgress(r.Context(), player)
	if err != nil {
		h.logger.Error("failed to list player games", "player", player, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ProgressResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toProgressResponse(v))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health reports that the process is serving requests.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
