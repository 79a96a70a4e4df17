package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// MetadataResponse is the merged metadata for a title plus how each source
// answered.
type MetadataResponse struct {
	Title              string           `json:"title"`
	ReleaseYear        int              `json:"release_year,omitempty"`
	Platform           string           `json:"platform,omitempty"`
	Genre              string           `json:"genre,omitempty"`
	Description        string           `json:"description,omitempty"`
	HoursMain          float64          `json:"hours_main,omitempty"`
	HoursMainExtra     float64          `json:"hours_main_extra,omitempty"`
	HoursCompletionist float64          `json:"hours_completionist,omitempty"`
	CoverURL           string           `json:"cover_url,omitempty"`
	Rating             float64          `json:"rating,omitempty"`
	Source             string           `json:"source"`
	Outcomes           []OutcomeSummary `json:"outcomes"`
}

// OutcomeSummary describes one source's answer.
type OutcomeSummary struct {
	Source   string `json:"source"`
	Status   string `json:"status"`
	CacheHit bool   `json:"cache_hit"`
	Error    string `json:"error,omitempty"`
}

// ProgressResponse is the JSON representation of a player's tracked game.
type ProgressResponse struct {
	GameID       int64  `json:"game_id"`
	Title        string `json:"title"`
	ReleaseYear  int    `json:"release_year,omitempty"`
	Platform     string `json:"platform,omitempty"`
	Setting      string `json:"setting,omitempty"`
	RetroArchURL string `json:"retroarch_url,omitempty"`
	CoverURL     string `json:"cover_url,omitempty"`
	RAUser       string `json:"ra_user,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Progress     *int   `json:"progress"`
	RAProgress   *int   `json:"ra_progress"`
	UpdatedAt    string `json:"updated_at"`
}

func toMetadataResponse(m model.MergedGameRecord, outcomes []model.FetchOutcome) MetadataResponse {
	resp := MetadataResponse{
		Title:              m.Title,
		ReleaseYear:        m.ReleaseYear,
		Platform:           m.Platform,
		Genre:              m.Genre,
		Description:        m.Description,
		HoursMain:          m.HoursMain,
		HoursMainExtra:     m.HoursMainExtra,
		HoursCompletionist: m.HoursCompletionist,
		CoverURL:           m.CoverURL,
		Rating:             m.Rating,
		Source:             m.SourceLabel(),
		Outcomes:           make([]OutcomeSummary, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		s := OutcomeSummary{
			Source:   string(o.Source),
			Status:   string(o.Status),
			CacheHit: o.CacheHit,
		}
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		resp.Outcomes = append(resp.Outcomes, s)
	}
	return resp
}

func toProgressResponse(v model.ProgressView) ProgressResponse {
	return ProgressResponse{
		GameID:       v.Game.ID,
		Title:        v.Game.Title,
		ReleaseYear:  v.Game.ReleaseYear,
		Platform:     v.Game.Platform,
		Setting:      v.Game.Setting,
		RetroArchURL: v.Game.RetroArchURL,
		CoverURL:     v.Game.CoverURL,
		RAUser:       v.Progress.RAUser,
		Notes:        v.Progress.Notes,
		Progress:     v.Progress.Progress,
		RAProgress:   v.Progress.RAProgress,
		UpdatedAt:    v.Progress.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
