package app

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MrWong99/courtkiosk/internal/choice"
	"github.com/MrWong99/courtkiosk/internal/kiosk"
	"github.com/MrWong99/courtkiosk/internal/observe"
	"github.com/MrWong99/courtkiosk/internal/presence"
	"github.com/MrWong99/courtkiosk/internal/records"
	"github.com/MrWong99/courtkiosk/pkg/caseid"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// routes builds the kiosk HTTP surface, wrapped in the observability
// middleware.
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	a.health.Register(mux)
	mux.Handle("GET /metrics", observe.MetricsHandler())

	mux.HandleFunc("POST /api/search", a.handleSearch)
	mux.HandleFunc("POST /api/identifier/parse", a.handleParse)
	mux.HandleFunc("POST /api/presence", a.handlePresence)
	mux.HandleFunc("POST /api/conversation", a.handleStart)
	mux.HandleFunc("GET /api/conversation", a.handleStatus)
	mux.Handle("GET /ws/captions", a.hub)

	return observe.Middleware(a.metrics)(mux)
}

type searchRequest struct {
	CaseID string `json:"case_id"`
	Lang   string `json:"lang"`
}

type searchResponse struct {
	Found     bool            `json:"found"`
	Record    *records.Record `json:"record,omitempty"`
	Narration string          `json:"narration"`
}

// handleSearch looks up a typed identifier and reads the result aloud.
func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	id := strings.TrimSpace(req.CaseID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "case_id is required")
		return
	}

	rec, err := a.kiosk.Search(r.Context(), id, parseLang(req.Lang))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, searchResponse{Found: true, Record: rec, Narration: rec.Narration()})
	case errors.Is(err, records.ErrNotFound):
		writeJSON(w, http.StatusNotFound, searchResponse{Narration: records.NotFoundText})
	case errors.Is(err, kiosk.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	default:
		observe.Logger(r.Context()).Warn("search failed", "case_id", id, "err", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}

type parseRequest struct {
	Transcript string `json:"transcript"`
	Lang       string `json:"lang"`
}

type parseResponse struct {
	Type   string `json:"type"`
	Number string `json:"number"`
	Year   string `json:"year"`
	CaseID string `json:"case_id"`
}

// handleParse runs the combined-identifier parser on a transcript without
// touching the microphone or the record store.
func (a *App) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !decode(w, r, &req) {
		return
	}
	lang := parseLang(req.Lang)
	if lang == "" {
		lang = caseid.English
	}
	id, err := a.vocab.ParseCombined(req.Transcript, lang)
	if err != nil {
		body := map[string]string{"error": err.Error()}
		var pe *caseid.ParseError
		if errors.As(err, &pe) {
			body["field"] = string(pe.Field)
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{
		Type:   id.Type,
		Number: id.Number,
		Year:   id.Year,
		CaseID: id.String(),
	})
}

type presenceResponse struct {
	Triggered bool   `json:"triggered"`
	Placement string `json:"placement"`
}

// handlePresence feeds one detector frame to the kiosk.
func (a *App) handlePresence(w http.ResponseWriter, r *http.Request) {
	var fr presence.Frame
	if !decode(w, r, &fr) {
		return
	}
	if fr.Width <= 0 || fr.Height <= 0 {
		writeError(w, http.StatusBadRequest, "width and height must be positive")
		return
	}
	triggered, placement := a.kiosk.OnPresence(r.Context(), fr)
	writeJSON(w, http.StatusOK, presenceResponse{Triggered: triggered, Placement: placement.String()})
}

type startRequest struct {
	Lang string `json:"lang"`
}

// handleStart begins a conversation in the background.
func (a *App) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	id, err := a.kiosk.Start(parseLang(req.Lang))
	if errors.Is(err, kiosk.ErrBusy) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("conversation started", "session_id", id)
	writeJSON(w, http.StatusAccepted, map[string]string{"session_id": id})
}

type statusResponse struct {
	Busy      bool       `json:"busy"`
	SessionID string     `json:"session_id,omitempty"`
	Language  string     `json:"language,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// handleStatus reports the conversation in progress, if any.
func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var res statusResponse
	if s := a.kiosk.Current(); s != nil {
		started := s.StartedAt
		res = statusResponse{
			Busy:      true,
			SessionID: s.ID,
			Language:  string(s.Language()),
			StartedAt: &started,
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// parseLang accepts a language code or a spoken language name. Unknown
// values yield "" so the kiosk falls back to its default.
func parseLang(s string) caseid.Language {
	if s == "" {
		return ""
	}
	if l, ok := caseid.ParseLanguage(s); ok {
		return l
	}
	if v, _, ok := choice.Languages().Resolve(s); ok {
		return caseid.Language(v)
	}
	return ""
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
