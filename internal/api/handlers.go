package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mysticcoders/voicenotes-sync/internal/apperr"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	st, err := h.svc.Status()
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Sync handles POST /api/sync. The optional "full" query parameter forces a
// full pass over every remote recording.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	full := r.URL.Query().Get("full") == "true"

	report, err := h.svc.TriggerSync(r.Context(), full)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrSyncInProgress):
			writeJSON(w, http.StatusConflict, errorBody("sync already in progress"))
		case apperr.IsAuth(err):
			writeJSON(w, http.StatusBadGateway, errorBody("remote authentication failed"))
		default:
			slog.Error("sync failed", slog.Bool("full", full), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("sync failed"))
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, _ *http.Request) {
	notes, err := h.svc.ListNotes()
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// TodaysNotes handles GET /api/notes/today.
func (h *Handler) TodaysNotes(w http.ResponseWriter, _ *http.Request) {
	notes, err := h.svc.TodaysNotes()
	if err != nil {
		slog.Error("today notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Path: hit.Path, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// User handles GET /api/user.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.User(r.Context())
	if err != nil {
		if apperr.IsAuth(err) {
			writeJSON(w, http.StatusBadGateway, errorBody("remote authentication failed"))
			return
		}
		slog.Error("user lookup failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}
