package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// syncRoot is used to resolve the audio and attachments directories.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler, syncRoot string) chi.Router {
	h := NewHandler(svc)
	fh := NewFileHandler(syncRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Sync control.
	r.Post("/sync", h.Sync)
	r.Get("/status", h.Status)

	// Synced notes.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/today", h.TodaysNotes)

	// Search.
	r.Get("/search", h.Search)

	// Remote account.
	r.Get("/user", h.User)

	// Downloaded media (read-only).
	r.Get("/audio/{filename}", fh.ServeAudio)
	r.Get("/attachments/{filename}", fh.ServeAttachment)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
