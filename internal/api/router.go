package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/areaewhy/JoplinView/internal/store"
	"github.com/areaewhy/JoplinView/internal/syncer"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(sync *syncer.Syncer, notes store.NoteStore, status store.StatusStore, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(sync, notes, status)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/sync", h.Sync)
	r.Get("/sync-status", h.SyncStatus)

	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{id}", h.GetNote)

	r.Get("/tags", h.ListTags)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
