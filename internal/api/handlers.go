package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/areaewhy/JoplinView/internal/apperr"
	"github.com/areaewhy/JoplinView/internal/models"
	"github.com/areaewhy/JoplinView/internal/store"
	"github.com/areaewhy/JoplinView/internal/syncer"
)

// Handler holds API route handlers.
type Handler struct {
	sync   *syncer.Syncer
	notes  store.NoteStore
	status store.StatusStore
}

// NewHandler creates a new Handler.
func NewHandler(sync *syncer.Syncer, notes store.NoteStore, status store.StatusStore) *Handler {
	return &Handler{sync: sync, notes: notes, status: status}
}

// Sync handles POST /api/sync.
//
//	@Summary		Run a full bucket reconciliation pass
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncResponse
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync [post]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sync.Run(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrSyncInProgress):
			writeJSON(w, http.StatusConflict, errorBody("sync already in progress"))
		case errors.Is(err, apperr.ErrConfigMissing):
			writeJSON(w, http.StatusBadRequest, errorBody("bucket configuration missing"))
		default:
			slog.Error("sync failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, errorBody("sync failed"))
		}
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{
		Message:     "Sync completed successfully",
		NotesCount:  summary.Processed,
		StorageUsed: summary.StorageUsed,
	})
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with optional search and tag filtering
//	@Tags			notes
//	@Produce		json
//	@Param			search	query		string	false	"Case-insensitive substring query"
//	@Param			tags	query		string	false	"Comma-separated tags, any-match"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sync.EnsureWarm(r.Context()); err != nil {
		// Cold-start fill failed; serve whatever the store holds.
		slog.Warn("warm-up failed", slog.String("error", err.Error()))
	}

	q := r.URL.Query()
	search := q.Get("search")
	tags := splitTags(q.Get("tags"))

	notes, err := h.selectNotes(search, tags)
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

func (h *Handler) selectNotes(search string, tags []string) ([]models.Note, error) {
	switch {
	case search != "":
		notes, err := h.notes.Search(search)
		if err != nil {
			return nil, err
		}
		if len(tags) > 0 {
			notes = filterByTags(notes, tags)
		}
		return notes, nil
	case len(tags) > 0:
		return h.notes.ByTags(tags)
	default:
		return h.notes.All()
	}
}

// splitTags parses a comma-separated tag list, dropping empties.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// filterByTags keeps notes carrying at least one of the wanted tags,
// preserving order.
func filterByTags(notes []models.Note, tags []string) []models.Note {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		for _, t := range n.Tags {
			if _, ok := want[t]; ok {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.notes.ByID(id)
	if err != nil {
		slog.Error("get note failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if note == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// SyncStatus handles GET /api/sync-status.
//
//	@Summary		Current sync statistics
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	models.SyncStatus
//	@Security		BearerAuth
//	@Router			/sync-status [get]
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.status.Status()
	if err != nil {
		slog.Error("sync status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if status == nil {
		// No pass has run yet.
		status = &models.SyncStatus{StorageUsed: "0.00 MB"}
	}
	writeJSON(w, http.StatusOK, status)
}

// ListTags handles GET /api/tags.
//
//	@Summary		Tag frequency table for the current note set
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.sync.ListTags()
	if err != nil {
		slog.Error("list tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if tags == nil {
		tags = []models.TagCount{}
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}
