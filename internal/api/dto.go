package api

import (
	"github.com/areaewhy/JoplinView/internal/models"
)

// SyncResponse is returned by a successful manual sync.
type SyncResponse struct {
	Message     string `json:"message" example:"Sync completed successfully" validate:"required"`
	NotesCount  int    `json:"notesCount" example:"42" validate:"required"`
	StorageUsed string `json:"storageUsed" example:"1.25 MB" validate:"required"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// TagListResponse wraps the tag frequency table.
type TagListResponse struct {
	Tags []models.TagCount `json:"tags" validate:"required"`
}
