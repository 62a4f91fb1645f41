package store

import "github.com/areaewhy/JoplinView/internal/models"

// NoteStore defines the persisted note-set operations. Consumers should
// depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
//
// The note set is rebuilt wholesale by ReplaceAll during a sync and is
// read-only otherwise.
type NoteStore interface {
	ReplaceAll(notes []models.Note) error
	All() ([]models.Note, error)
	ByID(id int64) (*models.Note, error)
	ByJoplinID(joplinID string) (*models.Note, error)
	Search(query string) ([]models.Note, error)
	ByTags(tags []string) ([]models.Note, error)
	Count() (int, error)
}

// StatusStore holds the singleton sync status record. Merge applies a
// partial update: nil patch fields retain their stored values.
type StatusStore interface {
	Status() (*models.SyncStatus, error)
	MergeStatus(patch models.SyncStatusPatch) (*models.SyncStatus, error)
}

// Verify *DB satisfies both interfaces at compile time.
var (
	_ NoteStore   = (*DB)(nil)
	_ StatusStore = (*DB)(nil)
)
