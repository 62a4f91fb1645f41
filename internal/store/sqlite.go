// Package store provides the SQLite-backed note and sync-status store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/areaewhy/JoplinView/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	joplin_id    TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL,
	body         TEXT NOT NULL DEFAULT '',
	author       TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL DEFAULT '',
	latitude     TEXT NOT NULL DEFAULT '',
	longitude    TEXT NOT NULL DEFAULT '',
	altitude     TEXT NOT NULL DEFAULT '',
	completed    INTEGER,
	due          DATETIME,
	created_time DATETIME,
	updated_time DATETIME,
	s3_key       TEXT NOT NULL,
	tags         TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_time);

CREATE TABLE IF NOT EXISTS sync_status (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	last_sync_time DATETIME,
	total_notes    INTEGER NOT NULL DEFAULT 0,
	storage_used   TEXT NOT NULL DEFAULT '0 MB',
	is_connected   INTEGER NOT NULL DEFAULT 0
);
`

// DB wraps a sql.DB with note-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// AUTOINCREMENT keeps surrogate note ids monotonic across passes: ids
// of replaced notes are never reused.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ReplaceAll clears the note set and inserts the given records inside
// one transaction. Surrogate ids are assigned here.
func (db *DB) ReplaceAll(notes []models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("store: clear notes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO notes (joplin_id, title, body, author, source,
			latitude, longitude, altitude, completed, due,
			created_time, updated_time, s3_key, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range notes {
		tagsJSON, _ := json.Marshal(n.Tags)
		_, err := stmt.Exec(
			n.JoplinID, n.Title, n.Body, n.Author, n.Source,
			n.Latitude, n.Longitude, n.Altitude,
			nullBool(n.Completed), nullTime(n.Due),
			nullTime(n.CreatedTime), nullTime(n.UpdatedTime),
			n.S3Key, string(tagsJSON),
		)
		if err != nil {
			return fmt.Errorf("store: insert note %s: %w", n.JoplinID, err)
		}
	}

	return tx.Commit()
}

const noteColumns = `id, joplin_id, title, body, author, source,
	latitude, longitude, altitude, completed, due,
	created_time, updated_time, s3_key, tags`

// All returns every note sorted by updated time, newest first, notes
// without an updated time last.
func (db *DB) All() ([]models.Note, error) {
	return db.queryNotes(`
		SELECT `+noteColumns+` FROM notes
		ORDER BY updated_time IS NULL, updated_time DESC, id
	`)
}

// ByID returns one note by surrogate id, or apperr-compatible nil.
func (db *DB) ByID(id int64) (*models.Note, error) {
	return db.queryOne(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
}

// ByJoplinID returns one note by its natural key.
func (db *DB) ByJoplinID(joplinID string) (*models.Note, error) {
	return db.queryOne(`SELECT `+noteColumns+` FROM notes WHERE joplin_id = ?`, joplinID)
}

// Search returns notes whose title, body, or tags contain the query,
// case-insensitively.
func (db *DB) Search(query string) ([]models.Note, error) {
	like := "%" + strings.ToLower(query) + "%"
	return db.queryNotes(`
		SELECT `+noteColumns+` FROM notes
		WHERE lower(title) LIKE ? OR lower(body) LIKE ? OR lower(tags) LIKE ?
		ORDER BY updated_time IS NULL, updated_time DESC, id
	`, like, like, like)
}

// ByTags returns notes carrying any of the given tags.
func (db *DB) ByTags(tags []string) ([]models.Note, error) {
	if len(tags) == 0 {
		return []models.Note{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tags)), ",")
	args := make([]any, len(tags))
	for i, t := range tags {
		args[i] = t
	}
	return db.queryNotes(`
		SELECT `+noteColumns+` FROM notes
		WHERE EXISTS (
			SELECT 1 FROM json_each(notes.tags)
			WHERE json_each.value IN (`+placeholders+`)
		)
		ORDER BY updated_time IS NULL, updated_time DESC, id
	`, args...)
}

// Count returns the number of stored notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Status returns the stored sync status, or nil when no sync ran yet.
func (db *DB) Status() (*models.SyncStatus, error) {
	row := db.conn.QueryRow(`
		SELECT last_sync_time, total_notes, storage_used, is_connected
		FROM sync_status WHERE id = 1
	`)
	var (
		last sql.NullTime
		s    models.SyncStatus
	)
	err := row.Scan(&last, &s.TotalNotes, &s.StorageUsed, &s.IsConnected)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: status: %w", err)
	}
	if last.Valid {
		t := last.Time.UTC()
		s.LastSyncTime = &t
	}
	return &s, nil
}

// MergeStatus applies a partial update to the singleton status row and
// returns the merged record. Absent patch fields retain prior values.
func (db *DB) MergeStatus(patch models.SyncStatusPatch) (*models.SyncStatus, error) {
	current, err := db.Status()
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = &models.SyncStatus{StorageUsed: "0 MB"}
	}

	if patch.LastSyncTime != nil {
		current.LastSyncTime = patch.LastSyncTime
	}
	if patch.TotalNotes != nil {
		current.TotalNotes = *patch.TotalNotes
	}
	if patch.StorageUsed != nil {
		current.StorageUsed = *patch.StorageUsed
	}
	if patch.IsConnected != nil {
		current.IsConnected = *patch.IsConnected
	}

	_, err = db.conn.Exec(`
		INSERT INTO sync_status (id, last_sync_time, total_notes, storage_used, is_connected)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_sync_time = excluded.last_sync_time,
			total_notes    = excluded.total_notes,
			storage_used   = excluded.storage_used,
			is_connected   = excluded.is_connected
	`, nullTime(current.LastSyncTime), current.TotalNotes, current.StorageUsed, current.IsConnected)
	if err != nil {
		return nil, fmt.Errorf("store: merge status: %w", err)
	}
	return current, nil
}

func (db *DB) queryNotes(q string, args ...any) ([]models.Note, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query notes: %w", err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (db *DB) queryOne(q string, args ...any) (*models.Note, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query note: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanNote(rows)
}

func scanNote(rows *sql.Rows) (*models.Note, error) {
	var (
		n         models.Note
		completed sql.NullBool
		due       sql.NullTime
		created   sql.NullTime
		updated   sql.NullTime
		tagsJSON  string
	)
	err := rows.Scan(
		&n.ID, &n.JoplinID, &n.Title, &n.Body, &n.Author, &n.Source,
		&n.Latitude, &n.Longitude, &n.Altitude,
		&completed, &due, &created, &updated,
		&n.S3Key, &tagsJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("store: scan note: %w", err)
	}
	if completed.Valid {
		v := completed.Bool
		n.Completed = &v
	}
	n.Due = timePtr(due)
	n.CreatedTime = timePtr(created)
	n.UpdatedTime = timePtr(updated)
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil || n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
