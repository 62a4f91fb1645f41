// Package models defines the domain types for JoplinView.
package models

import "time"

// Note is a normalized note extracted from one export object.
//
// ID is a surrogate key assigned by the store on insert (monotonic,
// never reused). JoplinID is the natural key: the export object's GUID
// filename stem, unique across the note set.
type Note struct {
	ID          int64      `json:"id"`
	JoplinID    string     `json:"joplinId"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Author      string     `json:"author,omitempty"`
	Source      string     `json:"source,omitempty"`
	Latitude    string     `json:"latitude,omitempty"`
	Longitude   string     `json:"longitude,omitempty"`
	Altitude    string     `json:"altitude,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Due         *time.Time `json:"due,omitempty"`
	CreatedTime *time.Time `json:"createdTime,omitempty"`
	UpdatedTime *time.Time `json:"updatedTime,omitempty"`
	S3Key       string     `json:"s3Key"`
	Tags        []string   `json:"tags"`
}

// SyncStatus is the singleton record describing the last reconciliation.
type SyncStatus struct {
	LastSyncTime *time.Time `json:"lastSyncTime"`
	TotalNotes   int        `json:"totalNotes"`
	StorageUsed  string     `json:"storageUsed"`
	IsConnected  bool       `json:"isConnected"`
}

// SyncStatusPatch is a partial status update. Nil fields retain the
// stored value on merge.
type SyncStatusPatch struct {
	LastSyncTime *time.Time
	TotalNotes   *int
	StorageUsed  *string
	IsConnected  *bool
}

// TagCount is one row of the tag frequency table.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ObjectInfo describes one listed bucket object.
type ObjectInfo struct {
	Key  string
	Size int64
}
