// Package apperr defines the sentinel errors shared across layers.
package apperr

import "errors"

// Structural errors: these abort an operation and surface to the caller.
var (
	ErrNotFound         = errors.New("not found")
	ErrConfigMissing    = errors.New("bucket configuration missing")
	ErrStoreUnavailable = errors.New("note store unavailable")
	ErrSyncInProgress   = errors.New("sync already in progress")
)

// Per-object errors: the reconciler logs these and skips the object.
var (
	ErrMalformedMetadata = errors.New("malformed metadata")
	ErrRevisionObject    = errors.New("revision snapshot, not a note")
	ErrNotANote          = errors.New("object type is not a note")
	ErrFolderMismatch    = errors.New("parent folder does not match filter")
	ErrEmptyBody         = errors.New("empty note body")
	ErrDuplicateTitle    = errors.New("duplicate title")
	ErrDuplicateID       = errors.New("duplicate joplin id")
)

// Skippable reports whether err only disqualifies a single object
// rather than the whole sync pass.
func Skippable(err error) bool {
	for _, s := range []error{
		ErrMalformedMetadata,
		ErrRevisionObject,
		ErrNotANote,
		ErrFolderMismatch,
		ErrEmptyBody,
		ErrDuplicateTitle,
		ErrDuplicateID,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
