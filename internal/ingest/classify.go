// Package ingest classifies parsed export objects and builds the
// normalized note records the store persists.
package ingest

import (
	"strings"

	"github.com/areaewhy/JoplinView/internal/apperr"
	"github.com/areaewhy/JoplinView/internal/parser"
)

// noteKind is the object type marker Joplin assigns to actual notes;
// resources, folders, tag links and revisions carry other values.
const noteKind = "1"

// Classifier applies the inclusion rules that decide whether a parsed
// object becomes a note.
type Classifier struct {
	// ParentFolder, when non-empty, restricts notes to one source
	// folder. Parse results without a parent field always pass.
	ParentFolder string
	// DedupeTitles enables the duplicate-title guard: first seen in
	// listing order wins. Listing order is not guaranteed stable
	// across providers.
	DedupeTitles bool
}

// Seen accumulates identity of notes already accepted within one sync
// pass. It is threaded through the processing loop explicitly; a pass
// starts with NewSeen and discards it at the end.
type Seen struct {
	titles map[string]struct{}
	ids    map[string]struct{}
}

// NewSeen returns an empty accumulator.
func NewSeen() *Seen {
	return &Seen{
		titles: make(map[string]struct{}),
		ids:    make(map[string]struct{}),
	}
}

// Check applies the rules in order and returns the first failure as an
// apperr sentinel, or nil when the object qualifies as a note. joplinID
// and title must already be derived for the candidate.
func (c *Classifier) Check(res *parser.Result, joplinID, title string, seen *Seen) error {
	if res.HasKind && res.Kind != noteKind {
		return apperr.ErrNotANote
	}
	if c.ParentFolder != "" && res.HasParent && res.ParentID != c.ParentFolder {
		return apperr.ErrFolderMismatch
	}
	if strings.TrimSpace(res.Body) == "" {
		return apperr.ErrEmptyBody
	}
	if _, dup := seen.ids[joplinID]; dup {
		return apperr.ErrDuplicateID
	}
	if c.DedupeTitles {
		if _, dup := seen.titles[title]; dup {
			return apperr.ErrDuplicateTitle
		}
	}
	return nil
}

// Accept records an accepted note's identity in the accumulator.
func (c *Classifier) Accept(joplinID, title string, seen *Seen) {
	seen.ids[joplinID] = struct{}{}
	seen.titles[title] = struct{}{}
}

// DeriveTitle returns the note title for a body: the first line
// trimmed, with any leading '#' run and surrounding space stripped.
// A blank body yields the fallback (the joplinId by convention).
func DeriveTitle(body, fallback string) string {
	first := body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		first = body[:i]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return fallback
	}
	if strings.HasPrefix(first, "#") {
		first = strings.TrimSpace(strings.TrimLeft(first, "#"))
		if first == "" {
			return fallback
		}
	}
	return first
}
