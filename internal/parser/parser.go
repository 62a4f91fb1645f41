// Package parser splits raw Joplin export objects into body and
// metadata and decodes the metadata into a dialect-neutral result.
package parser

import (
	"fmt"
	"time"
)

// Dialect names accepted in configuration.
const (
	DialectJoplin      = "joplin"
	DialectFrontMatter = "frontmatter"
)

// Result is the dialect-neutral output of parsing one export object.
// Pointer fields are nil when the source carries no usable value;
// geo fields pass through as strings without numeric validation.
type Result struct {
	Body string

	// Kind is the raw object type marker ("1" for notes in native
	// Joplin exports). HasKind is false for dialects that carry no
	// type field at all; the classifier then skips the type rule.
	Kind    string
	HasKind bool

	// ParentID is the source folder identifier. HasParent mirrors
	// HasKind for dialects without a parent field.
	ParentID  string
	HasParent bool

	// Title is an explicit title carried by the metadata, if any.
	// Title derivation from the body happens downstream.
	Title string

	Author    string
	Source    string
	Latitude  string
	Longitude string
	Altitude  string
	Completed *bool
	Due       *time.Time
	Created   *time.Time
	Updated   *time.Time
	Tags      []string
}

// Dialect decodes one metadata convention of the Joplin export tree.
type Dialect interface {
	Name() string
	// Parse splits raw object content into body and metadata and
	// returns the decoded result. Per-object rejects surface as
	// apperr sentinels (revision snapshots, malformed metadata).
	Parse(raw []byte) (*Result, error)
}

// For returns the dialect registered under name.
func For(name string) (Dialect, error) {
	switch name {
	case DialectJoplin:
		return &ColonDialect{}, nil
	case DialectFrontMatter:
		return &FrontMatterDialect{}, nil
	default:
		return nil, fmt.Errorf("parser: unknown dialect %q", name)
	}
}
