package ingest

import (
	"strings"

	"github.com/areaewhy/JoplinView/internal/models"
	"github.com/areaewhy/JoplinView/internal/parser"
)

// Builder maps classified parse results into pre-insert note records.
type Builder struct {
	// Prefix is the bucket key prefix stripped when deriving the
	// joplinId from an object key.
	Prefix string
}

// JoplinID derives the natural key from an object key: the key minus
// the configured prefix and the .md extension.
func (b *Builder) JoplinID(key string) string {
	id := strings.TrimPrefix(key, b.Prefix)
	return strings.TrimSuffix(id, ".md")
}

// Title resolves the title for a candidate: an explicit metadata title
// wins, then the first body line, then the joplinId.
func (b *Builder) Title(res *parser.Result, joplinID string) string {
	if t := strings.TrimSpace(res.Title); t != "" {
		return t
	}
	return DeriveTitle(res.Body, joplinID)
}

// Build assembles the note record for an accepted object. The
// surrogate id stays zero; the store assigns it on insert.
func (b *Builder) Build(key string, res *parser.Result) models.Note {
	joplinID := b.JoplinID(key)
	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Note{
		JoplinID:    joplinID,
		Title:       b.Title(res, joplinID),
		Body:        res.Body,
		Author:      res.Author,
		Source:      res.Source,
		Latitude:    res.Latitude,
		Longitude:   res.Longitude,
		Altitude:    res.Altitude,
		Completed:   res.Completed,
		Due:         res.Due,
		CreatedTime: res.Created,
		UpdatedTime: res.Updated,
		S3Key:       key,
		Tags:        tags,
	}
}
