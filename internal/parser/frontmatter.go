package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/areaewhy/JoplinView/internal/apperr"
)

// FrontMatterDialect decodes the legacy export convention: a leading
// YAML block between --- delimiters, then the Markdown body.
type FrontMatterDialect struct{}

// Name implements Dialect.
func (d *FrontMatterDialect) Name() string { return DialectFrontMatter }

// Parse implements Dialect. Malformed YAML fails the whole object with
// apperr.ErrMalformedMetadata; objects without a front-matter block are
// all body.
func (d *FrontMatterDialect) Parse(raw []byte) (*Result, error) {
	fm, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}
	return &Result{
		Body:      body,
		Title:     fmString(fm, "title"),
		Author:    fmString(fm, "author"),
		Source:    fmString(fm, "source"),
		Latitude:  fmString(fm, "latitude"),
		Longitude: fmString(fm, "longitude"),
		Altitude:  fmString(fm, "altitude"),
		Completed: fmCompleted(fm),
		Due:       fmTime(fm, "due"),
		Created:   fmTime(fm, "created"),
		Updated:   fmTime(fm, "updated"),
		Tags:      fmTags(fm),
	}, nil
}

// splitFrontMatter separates the YAML block (between leading ---
// delimiters) from the body. Without an opening delimiter the entire
// content is body; without a closing one likewise.
func splitFrontMatter(raw []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(raw, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(raw), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(raw), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimSpace(string(afterDelim))

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrMalformedMetadata, err)
	}
	return fm, body, nil
}

func fmString(fm map[string]any, key string) string {
	v, ok := fm[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	// YAML turns unquoted numbers into typed scalars; geo fields stay
	// strings downstream.
	return fmt.Sprintf("%v", v)
}

// fmCompleted honors both historical spellings: "completed?: yes" and
// a plain boolean "completed: true".
func fmCompleted(fm map[string]any) *bool {
	done := true
	if s, ok := fm["completed?"].(string); ok && s == "yes" {
		return &done
	}
	if b, ok := fm["completed"].(bool); ok && b {
		return &done
	}
	return nil
}

// fmTime accepts time.Time (yaml.v3 decodes ISO timestamps natively),
// RFC 3339 strings, and plain dates. Anything else is nil.
func fmTime(fm map[string]any, key string) *time.Time {
	switch v := fm[key].(type) {
	case time.Time:
		t := v.UTC()
		return &t
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

// fmTags returns the tags sequence verbatim when it actually is a
// sequence of scalars; any other shape yields no tags.
func fmTags(fm map[string]any) []string {
	seq, ok := fm["tags"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range seq {
		if s, ok := item.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
