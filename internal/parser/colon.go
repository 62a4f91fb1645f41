package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/areaewhy/JoplinView/internal/apperr"
)

// metaSentinel marks the first metadata line of a native Joplin export
// object. Everything before it is the note body.
const metaSentinel = "id:"

// ColonDialect decodes Joplin's native export format: a Markdown body
// followed by a block of "key: value" lines.
type ColonDialect struct{}

// Name implements Dialect.
func (d *ColonDialect) Name() string { return DialectJoplin }

// Parse implements Dialect. It never fails structurally; the only
// errors are the revision short-circuit.
func (d *ColonDialect) Parse(raw []byte) (*Result, error) {
	text := string(raw)

	// Revision/history snapshots open directly with their metadata and
	// still mention an object type. Reject them before the line scan.
	if strings.HasPrefix(strings.TrimSpace(text), metaSentinel) && strings.Contains(text, "type_:") {
		return nil, apperr.ErrRevisionObject
	}

	body, metaLines := splitAtSentinel(text)
	meta := parseKeyValues(metaLines)

	return &Result{
		Body:      body,
		Kind:      meta["type_"],
		HasKind:   true,
		ParentID:  meta["parent_id"],
		HasParent: true,
		Author:    meta["author"],
		Source:    meta["source"],
		Latitude:  meta["latitude"],
		Longitude: meta["longitude"],
		Altitude:  meta["altitude"],
		Completed: colonCompleted(meta["todo_completed"]),
		Due:       colonDue(meta["todo_due"]),
		Created:   parseColonTime(meta["created_time"]),
		Updated:   parseColonTime(meta["updated_time"]),
	}, nil
}

// splitAtSentinel scans top to bottom for the first line whose trimmed
// form starts with the sentinel key. Lines before it form the body;
// that line and everything after is metadata. Without a sentinel the
// body is empty and every line is metadata candidate text (the
// classifier rejects such objects for their missing type field).
func splitAtSentinel(text string) (string, []string) {
	lines := strings.Split(text, "\n")
	idx := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), metaSentinel) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", lines
	}
	body := strings.TrimSpace(strings.Join(lines[:idx], "\n"))
	return body, lines[idx:]
}

// parseKeyValues splits each line on the first colon only, so values
// may themselves contain colons. Last write wins on duplicate keys.
func parseKeyValues(lines []string) map[string]string {
	meta := make(map[string]string, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		i := strings.Index(trimmed, ":")
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:i])
		meta[key] = strings.TrimSpace(trimmed[i+1:])
	}
	return meta
}

func colonCompleted(v string) *bool {
	if v != "1" {
		return nil
	}
	done := true
	return &done
}

// colonDue parses todo_due as epoch milliseconds. Joplin writes "0"
// for notes without a due date.
func colonDue(v string) *time.Time {
	if v == "" || v == "0" {
		return nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

// parseColonTime accepts the timestamp representations seen in Joplin
// exports: RFC 3339 (with or without fractional seconds) and epoch
// milliseconds. Unparsable values become nil, never an error.
func parseColonTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	return nil
}
