package objstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/areaewhy/JoplinView/internal/apperr"
)

func testDir(t *testing.T, files map[string]string) *Dir {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	d, err := NewDir(root)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return d
}

func TestDirList_OnlyMarkdown(t *testing.T) {
	d := testDir(t, map[string]string{
		"a1.md":         "note a",
		"b2.md":         "note b",
		"resource.pdf":  "binary",
		"sub/nested.md": "nested note",
	})
	infos, err := d.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("len = %d, want 3 (.md only)", len(infos))
	}
	for _, info := range infos {
		if info.Size == 0 {
			t.Errorf("object %s has zero size", info.Key)
		}
	}
}

func TestDirList_PrefixFilter(t *testing.T) {
	d := testDir(t, map[string]string{
		"notes/a.md": "a",
		"other/b.md": "b",
	})
	infos, err := d.List(context.Background(), "notes/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "notes/a.md" {
		t.Errorf("infos = %v, want only notes/a.md", infos)
	}
}

func TestDirGet(t *testing.T) {
	d := testDir(t, map[string]string{"a1.md": "hello"})
	data, err := d.Get(context.Background(), "a1.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q", data)
	}
	if _, err := d.Get(context.Background(), "missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing key err = %v, want ErrNotFound", err)
	}
}

func TestDirGet_TraversalRejected(t *testing.T) {
	d := testDir(t, map[string]string{"a1.md": "x"})
	if _, err := d.Get(context.Background(), "../outside.md"); err == nil {
		t.Error("traversal key should be rejected")
	}
	if _, err := d.Get(context.Background(), "/etc/passwd"); err == nil {
		t.Error("absolute key should be rejected")
	}
}

func TestNewDir_MissingRoot(t *testing.T) {
	if _, err := NewDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing root should fail")
	}
}
