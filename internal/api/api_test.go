package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/areaewhy/JoplinView/internal/cache"
	"github.com/areaewhy/JoplinView/internal/models"
	"github.com/areaewhy/JoplinView/internal/parser"
	"github.com/areaewhy/JoplinView/internal/syncer"
	"github.com/areaewhy/JoplinView/internal/testutil"
)

// testEnv wires a throwaway store, an in-memory bucket, and the router.
// authToken == "" means auth disabled.
func testEnv(t *testing.T, authToken string) (*testutil.Bucket, http.Handler) {
	t.Helper()
	return testEnvDialect(t, authToken, parser.DialectJoplin)
}

func testEnvDialect(t *testing.T, authToken, dialectName string) (*testutil.Bucket, http.Handler) {
	t.Helper()

	bucket := testutil.NewBucket()
	db := testutil.TestStore(t)
	dialect, err := parser.For(dialectName)
	if err != nil {
		t.Fatal(err)
	}
	s := syncer.New(syncer.Config{
		Objects:          bucket,
		Notes:            db,
		Status:           db,
		Cache:            cache.New(0),
		Dialect:          dialect,
		FetchConcurrency: 2,
	})
	router := NewRouter(s, db, db, authToken != "", authToken, nil)
	return bucket, router
}

func exportObject(id, parent, body string) string {
	return fmt.Sprintf("%s\n\nid: %s\ntype_: 1\nparent_id: %s\n", body, id, parent)
}

func doJSON(t *testing.T, router http.Handler, method, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s: %v", method, target, err)
		}
	}
	return w
}

func TestSyncThenListNotes(t *testing.T) {
	bucket, router := testEnv(t, "")
	bucket.Put("n1.md", exportObject("n1", "F", "# First note\nbody one"))
	bucket.Put("n2.md", exportObject("n2", "F", "# Second note\nbody two"))

	var sync SyncResponse
	w := doJSON(t, router, http.MethodPost, "/sync", &sync)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d, body = %s", w.Code, w.Body.String())
	}
	if sync.NotesCount != 2 {
		t.Errorf("notesCount = %d, want 2", sync.NotesCount)
	}
	if sync.StorageUsed == "" {
		t.Error("storageUsed missing")
	}

	var list NoteListResponse
	w = doJSON(t, router, http.MethodGet, "/notes", &list)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	if list.Total != 2 || len(list.Notes) != 2 {
		t.Fatalf("total = %d, notes = %d", list.Total, len(list.Notes))
	}
}

func TestListNotes_SearchAndTags(t *testing.T) {
	bucket, router := testEnvDialect(t, "", parser.DialectFrontMatter)
	bucket.Put("n1.md", "---\ntitle: Grocery list\ntags: [home]\n---\nmilk and eggs\n")
	bucket.Put("n2.md", "---\ntitle: Work journal\ntags: [work]\n---\nstandup notes\n")

	if w := doJSON(t, router, http.MethodPost, "/sync", nil); w.Code != http.StatusOK {
		t.Fatalf("sync status = %d", w.Code)
	}

	var list NoteListResponse
	doJSON(t, router, http.MethodGet, "/notes?search=GROCERY", &list)
	if list.Total != 1 || list.Notes[0].JoplinID != "n1" {
		t.Errorf("search result = %+v", list)
	}

	list = NoteListResponse{}
	doJSON(t, router, http.MethodGet, "/notes?tags=work,unknown", &list)
	if list.Total != 1 || list.Notes[0].JoplinID != "n2" {
		t.Errorf("tag filter result = %+v", list)
	}

	list = NoteListResponse{}
	doJSON(t, router, http.MethodGet, "/notes?search=journal&tags=home", &list)
	if list.Total != 0 {
		t.Errorf("combined filter should exclude all, got %+v", list)
	}
}

func TestListNotes_WarmsColdStore(t *testing.T) {
	bucket, router := testEnv(t, "")
	bucket.Put("n1.md", exportObject("n1", "F", "# Cold start\nbody"))

	// No explicit sync: the list endpoint fills the empty store itself.
	var list NoteListResponse
	w := doJSON(t, router, http.MethodGet, "/notes", &list)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if list.Total != 1 {
		t.Fatalf("total = %d, want 1 after self-warm", list.Total)
	}
}

func TestGetNote(t *testing.T) {
	bucket, router := testEnv(t, "")
	bucket.Put("n1.md", exportObject("n1", "F", "# Target\nbody"))
	if w := doJSON(t, router, http.MethodPost, "/sync", nil); w.Code != http.StatusOK {
		t.Fatalf("sync status = %d", w.Code)
	}

	var list NoteListResponse
	doJSON(t, router, http.MethodGet, "/notes", &list)
	if list.Total != 1 {
		t.Fatal("seed note missing")
	}
	id := list.Notes[0].ID

	var note models.Note
	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/notes/%d", id), &note)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if note.JoplinID != "n1" || note.Title != "Target" {
		t.Errorf("note = %+v", note)
	}

	if w := doJSON(t, router, http.MethodGet, "/notes/999999", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing id status = %d, want 404", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/notes/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestSyncStatus_DefaultAndAfterPass(t *testing.T) {
	bucket, router := testEnv(t, "")

	var status models.SyncStatus
	w := doJSON(t, router, http.MethodGet, "/sync-status", &status)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if status.TotalNotes != 0 || status.IsConnected {
		t.Errorf("default status = %+v", status)
	}

	bucket.Put("n1.md", exportObject("n1", "F", "# One\nbody"))
	if w := doJSON(t, router, http.MethodPost, "/sync", nil); w.Code != http.StatusOK {
		t.Fatalf("sync status = %d", w.Code)
	}

	status = models.SyncStatus{}
	doJSON(t, router, http.MethodGet, "/sync-status", &status)
	if status.TotalNotes != 1 || !status.IsConnected || status.LastSyncTime == nil {
		t.Errorf("post-sync status = %+v", status)
	}
}

func TestListTags(t *testing.T) {
	bucket, router := testEnvDialect(t, "", parser.DialectFrontMatter)
	bucket.Put("n1.md", "---\ntitle: One\ntags: [a, b]\n---\nbody\n")
	bucket.Put("n2.md", "---\ntitle: Two\ntags: [b]\n---\nbody\n")
	if w := doJSON(t, router, http.MethodPost, "/sync", nil); w.Code != http.StatusOK {
		t.Fatalf("sync status = %d", w.Code)
	}

	var resp TagListResponse
	w := doJSON(t, router, http.MethodGet, "/tags", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("tags status = %d", w.Code)
	}
	if len(resp.Tags) != 2 {
		t.Fatalf("tags = %+v", resp.Tags)
	}
	if resp.Tags[0].Name != "a" || resp.Tags[0].Count != 1 {
		t.Errorf("tags[0] = %+v", resp.Tags[0])
	}
	if resp.Tags[1].Name != "b" || resp.Tags[1].Count != 2 {
		t.Errorf("tags[1] = %+v", resp.Tags[1])
	}
}

func TestSyncFailureStatusCodes(t *testing.T) {
	bucket, router := testEnv(t, "")
	bucket.ListErr = fmt.Errorf("connection refused")

	if w := doJSON(t, router, http.MethodPost, "/sync", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("listing failure status = %d, want 503", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/sync-status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/sync-status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/sync-status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}
