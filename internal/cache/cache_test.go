package cache

import (
	"testing"
	"time"

	"github.com/areaewhy/JoplinView/internal/models"
)

func TestCache_EmptyByDefault(t *testing.T) {
	c := New(time.Hour)
	if c.Get() != nil {
		t.Error("new cache should be empty")
	}
	if c.Fresh() {
		t.Error("empty cache is never fresh")
	}
}

func TestCache_PutGet(t *testing.T) {
	c := New(time.Hour)
	notes := []models.Note{{JoplinID: "a", Title: "A"}}
	c.Put(notes, models.SyncStatus{TotalNotes: 1, IsConnected: true})

	snap := c.Get()
	if snap == nil {
		t.Fatal("snapshot missing after Put")
	}
	if len(snap.Notes) != 1 || snap.Status.TotalNotes != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if !c.Fresh() {
		t.Error("just-written snapshot should be fresh")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Hour)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Put(nil, models.SyncStatus{})

	c.now = func() time.Time { return now.Add(59 * time.Minute) }
	if !c.Fresh() {
		t.Error("snapshot inside the window should be fresh")
	}

	c.now = func() time.Time { return now.Add(61 * time.Minute) }
	if c.Fresh() {
		t.Error("snapshot past the window should be stale")
	}
}

func TestCache_PutOverwritesWhole(t *testing.T) {
	c := New(time.Hour)
	c.Put([]models.Note{{JoplinID: "a"}, {JoplinID: "b"}}, models.SyncStatus{TotalNotes: 2})
	c.Put([]models.Note{{JoplinID: "c"}}, models.SyncStatus{TotalNotes: 1})

	snap := c.Get()
	if len(snap.Notes) != 1 || snap.Notes[0].JoplinID != "c" {
		t.Errorf("snapshot not replaced whole: %+v", snap.Notes)
	}
}
