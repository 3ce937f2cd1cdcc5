package index

import (
	"os"
	"testing"

	"github.com/mysticcoders/voicenotes-sync/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "vnsync-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestUpsertAndChecksums(t *testing.T) {
	db := testDB(t)
	n := models.SyncedNote{
		Path:        "hello.md",
		RecordingID: 42,
		Title:       "Hello World",
		CreatedAt:   "2025-01-15 09:30:00",
		Checksum:    "abc123",
	}
	if err := db.UpsertNote(n, "This is a hello world note."); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if cs["hello.md"] != "abc123" {
		t.Errorf("checksum = %q, want %q", cs["hello.md"], "abc123")
	}
}

func TestRecordingIDs(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(models.SyncedNote{Path: "a.md", RecordingID: 1, Checksum: "1"}, "a")
	_ = db.UpsertNote(models.SyncedNote{Path: "b.md", RecordingID: 2, Checksum: "2"}, "b")
	// A local file without a recording id is indexed but not synced.
	_ = db.UpsertNote(models.SyncedNote{Path: "local.md", RecordingID: 0, Checksum: "3"}, "local")

	ids, err := db.RecordingIDs()
	if err != nil {
		t.Fatalf("RecordingIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2", len(ids))
	}
	if ids[1] != "a.md" || ids[2] != "b.md" {
		t.Errorf("ids = %v", ids)
	}
}

func TestPathRecordingID(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(models.SyncedNote{Path: "owned.md", RecordingID: 77, Checksum: "1"}, "x")

	id, err := db.PathRecordingID("owned.md")
	if err != nil {
		t.Fatalf("PathRecordingID: %v", err)
	}
	if id != 77 {
		t.Errorf("id = %d, want 77", id)
	}

	// Unknown paths report 0 without error.
	id, err = db.PathRecordingID("missing.md")
	if err != nil {
		t.Fatalf("PathRecordingID missing: %v", err)
	}
	if id != 0 {
		t.Errorf("id = %d, want 0", id)
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(models.SyncedNote{Path: "del.md", RecordingID: 5, Checksum: "x"}, "body")

	if err := db.DeleteNote("del.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	cs, _ := db.AllChecksums()
	if _, ok := cs["del.md"]; ok {
		t.Error("deleted note still indexed")
	}
	ids, _ := db.RecordingIDs()
	if _, ok := ids[5]; ok {
		t.Error("deleted recording id still present")
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(models.SyncedNote{Path: "up.md", RecordingID: 9, Title: "Old", Checksum: "1"}, "old body")
	_ = db.UpsertNote(models.SyncedNote{Path: "up.md", RecordingID: 9, Title: "New", Checksum: "2"}, "new body")

	cs, _ := db.AllChecksums()
	if cs["up.md"] != "2" {
		t.Errorf("checksum = %q, want %q", cs["up.md"], "2")
	}
	notes, _ := db.Notes()
	if len(notes) != 1 || notes[0].Title != "New" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestNotes_NewestFirst(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(models.SyncedNote{Path: "old.md", RecordingID: 1, CreatedAt: "2024-01-01 08:00:00", Checksum: "1"}, "a")
	_ = db.UpsertNote(models.SyncedNote{Path: "new.md", RecordingID: 2, CreatedAt: "2025-06-01 08:00:00", Checksum: "2"}, "b")

	notes, err := db.Notes()
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2", len(notes))
	}
	if notes[0].Path != "new.md" {
		t.Errorf("first note = %q, want new.md", notes[0].Path)
	}
}

func TestCount_SyncedOnly(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(models.SyncedNote{Path: "a.md", RecordingID: 1, Checksum: "1"}, "a")
	_ = db.UpsertNote(models.SyncedNote{Path: "local.md", RecordingID: 0, Checksum: "2"}, "b")

	n, err := db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(models.SyncedNote{Path: "s.md", RecordingID: 3, Title: "Search Me", Checksum: "1"}, "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}
