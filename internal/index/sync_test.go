package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mysticcoders/voicenotes-sync/internal/storage"
)

func rebuildEnv(t *testing.T) (string, storage.Provider, *DB, *slog.Logger) {
	t.Helper()
	dir, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return dir, store, db, logger
}

const syncedNote = "---\nrecording_id: 4242\ncreated_at: \"2025-01-15 09:30:00\"\n---\n\n# Synced Note\n\nbody text\n"

func TestRebuild_IndexesNewFiles(t *testing.T) {
	dir, store, db, logger := rebuildEnv(t)

	_ = os.WriteFile(filepath.Join(dir, "note.md"), []byte(syncedNote), 0o644)

	if err := Rebuild(db, store, logger); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	ids, err := db.RecordingIDs()
	if err != nil {
		t.Fatal(err)
	}
	if ids[4242] != "note.md" {
		t.Errorf("RecordingIDs = %v", ids)
	}
}

func TestRebuild_RemovesStaleEntries(t *testing.T) {
	dir, store, db, logger := rebuildEnv(t)

	path := filepath.Join(dir, "gone.md")
	_ = os.WriteFile(path, []byte(syncedNote), 0o644)
	if err := Rebuild(db, store, logger); err != nil {
		t.Fatal(err)
	}
	if id, _ := db.PathRecordingID("gone.md"); id != 4242 {
		t.Fatal("precondition: note should be indexed")
	}

	// Manual deletion outside the watcher self-heals on the next rebuild,
	// freeing the recording id for a future pass.
	_ = os.Remove(path)
	if err := Rebuild(db, store, logger); err != nil {
		t.Fatal(err)
	}
	ids, _ := db.RecordingIDs()
	if _, ok := ids[4242]; ok {
		t.Error("stale entry not removed")
	}
}

func TestRebuild_ChecksumShortCircuit(t *testing.T) {
	dir, store, db, logger := rebuildEnv(t)

	_ = os.WriteFile(filepath.Join(dir, "stable.md"), []byte(syncedNote), 0o644)
	if err := Rebuild(db, store, logger); err != nil {
		t.Fatal(err)
	}
	before, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}

	// Unchanged files keep their checksum across passes.
	if err := Rebuild(db, store, logger); err != nil {
		t.Fatal(err)
	}
	after, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if before["stable.md"] == "" || before["stable.md"] != after["stable.md"] {
		t.Errorf("checksums changed across no-op rebuild: %v vs %v", before, after)
	}
}

func TestRebuild_ReindexesChangedFiles(t *testing.T) {
	dir, store, db, logger := rebuildEnv(t)

	path := filepath.Join(dir, "edit.md")
	_ = os.WriteFile(path, []byte(syncedNote), 0o644)
	if err := Rebuild(db, store, logger); err != nil {
		t.Fatal(err)
	}

	edited := "---\nrecording_id: 7777\n---\n\n# Edited\n"
	_ = os.WriteFile(path, []byte(edited), 0o644)
	if err := Rebuild(db, store, logger); err != nil {
		t.Fatal(err)
	}

	id, err := db.PathRecordingID("edit.md")
	if err != nil {
		t.Fatal(err)
	}
	if id != 7777 {
		t.Errorf("recording id = %d, want 7777", id)
	}
}

func TestRebuild_ForeignNotesIndexedWithZeroID(t *testing.T) {
	dir, store, db, logger := rebuildEnv(t)

	_ = os.WriteFile(filepath.Join(dir, "hand-written.md"), []byte("# Not Synced\n\njust a note\n"), 0o644)
	if err := Rebuild(db, store, logger); err != nil {
		t.Fatal(err)
	}

	// Indexed for the checksum short-circuit, but outside the sync domain.
	checksums, _ := db.AllChecksums()
	if checksums["hand-written.md"] == "" {
		t.Error("foreign note should still be checksummed")
	}
	ids, _ := db.RecordingIDs()
	if len(ids) != 0 {
		t.Errorf("foreign note must not claim a recording id: %v", ids)
	}
	count, _ := db.Count()
	if count != 0 {
		t.Errorf("Count = %d, want 0", count)
	}
}
