package index

import (
	"fmt"

	"github.com/mysticcoders/voicenotes-sync/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertNote inserts or replaces a synced note and its FTS entry.
func (db *DB) UpsertNote(n models.SyncedNote, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (path, recording_id, title, created_at, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			recording_id = excluded.recording_id,
			title        = excluded.title,
			created_at   = excluded.created_at,
			checksum     = excluded.checksum,
			body         = excluded.body,
			updated_at   = CURRENT_TIMESTAMP
	`, n.Path, n.RecordingID, n.Title, n.CreatedAt, n.Checksum, body)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, n.Path, n.Title, body); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteNote removes a note and its FTS entry.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, path)

	return tx.Commit()
}

// RecordingIDs returns every synced recording identifier mapped to the
// path of its local note.
func (db *DB) RecordingIDs() (map[int64]string, error) {
	rows, err := db.conn.Query(`SELECT recording_id, path FROM notes WHERE recording_id != 0`)
	if err != nil {
		return nil, fmt.Errorf("index: recording ids: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var p string
		if err := rows.Scan(&id, &p); err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, rows.Err()
}

// PathRecordingID returns the recording id stored for path, or 0.
func (db *DB) PathRecordingID(path string) (int64, error) {
	var id int64
	err := db.conn.QueryRow(`SELECT recording_id FROM notes WHERE path = ?`, path).Scan(&id)
	if err != nil {
		return 0, nil // not found is fine
	}
	return id, nil
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Notes returns every synced note, most recently created first.
func (db *DB) Notes() ([]models.SyncedNote, error) {
	rows, err := db.conn.Query(`
		SELECT path, recording_id, title, created_at, checksum
		FROM notes
		WHERE recording_id != 0
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: notes: %w", err)
	}
	defer rows.Close()
	var out []models.SyncedNote
	for rows.Next() {
		var n models.SyncedNote
		if err := rows.Scan(&n.Path, &n.RecordingID, &n.Title, &n.CreatedAt, &n.Checksum); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Count returns the number of synced notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes WHERE recording_id != 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
