package index

import (
	"log/slog"

	"github.com/mysticcoders/voicenotes-sync/internal/models"
	"github.com/mysticcoders/voicenotes-sync/internal/parser"
	"github.com/mysticcoders/voicenotes-sync/internal/storage"
)

// Rebuild walks the sync directory and brings the index in line with the
// files on disk:
//   - new/changed notes are parsed and upserted (frontmatter recording_id)
//   - index rows whose files are gone are deleted
//
// This is the self-healing mechanism: the index needs no separately
// persisted state to stay consistent after manual deletions or crashes.
func Rebuild(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("rebuild: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, m.Checksum, data); err != nil {
			logger.Warn("rebuild: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("rebuild: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("rebuild: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("rebuild: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses a note and upserts it. Notes without a recording_id in
// their frontmatter are not part of the sync domain but are still indexed
// (id 0) so their checksum short-circuits future rebuild passes.
func indexFile(db *DB, path, checksum string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	row := models.SyncedNote{
		Path:        path,
		RecordingID: res.RecordingID(),
		Title:       res.Title,
		CreatedAt:   res.CreatedAt(),
		Checksum:    checksum,
	}
	return db.UpsertNote(row, res.Body)
}
