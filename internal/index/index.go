package index

import "github.com/mysticcoders/voicenotes-sync/internal/models"

// SyncedIndex defines the operations the sync pipeline needs from the
// index. Consumers depend on this interface rather than the concrete *DB
// to facilitate testing with mocks.
type SyncedIndex interface {
	UpsertNote(n models.SyncedNote, body string) error
	DeleteNote(path string) error
	RecordingIDs() (map[int64]string, error)
	PathRecordingID(path string) (int64, error)
	AllChecksums() (map[string]string, error)
	Notes() ([]models.SyncedNote, error)
	Count() (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies SyncedIndex at compile time.
var _ SyncedIndex = (*DB)(nil)
