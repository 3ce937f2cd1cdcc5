package models

import "time"

// NoteMetadata is a lightweight representation returned by vault list
// operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncedNote is one row of the synced-index: a local note known to
// correspond to a remote recording.
type SyncedNote struct {
	Path        string `json:"path"`
	RecordingID int64  `json:"recording_id"`
	Title       string `json:"title,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	Checksum    string `json:"checksum"`
}
