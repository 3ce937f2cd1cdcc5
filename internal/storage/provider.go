// Package storage defines the sync-directory file-system abstraction.
package storage

import "github.com/mysticcoders/voicenotes-sync/internal/models"

// Provider is the interface for sync-directory file operations. All paths
// are relative to the sync root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether a file exists at path.
	Exists(path string) (bool, error)
	// Delete removes the file at path.
	Delete(path string) error
}
