package api

import (
	"github.com/mysticcoders/voicenotes-sync/internal/models"
	"github.com/mysticcoders/voicenotes-sync/internal/syncer"
)

// StatusResponse describes the daemon state.
type StatusResponse struct {
	Running    bool           `json:"running"`
	NoteCount  int            `json:"note_count"`
	LastReport *syncer.Report `json:"last_report,omitempty"`
}

// NoteListResponse wraps indexed note listings.
type NoteListResponse struct {
	Notes []models.SyncedNote `json:"notes"`
	Total int                 `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
