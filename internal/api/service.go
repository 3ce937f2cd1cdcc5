package api

import (
	"context"

	"github.com/mysticcoders/voicenotes-sync/internal/format"
	"github.com/mysticcoders/voicenotes-sync/internal/index"
	"github.com/mysticcoders/voicenotes-sync/internal/models"
	"github.com/mysticcoders/voicenotes-sync/internal/syncer"
)

// Syncer triggers sync passes and reports on them.
type Syncer interface {
	Sync(ctx context.Context, full bool) (*syncer.Report, error)
	Running() bool
	LastReport() *syncer.Report
}

// Index exposes read access to the synced-note index.
type Index interface {
	Notes() ([]models.SyncedNote, error)
	Search(query string, limit int) ([]index.SearchResult, error)
	Count() (int, error)
}

// Account fetches the authenticated remote user.
type Account interface {
	Me(ctx context.Context) (*models.User, error)
}

// Service coordinates the orchestrator, index and remote account for the
// daemon API layer.
type Service struct {
	sync    Syncer
	idx     Index
	account Account
}

// NewService creates a new API service.
func NewService(sync Syncer, idx Index, account Account) *Service {
	return &Service{sync: sync, idx: idx, account: account}
}

// Status reports the daemon state: whether a pass is running, how many notes
// are indexed, and the last completed report.
func (s *Service) Status() (*StatusResponse, error) {
	count, err := s.idx.Count()
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		Running:    s.sync.Running(),
		NoteCount:  count,
		LastReport: s.sync.LastReport(),
	}, nil
}

// TriggerSync runs one sync pass.
func (s *Service) TriggerSync(ctx context.Context, full bool) (*syncer.Report, error) {
	return s.sync.Sync(ctx, full)
}

// ListNotes returns all indexed notes, newest first.
func (s *Service) ListNotes() ([]models.SyncedNote, error) {
	return s.idx.Notes()
}

// TodaysNotes returns the indexed notes recorded today.
func (s *Service) TodaysNotes() ([]models.SyncedNote, error) {
	all, err := s.idx.Notes()
	if err != nil {
		return nil, err
	}
	out := []models.SyncedNote{}
	for _, n := range all {
		if format.IsToday(n.CreatedAt) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Search delegates to the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.idx.Search(query, limit)
}

// User fetches the remote account profile.
func (s *Service) User(ctx context.Context) (*models.User, error) {
	return s.account.Me(ctx)
}
