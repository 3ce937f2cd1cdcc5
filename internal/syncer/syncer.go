// Package syncer drives end-to-end sync passes over the remote recording
// set and owns the synced-index lifecycle for the duration of a pass.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mysticcoders/voicenotes-sync/internal/apperr"
	"github.com/mysticcoders/voicenotes-sync/internal/index"
	"github.com/mysticcoders/voicenotes-sync/internal/models"
	"github.com/mysticcoders/voicenotes-sync/internal/notes"
	"github.com/mysticcoders/voicenotes-sync/internal/storage"
)

// ListAPI is the slice of the recording-service client the orchestrator
// needs to enumerate recordings.
type ListAPI interface {
	ListRecordings(ctx context.Context) (*models.RecordingPage, error)
	ListRecordingsAt(ctx context.Context, link string) (*models.RecordingPage, error)
}

// EventFunc observes per-note outcomes as a pass progresses.
type EventFunc func(kind string, path string)

// Report aggregates the outcome counts of one sync pass.
type Report struct {
	ID            string        `json:"id"`
	Full          bool          `json:"full"`
	Created       int           `json:"created"`
	Updated       int           `json:"updated"`
	SkipExisting  int           `json:"skip_existing"`
	AlreadySynced int           `json:"already_synced"`
	Excluded      int           `json:"excluded"`
	MissingTitle  int           `json:"missing_title"`
	Failed        int           `json:"failed"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
}

// Orchestrator runs sync passes. An atomic in-flight guard keeps a manual
// trigger from interleaving with a timer-driven pass.
type Orchestrator struct {
	client  ListAPI
	store   storage.Provider
	idx     *index.DB
	mat     *notes.Materializer
	log     *slog.Logger
	onEvent EventFunc

	inFlight atomic.Bool

	mu   sync.Mutex
	last *Report
}

// New creates an orchestrator. onEvent may be nil.
func New(client ListAPI, store storage.Provider, idx *index.DB, mat *notes.Materializer, log *slog.Logger, onEvent EventFunc) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{client: client, store: store, idx: idx, mat: mat, log: log, onEvent: onEvent}
}

// Running reports whether a pass is currently in flight.
func (o *Orchestrator) Running() bool {
	return o.inFlight.Load()
}

// LastReport returns the report of the most recently completed pass, or nil.
func (o *Orchestrator) LastReport() *Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Sync runs one pass. Quick mode (full=false) processes the first page of
// recordings, skipping ids the index already knows; full mode exhausts
// pagination before processing anything and revisits every recording.
// Work completed before a pass-level failure is retained.
func (o *Orchestrator) Sync(ctx context.Context, full bool) (*Report, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, apperr.ErrSyncInProgress
	}
	defer o.inFlight.Store(false)

	report := &Report{ID: uuid.New().String(), Full: full, StartedAt: time.Now()}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
		o.mu.Lock()
		o.last = report
		o.mu.Unlock()
	}()

	// The index is reconstructed from the files on disk at the start of
	// every pass, so manual deletions and crashes self-heal.
	if err := index.Rebuild(o.idx, o.store, o.log); err != nil {
		return report, fmt.Errorf("syncer: rebuild index: %w", err)
	}
	synced, err := o.idx.RecordingIDs()
	if err != nil {
		return report, fmt.Errorf("syncer: read index: %w", err)
	}

	recordings, err := o.fetch(ctx, full)
	if err != nil {
		if apperr.IsAuth(err) {
			o.log.Warn("login token was invalid, please log in again")
		}
		return report, err
	}

	o.log.Info("sync pass started",
		slog.Bool("full", full),
		slog.Int("recordings", len(recordings)),
		slog.Int("already_synced", len(synced)))

	for i := range recordings {
		rec := &recordings[i]
		if _, ok := synced[rec.RecordingID]; ok && !full {
			report.AlreadySynced++
			continue
		}
		for _, res := range o.mat.Process(ctx, rec) {
			o.tally(report, res)
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	o.log.Info("sync pass complete",
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("skipped_existing", report.SkipExisting),
		slog.Int("excluded", report.Excluded),
		slog.Int("failed", report.Failed))
	return report, nil
}

// fetch lists the first page, and for full passes follows the opaque
// continuation links until none remains.
func (o *Orchestrator) fetch(ctx context.Context, full bool) ([]models.Recording, error) {
	page, err := o.client.ListRecordings(ctx)
	if err != nil {
		return nil, err
	}
	recordings := page.Data
	if !full {
		return recordings, nil
	}
	next := page.Links.Next
	for next != "" {
		o.log.Debug("following pagination", slog.String("next", next))
		more, err := o.client.ListRecordingsAt(ctx, next)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, more.Data...)
		next = more.Links.Next
	}
	return recordings, nil
}

func (o *Orchestrator) tally(report *Report, res notes.Result) {
	switch res.Outcome {
	case notes.OutcomeCreated:
		report.Created++
	case notes.OutcomeUpdated:
		report.Updated++
	case notes.OutcomeSkipExisting:
		report.SkipExisting++
	case notes.OutcomeExcluded:
		report.Excluded++
	case notes.OutcomeMissingTitle:
		report.MissingTitle++
		o.log.Warn(res.Message)
	case notes.OutcomeFailed:
		report.Failed++
	}
	if o.onEvent != nil && res.Path != "" {
		o.onEvent(string(res.Outcome), res.Path)
	}
}
