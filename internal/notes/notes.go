// Package notes materializes remote recordings as local Markdown notes.
// It owns the per-recording state machine: excluded, missing title, skip
// existing, create, or update (sub-notes always overwrite).
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/mysticcoders/voicenotes-sync/internal/format"
	"github.com/mysticcoders/voicenotes-sync/internal/index"
	"github.com/mysticcoders/voicenotes-sync/internal/models"
	"github.com/mysticcoders/voicenotes-sync/internal/storage"
	"github.com/mysticcoders/voicenotes-sync/internal/template"
)

// Outcome is the terminal state of processing one recording.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"
	OutcomeUpdated      Outcome = "updated"
	OutcomeSkipExisting Outcome = "skip_existing"
	OutcomeExcluded     Outcome = "excluded"
	OutcomeMissingTitle Outcome = "missing_title"
	OutcomeFailed       Outcome = "failed"
)

// Result records what happened to one recording (or sub-note).
type Result struct {
	RecordingID int64
	Path        string
	Outcome     Outcome
	Message     string
}

// RemoteAPI is the slice of the recording-service client the materializer
// needs to realize binary assets and honor delete-after-sync.
type RemoteAPI interface {
	SignedAudioURL(ctx context.Context, recordingID int64) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
	DeleteRecording(ctx context.Context, recordingID int64) error
}

// Options carries the user settings that shape materialization. One sync
// pass treats it as immutable input.
type Options struct {
	FilenameTemplate    string
	FrontmatterTemplate string
	NoteTemplate        string
	FilenameDateFormat  string
	DateFormat          string
	ExcludeTags         []string
	TodoTag             string
	DownloadAudio       bool
	ShowDescriptions    bool
	DeleteSynced        bool
	ReallyDeleteSynced  bool
}

// Materializer turns one recording (and recursively its sub-notes) into
// rendered notes on disk.
type Materializer struct {
	store  storage.Provider
	idx    index.SyncedIndex
	remote RemoteAPI
	opts   Options
	log    *slog.Logger
}

// New creates a materializer. A nil logger falls back to slog.Default.
func New(store storage.Provider, idx index.SyncedIndex, remote RemoteAPI, opts Options, log *slog.Logger) *Materializer {
	if log == nil {
		log = slog.Default()
	}
	return &Materializer{store: store, idx: idx, remote: remote, opts: opts, log: log}
}

// Process decides the fate of one top-level recording and its sub-notes.
// It returns one Result per materialized note, sub-notes first. Any
// failure is contained to the recording it belongs to: a bad recording
// never aborts the batch.
func (m *Materializer) Process(ctx context.Context, rec *models.Recording) []Result {
	var results []Result
	m.process(ctx, rec, false, "", &results)
	return results
}

func (m *Materializer) process(ctx context.Context, rec *models.Recording, isSubnote bool, parentTitle string, results *[]Result) {
	res := m.processOne(ctx, rec, isSubnote, parentTitle, results)
	if res.Outcome == OutcomeFailed {
		m.log.Warn("recording failed",
			slog.Int64("recording_id", rec.RecordingID),
			slog.String("error", res.Message))
	}
	*results = append(*results, res)
}

func (m *Materializer) processOne(ctx context.Context, rec *models.Recording, isSubnote bool, parentTitle string, results *[]Result) Result {
	res := Result{RecordingID: rec.RecordingID}

	if rec.Title == "" {
		res.Outcome = OutcomeMissingTitle
		res.Message = fmt.Sprintf("unable to grab voice recording with id: %d", rec.RecordingID)
		return res
	}

	// Sub-notes first, regardless of whether the parent itself will be
	// (re)written: their freshness is independent of the parent's.
	if len(rec.Subnotes) > 0 {
		parent := m.sanitizedTitle(rec.Title, rec.CreatedAt)
		for i := range rec.Subnotes {
			m.process(ctx, &rec.Subnotes[i], true, parent, results)
		}
	}

	if rec.HasTag(m.opts.ExcludeTags) {
		res.Outcome = OutcomeExcluded
		return res
	}

	notePath := m.NotePath(rec.Title, rec.CreatedAt)
	exists, err := m.store.Exists(notePath)
	if err != nil {
		return m.failed(res, err)
	}

	if exists && !isSubnote {
		// A file with this rendered name may belong to a different
		// recording; disambiguate with an id suffix instead of treating
		// the stranger's note as ours.
		owner, err := m.idx.PathRecordingID(notePath)
		if err != nil {
			return m.failed(res, err)
		}
		if owner == 0 || owner == rec.RecordingID {
			res.Outcome = OutcomeSkipExisting
			res.Path = notePath
			return res
		}
		notePath = m.disambiguatedPath(rec)
		exists, err = m.store.Exists(notePath)
		if err != nil {
			return m.failed(res, err)
		}
		if exists {
			res.Outcome = OutcomeSkipExisting
			res.Path = notePath
			return res
		}
	}
	res.Path = notePath

	rctx, err := m.buildContext(ctx, rec, isSubnote, parentTitle)
	if err != nil {
		return m.failed(res, err)
	}

	content := template.CompleteNote(m.opts.NoteTemplate, m.opts.FrontmatterTemplate, rctx)
	if err := m.store.Write(notePath, []byte(content)); err != nil {
		return m.failed(res, err)
	}

	// Amortized index update so the pass does not re-scan the directory.
	if err := m.idx.UpsertNote(models.SyncedNote{
		Path:        notePath,
		RecordingID: rec.RecordingID,
		Title:       rec.Title,
		CreatedAt:   rec.CreatedAt,
	}, rec.Transcript); err != nil {
		m.log.Warn("index update failed", slog.String("path", notePath), slog.String("error", err.Error()))
	}

	// Destructive and irreversible, so gated by two independent flags.
	if m.opts.DeleteSynced && m.opts.ReallyDeleteSynced {
		if err := m.remote.DeleteRecording(ctx, rec.RecordingID); err != nil {
			m.log.Warn("remote delete failed",
				slog.Int64("recording_id", rec.RecordingID),
				slog.String("error", err.Error()))
		}
	}

	if exists {
		res.Outcome = OutcomeUpdated
	} else {
		res.Outcome = OutcomeCreated
	}
	return res
}

func (m *Materializer) failed(res Result, err error) Result {
	res.Outcome = OutcomeFailed
	res.Message = err.Error()
	return res
}

// sanitizedTitle expands the filename template ({{date}}, {{title}}) and
// strips characters that cannot appear in a filename.
func (m *Materializer) sanitizedTitle(title, createdAt string) string {
	date := format.Date(createdAt, m.opts.FilenameDateFormat)
	name := template.Render(m.opts.FilenameTemplate, template.Context{
		"date":  date,
		"title": title,
	})
	return format.SanitizeFilename(name)
}

// NotePath computes the deterministic destination path (relative to the
// sync root) for a recording's note.
func (m *Materializer) NotePath(title, createdAt string) string {
	return m.sanitizedTitle(title, createdAt) + ".md"
}

func (m *Materializer) disambiguatedPath(rec *models.Recording) string {
	base := m.sanitizedTitle(rec.Title, rec.CreatedAt)
	return path.Clean(fmt.Sprintf("%s (%d).md", base, rec.RecordingID))
}
