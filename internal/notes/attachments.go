package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mysticcoders/voicenotes-sync/internal/format"
	"github.com/mysticcoders/voicenotes-sync/internal/models"
)

const (
	audioDir      = "audio"
	attachmentDir = "attachments"
)

// resolveAudio downloads the recording's audio exactly once and returns an
// embeddable link plus the filename. Failure to obtain a signed URL is
// soft: a warning is logged and the note syncs without audio.
func (m *Materializer) resolveAudio(ctx context.Context, rec *models.Recording) (embedLink, filename string) {
	filename = fmt.Sprintf("%d.mp3", rec.RecordingID)
	target := audioDir + "/" + filename
	embedLink = "![[" + filename + "]]"

	exists, err := m.store.Exists(target)
	if err != nil {
		m.log.Warn("audio: stat failed", slog.String("path", target), slog.String("error", err.Error()))
		return "", ""
	}
	if exists {
		return embedLink, filename
	}

	signed, err := m.remote.SignedAudioURL(ctx, rec.RecordingID)
	if err != nil {
		m.log.Warn("audio: signed url failed, syncing without audio",
			slog.Int64("recording_id", rec.RecordingID),
			slog.String("error", err.Error()))
		return "", ""
	}
	data, err := m.remote.Download(ctx, signed)
	if err != nil {
		m.log.Warn("audio: download failed, syncing without audio",
			slog.Int64("recording_id", rec.RecordingID),
			slog.String("error", err.Error()))
		return "", ""
	}
	if err := m.store.Write(target, data); err != nil {
		m.log.Warn("audio: write failed", slog.String("path", target), slog.String("error", err.Error()))
		return "", ""
	}
	return embedLink, filename
}

// resolveAttachments renders the attachments markdown block and collects
// manual free-text entries. Downloadable attachments are fetched at most
// once (skip-if-exists); unknown types are ignored.
func (m *Materializer) resolveAttachments(ctx context.Context, rec *models.Recording) (block string, manual string, err error) {
	if len(rec.Attachments) == 0 {
		return "", "", nil
	}

	var bullets []string
	var manualEntries []string

	for _, att := range rec.Attachments {
		switch att.Type {
		case models.AttachmentDescription:
			if att.Description != "" {
				bullets = append(bullets, "- "+att.Description)
			}

		case models.AttachmentFile:
			if att.URL == "" {
				continue
			}
			filename, err := m.downloadAttachment(ctx, att.URL)
			if err != nil {
				return "", "", err
			}
			bullets = append(bullets, "- ![["+filename+"]]")
			if m.opts.ShowDescriptions && att.Description != "" {
				bullets = append(bullets, "  *"+att.Description+"*")
			}

		case models.AttachmentManual:
			if att.Description != "" {
				manualEntries = append(manualEntries, "- "+att.Description)
			}
		}
	}

	return strings.Join(bullets, "\n"), strings.Join(manualEntries, "\n"), nil
}

// downloadAttachment fetches the file behind url into the attachments
// folder unless it is already there, returning the local filename.
func (m *Materializer) downloadAttachment(ctx context.Context, url string) (string, error) {
	filename := format.FilenameFromURL(url)
	if filename == "" {
		return "", fmt.Errorf("notes: attachment url has no filename: %s", url)
	}
	target := attachmentDir + "/" + filename

	exists, err := m.store.Exists(target)
	if err != nil {
		return "", err
	}
	if exists {
		return filename, nil
	}

	data, err := m.remote.Download(ctx, url)
	if err != nil {
		return "", fmt.Errorf("notes: download attachment: %w", err)
	}
	if err := m.store.Write(target, data); err != nil {
		return "", err
	}
	return filename, nil
}
