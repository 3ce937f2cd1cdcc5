package notes

import (
	"context"
	"strings"

	"github.com/mysticcoders/voicenotes-sync/internal/format"
	"github.com/mysticcoders/voicenotes-sync/internal/models"
	"github.com/mysticcoders/voicenotes-sync/internal/template"
)

// buildContext assembles the render context for one recording: resolved
// binary assets, formatted dates/duration/tags, per-type creation text,
// and wiki-style back-links for sub-notes and related notes. Absent
// optional fields stay out of the map so their template blocks collapse.
func (m *Materializer) buildContext(ctx context.Context, rec *models.Recording, isSubnote bool, parentTitle string) (template.Context, error) {
	var embeddedAudioLink, audioFilename string
	if m.opts.DownloadAudio {
		embeddedAudioLink, audioFilename = m.resolveAudio(ctx, rec)
	}

	attachments, manualEntries, err := m.resolveAttachments(ctx, rec)
	if err != nil {
		return nil, err
	}

	out := template.Context{
		"recording_id":        rec.RecordingID,
		"title":               rec.Title,
		"date":                format.Date(rec.CreatedAt, m.opts.DateFormat),
		"duration":            format.Duration(rec.Duration),
		"created_at":          format.Date(rec.CreatedAt, m.opts.DateFormat),
		"updated_at":          format.Date(rec.UpdatedAt, m.opts.DateFormat),
		"transcript":          rec.Transcript,
		"embedded_audio_link": embeddedAudioLink,
		"audio_filename":      audioFilename,
		"attachments":         attachments,
		"manual_entries":      manualEntries,
		"summary":             m.creationText(rec, models.CreationSummary),
		"tidy":                m.creationText(rec, models.CreationTidy),
		"points":              m.formattedPoints(rec),
		"todo":                m.formattedTodos(rec),
		"tweet":               m.creationText(rec, models.CreationTweet),
		"blog":                m.creationText(rec, models.CreationBlog),
		"email":               m.creationText(rec, models.CreationEmail),
		"custom":              m.creationText(rec, models.CreationCustom),
		"tags":                format.FrontmatterTags(rec.Tags),
		"hashtags":            format.HashTags(rec.Tags),
		"related_notes":       m.linkList(rec.RelatedNotes),
		"subnotes":            m.subnoteLinks(rec.Subnotes),
	}
	if isSubnote {
		out["parent_note"] = "[[" + parentTitle + "]]"
	}
	return out, nil
}

// creationText returns the display text of the first creation of the given
// type. The server's pre-rendered markdown is preferred; otherwise the text
// is derived from the variant payload.
func (m *Materializer) creationText(rec *models.Recording, typ string) string {
	c := rec.Creation(typ)
	if c == nil {
		return ""
	}
	if c.MarkdownContent != "" {
		return c.MarkdownContent
	}
	switch {
	case c.Content.Email != nil:
		return "**Subject:** " + c.Content.Email.Subject + "\n\n" + c.Content.Email.Body
	case c.Content.Lines != nil:
		return strings.Join(c.Content.Lines, "\n")
	default:
		return c.Content.Text
	}
}

// formattedPoints renders the points creation as a bullet list.
func (m *Materializer) formattedPoints(rec *models.Recording) string {
	c := rec.Creation(models.CreationPoints)
	if c == nil || len(c.Content.Lines) == 0 {
		return ""
	}
	lines := make([]string, len(c.Content.Lines))
	for i, l := range c.Content.Lines {
		lines[i] = "- " + l
	}
	return strings.Join(lines, "\n")
}

// formattedTodos renders the todo creation as unchecked task bullets,
// tagging each with the configured todo tag.
func (m *Materializer) formattedTodos(rec *models.Recording) string {
	c := rec.Creation(models.CreationTodo)
	if c == nil || len(c.Content.Lines) == 0 {
		return ""
	}
	suffix := ""
	if m.opts.TodoTag != "" {
		suffix = " #" + m.opts.TodoTag
	}
	lines := make([]string, len(c.Content.Lines))
	for i, l := range c.Content.Lines {
		lines[i] = "- [ ] " + l + suffix
	}
	return strings.Join(lines, "\n")
}

// linkList renders related notes as wiki-link bullets, addressed by the
// same filename computation the related recordings would materialize under.
func (m *Materializer) linkList(related []models.RelatedNote) string {
	if len(related) == 0 {
		return ""
	}
	lines := make([]string, len(related))
	for i, r := range related {
		lines[i] = "- [[" + m.sanitizedTitle(r.Title, r.CreatedAt) + "]]"
	}
	return strings.Join(lines, "\n")
}

func (m *Materializer) subnoteLinks(subs []models.Recording) string {
	if len(subs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(subs))
	for i := range subs {
		lines = append(lines, "- [["+m.sanitizedTitle(subs[i].Title, subs[i].CreatedAt)+"]]")
	}
	return strings.Join(lines, "\n")
}
