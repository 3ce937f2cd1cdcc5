// Package format holds the small pure formatting rules the materializer
// applies when building a render context: durations, tags, moment-style
// dates, and filenames.
package format

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/mysticcoders/voicenotes-sync/internal/models"
)

// Duration renders milliseconds as a short human string:
// 5000 → "5s", 65000 → "1m05s", 120000 → "2m00s".
func Duration(ms int64) string {
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	if minutes > 0 {
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// FrontmatterTags renders a frontmatter tag line: spaces within names become
// hyphens, names are comma-joined with no trailing separator. Empty input
// yields an empty string so the enclosing template block collapses.
func FrontmatterTags(tags []models.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = whitespaceRe.ReplaceAllString(t.Name, "-")
	}
	return "tags: " + strings.Join(names, ",")
}

// HashTags renders tags as space-separated #hashtags for note bodies.
func HashTags(tags []models.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = "#" + whitespaceRe.ReplaceAllString(t.Name, "-")
	}
	return strings.Join(parts, " ")
}

// momentTokens maps moment.js format tokens to Go reference-time layout
// fragments. Longest tokens first so the translator is greedy.
var momentTokens = []struct{ from, to string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"A", "PM"},
	{"a", "pm"},
}

// Layout translates a moment.js date format into a Go time layout.
func Layout(momentFormat string) string {
	out := momentFormat
	for _, t := range momentTokens {
		out = strings.ReplaceAll(out, t.from, t.to)
	}
	return out
}

// serverTimeLayouts are the timestamp shapes the recording service emits.
var serverTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseServerTime parses a timestamp from the recording service.
func ParseServerTime(value string) (time.Time, error) {
	for _, layout := range serverTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("format: unrecognized timestamp %q", value)
}

// Date formats a server timestamp using a moment-style format. Unparseable
// input is returned verbatim rather than failing the note.
func Date(value, momentFormat string) string {
	t, err := ParseServerTime(value)
	if err != nil {
		return value
	}
	return t.Format(Layout(momentFormat))
}

// IsToday reports whether a server timestamp falls on the current local day.
func IsToday(value string) bool {
	t, err := ParseServerTime(value)
	if err != nil {
		return false
	}
	now := time.Now()
	y1, m1, d1 := t.Local().Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// FilenameFromURL extracts the final path segment of a URL, or "" when the
// URL cannot be parsed.
func FilenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// filenameUnsafe matches characters that are illegal or awkward in
// filenames across platforms, plus control characters.
var filenameUnsafe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename strips characters that cannot appear in a filename and
// trims trailing dots and surrounding whitespace.
func SanitizeFilename(name string) string {
	clean := filenameUnsafe.ReplaceAllString(name, "")
	clean = strings.TrimSpace(clean)
	return strings.TrimRight(clean, ".")
}
