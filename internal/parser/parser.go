// Package parser extracts YAML frontmatter and sync metadata from Markdown
// notes. The synced-index rebuild depends on it to read back the
// recording_id persisted in every synced note.
package parser

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Result holds the output of parsing a Markdown note.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
}

// Parse separates frontmatter from the body and derives a display title.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
	}, nil
}

// RecordingID returns the frontmatter recording_id, or 0 when the note does
// not belong to a synced recording. YAML may surface the value as an int,
// an int64, or a quoted string depending on how the template rendered it.
func (r *Result) RecordingID() int64 {
	if r.Frontmatter == nil {
		return 0
	}
	switch v := r.Frontmatter["recording_id"].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return id
	default:
		return 0
	}
}

// CreatedAt returns the frontmatter created_at as a string, or "". Unquoted
// timestamps come back from the YAML decoder as time.Time, so both shapes are
// accepted.
func (r *Result) CreatedAt() string {
	if r.Frontmatter == nil {
		return ""
	}
	switch v := r.Frontmatter["created_at"].(type) {
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: the note is not ours to interpret, return body only.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// deriveTitle returns the frontmatter "title" if present, otherwise the
// first H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
