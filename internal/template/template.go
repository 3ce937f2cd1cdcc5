// Package template renders user-supplied note and frontmatter templates.
//
// The syntax is the jinja subset the original VoiceNotes templates use:
// {{ variable }} interpolation and {% if field %} ... {% endif %} sections
// keyed to a context field's presence and truthiness. There is no loop
// construct: callers pre-join lists into bullet text before placing them in
// the context. Conditional sections do not nest.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Context maps template variable names to values.
type Context map[string]any

var (
	variableRe    = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)
	conditionalRe = regexp.MustCompile(`(?s)\{%\s*if\s+([a-zA-Z0-9_]+)\s*%\}\n?(.*?)\{%\s*endif\s*%\}\n?`)
	blankRunsRe   = regexp.MustCompile(`\n{3,}`)
)

// Render expands tmpl against ctx. Conditional sections whose field is
// absent or falsy render to nothing; unknown variables render empty. Runs
// of three or more newlines collapse to a single blank line to counter
// template whitespace noise.
func Render(tmpl string, ctx Context) string {
	out := conditionalRe.ReplaceAllStringFunc(tmpl, func(block string) string {
		m := conditionalRe.FindStringSubmatch(block)
		if truthy(ctx[m[1]]) {
			return m[2]
		}
		return ""
	})
	out = variableRe.ReplaceAllStringFunc(out, func(ref string) string {
		m := variableRe.FindStringSubmatch(ref)
		return stringify(ctx[m[1]])
	})
	return blankRunsRe.ReplaceAllString(out, "\n\n")
}

// RenderBody renders the note body template and normalizes any HTML
// fragments the transcript service left behind into plain markdown.
func RenderBody(tmpl string, ctx Context) string {
	return HTMLToMarkdown(Render(tmpl, ctx))
}

// CompleteNote renders frontmatter and body and joins them with --- fences.
// A recording_id line is prepended to the frontmatter template regardless
// of whether the user template references it: the synced-index rebuild
// depends on that field being present in every note.
func CompleteNote(noteTmpl, frontmatterTmpl string, ctx Context) string {
	fm := Render("recording_id: {{recording_id}}\n"+frontmatterTmpl, ctx)
	body := RenderBody(noteTmpl, ctx)
	return fmt.Sprintf("---\n%s\n---\n%s", strings.TrimRight(fm, "\n"), body)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
