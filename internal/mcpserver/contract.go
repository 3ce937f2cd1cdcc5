package mcpserver

// NoteFormatContract describes the Markdown format of synced notes so that
// LLM consumers can read and reference them correctly.
const NoteFormatContract = `# Synced Note Format

Every Markdown note produced by the sync engine follows this structure.

## Structure

` + "```" + `markdown
---
recording_id: 12345                 # ALWAYS present – links the note to its remote recording
duration: 1m05s                     # recording length
created_at: 2025-01-15 09:30:00     # server timestamp of the recording
updated_at: 2025-01-15 09:31:00
tags: work,project-ideas            # comma-separated, whitespace becomes hyphens
---

# Recording title

Date: 2025-01-15

## Transcript

Body text rendered from the recording transcript and its AI creations
(summary, main points, todos, email, blog, tweet).
` + "```" + `

## Rules

1. **The ` + "`" + `recording_id` + "`" + ` frontmatter field is the source of truth.** It ties a
   local note to its remote recording; never remove or edit it.
2. **Notes are one-way synced.** Local edits to a top-level note survive (the
   engine never overwrites an existing top-level note), but sub-notes are
   rewritten on every pass.
3. **Audio** is embedded as ` + "`" + `![[audio/<recording_id>.mp3]]` + "`" + ` when audio
   download is enabled.
4. **Attachments** are embedded as ` + "`" + `![[filename]]` + "`" + ` and live in the shared
   ` + "`" + `attachments/` + "`" + ` directory.
5. **Sub-notes and related notes** are referenced with ` + "`" + `[[wikilinks]]` + "`" + `
   by title.
6. **Encoding** is UTF-8.
`
