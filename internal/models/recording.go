// Package models defines the domain types for the VoiceNotes sync engine.
package models

import (
	"encoding/json"
	"fmt"
)

// Attachment type discriminants used by the VoiceNotes API.
const (
	AttachmentDescription = 1 // inline text description
	AttachmentFile        = 2 // downloadable image/file, URL present
	AttachmentManual      = 3 // manual free-text entry
)

// Known creation types. The set is open: unrecognized types are ignored.
const (
	CreationSummary = "summary"
	CreationPoints  = "points"
	CreationTidy    = "tidy"
	CreationTodo    = "todo"
	CreationTweet   = "tweet"
	CreationBlog    = "blog"
	CreationEmail   = "email"
	CreationCustom  = "custom"
)

// Recording is the unit of sync: a server-side voice note with its
// transcript and derived artifacts. RecordingID is the stable identifier
// used to detect "already synced"; ID is an internal incrementing key.
type Recording struct {
	ID           int64         `json:"id"`
	RecordingID  int64         `json:"recording_id"`
	Title        string        `json:"title"`
	Transcript   string        `json:"transcript"`
	Duration     int64         `json:"duration"` // milliseconds
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
	Tags         []Tag         `json:"tags"`
	Creations    []Creation    `json:"creations"`
	Attachments  []Attachment  `json:"attachments"`
	Subnotes     []Recording   `json:"subnotes,omitempty"`
	RelatedNotes []RelatedNote `json:"related_notes,omitempty"`
}

// Creation finds the first creation of the given type, or nil. First match
// wins when duplicates exist.
func (r *Recording) Creation(typ string) *Creation {
	for i := range r.Creations {
		if r.Creations[i].Type == typ {
			return &r.Creations[i]
		}
	}
	return nil
}

// HasTag reports whether any of the recording's tags matches one of names.
func (r *Recording) HasTag(names []string) bool {
	for _, t := range r.Tags {
		for _, n := range names {
			if t.Name == n {
				return true
			}
		}
	}
	return false
}

// Tag is a name attached to a recording. Names may contain whitespace.
type Tag struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// RelatedNote is a lightweight reference to another recording.
type RelatedNote struct {
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// Attachment is a resource referenced by a recording. URL is present only
// for AttachmentFile.
type Attachment struct {
	Type        int    `json:"type"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// Creation is a derived artifact of a recording. Content shape depends on
// Type: a list of strings (points, todo, summary), an email object, or a
// plain string (tweet). MarkdownContent, when the server provides it, is
// preferred for prose types.
type Creation struct {
	Type            string          `json:"type"`
	Content         CreationContent `json:"content"`
	MarkdownContent string          `json:"markdown_content,omitempty"`
}

// CreationContent is the variant payload under a creation's "content.data"
// key. Exactly one of Lines, Email, or Text is set.
type CreationContent struct {
	Lines []string
	Email *EmailContent
	Text  string
}

// EmailContent is the structured email-like creation payload.
type EmailContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// UnmarshalJSON decodes the duck-typed content envelope. The wire shape is
// {"data": <array|object|string>}.
func (c *CreationContent) UnmarshalJSON(b []byte) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return fmt.Errorf("models: creation content: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	switch envelope.Data[0] {
	case '[':
		return json.Unmarshal(envelope.Data, &c.Lines)
	case '{':
		c.Email = &EmailContent{}
		return json.Unmarshal(envelope.Data, c.Email)
	default:
		return json.Unmarshal(envelope.Data, &c.Text)
	}
}

// MarshalJSON restores the wire envelope.
func (c CreationContent) MarshalJSON() ([]byte, error) {
	var data any
	switch {
	case c.Lines != nil:
		data = c.Lines
	case c.Email != nil:
		data = c.Email
	default:
		data = c.Text
	}
	return json.Marshal(struct {
		Data any `json:"data"`
	}{Data: data})
}

// RecordingPage is one page of the recordings listing. Links.Next carries
// the opaque continuation URL; pagination ends when it is empty.
type RecordingPage struct {
	Data  []Recording `json:"data"`
	Links PageLinks   `json:"links"`
}

// PageLinks holds pagination continuation references.
type PageLinks struct {
	First string `json:"first,omitempty"`
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
}

// SignedURL is a short-lived bearer-free download link for binary media.
type SignedURL struct {
	URL string `json:"url"`
}

// User is the authenticated user's profile.
type User struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhotoURL        string `json:"photo_url,omitempty"`
	RecordingsCount int    `json:"recordings_count"`
}
