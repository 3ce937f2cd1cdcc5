package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mysticcoders/voicenotes-sync/internal/notes"
	"github.com/mysticcoders/voicenotes-sync/internal/voicenotes"
)

// Auth modes for the daemon HTTP surface.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration. It is immutable input
// to one sync pass.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	API       APIConfig         `yaml:"api"`
	Sync      SyncConfig        `yaml:"sync"`
	Templates TemplateConfig    `yaml:"templates"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	State     StateConfig       `yaml:"state"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	if err := c.Templates.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.State.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds daemon HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// APIConfig holds the remote recording-service endpoint and credentials.
// Username/password are optional: when present they enable silent re-login
// after token expiry.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	RetryAttempts  int    `yaml:"retry_attempts"`
}

// Timeout returns the per-request timeout.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryPolicy returns the rate-limit retry policy for the client.
func (c *APIConfig) RetryPolicy() voicenotes.RetryPolicy {
	p := voicenotes.DefaultRetryPolicy()
	if c.RetryAttempts > 0 {
		p.MaxAttempts = c.RetryAttempts
	}
	return p
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.TimeoutSeconds, validation.Required, validation.Min(1)),
	)
}

// SyncConfig holds the sync pipeline settings.
type SyncConfig struct {
	Directory          string   `yaml:"directory"`
	Automatic          bool     `yaml:"automatic"`
	IntervalMinutes    int      `yaml:"interval_minutes"`
	DownloadAudio      bool     `yaml:"download_audio"`
	ShowDescriptions   bool     `yaml:"show_attachment_descriptions"`
	ExcludeTags        []string `yaml:"exclude_tags"`
	TodoTag            string   `yaml:"todo_tag"`
	DeleteSynced       bool     `yaml:"delete_synced"`
	ReallyDeleteSynced bool     `yaml:"really_delete_synced"`
}

// Interval returns the auto-sync period.
func (c *SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Directory, validation.Required),
		validation.Field(&c.IntervalMinutes, validation.Required, validation.Min(1)),
	)
}

// TemplateConfig holds the user-editable templates and date formats.
// Date formats use moment-style tokens (YYYY-MM-DD) for compatibility with
// templates written for the original plugin.
type TemplateConfig struct {
	DateFormat         string `yaml:"date_format"`
	FilenameDateFormat string `yaml:"filename_date_format"`
	Filename           string `yaml:"filename"`
	Frontmatter        string `yaml:"frontmatter"`
	Note               string `yaml:"note"`
}

// Validate validates the template configuration.
func (c *TemplateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Filename, validation.Required),
		validation.Field(&c.Note, validation.Required),
	)
}

// SQLiteConfig holds the synced-index database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// StateConfig holds the state directory (token file).
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// TokenFile returns the token file path.
func (c *StateConfig) TokenFile() string {
	return c.Dir + "/token.json"
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// AuthConfig holds daemon HTTP authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NoteOptions derives the materializer options for one pass.
func (c *Config) NoteOptions() notes.Options {
	return notes.Options{
		FilenameTemplate:    c.Templates.Filename,
		FrontmatterTemplate: c.Templates.Frontmatter,
		NoteTemplate:        c.Templates.Note,
		FilenameDateFormat:  c.Templates.FilenameDateFormat,
		DateFormat:          c.Templates.DateFormat,
		ExcludeTags:         c.Sync.ExcludeTags,
		TodoTag:             c.Sync.TodoTag,
		DownloadAudio:       c.Sync.DownloadAudio,
		ShowDescriptions:    c.Sync.ShowDescriptions,
		DeleteSynced:        c.Sync.DeleteSynced,
		ReallyDeleteSynced:  c.Sync.ReallyDeleteSynced,
	}
}

// DefaultFrontmatterTemplate is the stock frontmatter. The recording_id
// line is injected by the renderer and never lives in the template.
const DefaultFrontmatterTemplate = `duration: {{duration}}
created_at: {{created_at}}
updated_at: {{updated_at}}
{{tags}}`

// DefaultNoteTemplate is the stock note body template.
const DefaultNoteTemplate = `# {{ title }}

Date: {{ date }}

{% if summary %}
## Summary

{{ summary }}
{% endif %}

{% if points %}
## Main points

{{ points }}
{% endif %}

{% if attachments %}
## Attachments

{{ attachments }}
{% endif %}

{% if manual_entries %}
## Manual entries

{{ manual_entries }}
{% endif %}

{% if tidy %}
## Tidy Transcript

{{ tidy }}
{% endif %}

{% if transcript %}
## Transcript

{{ transcript }}
{% endif %}

{% if embedded_audio_link %}
{{ embedded_audio_link }}
{% endif %}

{% if todo %}
## Todos

{{ todo }}
{% endif %}

{% if email %}
## Email

{{ email }}
{% endif %}

{% if blog %}
## Blog

{{ blog }}
{% endif %}

{% if tweet %}
## Tweet

{{ tweet }}
{% endif %}

{% if custom %}
## Others

{{ custom }}
{% endif %}

{% if hashtags %}
## Tags

{{ hashtags }}
{% endif %}

{% if related_notes %}
## Related Notes

{{ related_notes }}
{% endif %}

{% if parent_note %}
## Parent Note

- {{ parent_note }}
{% endif %}

{% if subnotes %}
## Subnotes

{{ subnotes }}
{% endif %}`

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		API: APIConfig{
			BaseURL:        voicenotes.DefaultBaseURL,
			TimeoutSeconds: 30,
		},
		Sync: SyncConfig{
			Directory:       "./voicenotes",
			Automatic:       true,
			IntervalMinutes: 60,
		},
		Templates: TemplateConfig{
			DateFormat:         "YYYY-MM-DD",
			FilenameDateFormat: "YYYY-MM-DD",
			Filename:           "{{date}} {{title}}",
			Frontmatter:        DefaultFrontmatterTemplate,
			Note:               DefaultNoteTemplate,
		},
		SQLite: SQLiteConfig{
			Path: "./voicenotes-sync.db",
		},
		State: StateConfig{
			Dir: "./state",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
