package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode without token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_UnknownMode(t *testing.T) {
	cfg := AuthConfig{Mode: "basic", Token: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown mode should fail")
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Port: 9090}
	if got := cfg.Address(); got != ":9090" {
		t.Errorf("Address() = %q, want %q", got, ":9090")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Port: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should fail")
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port 70000 should fail")
	}
	cfg.Port = 8080
	if err := cfg.Validate(); err != nil {
		t.Errorf("port 8080 should pass: %v", err)
	}
}

func TestAPIConfig_MissingBaseURL(t *testing.T) {
	cfg := APIConfig{TimeoutSeconds: 30}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing base_url should fail")
	}
}

func TestAPIConfig_Timeout(t *testing.T) {
	cfg := APIConfig{BaseURL: "https://example.com/api", TimeoutSeconds: 15}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}
	if got := cfg.Timeout(); got != 15*time.Second {
		t.Errorf("Timeout() = %v, want 15s", got)
	}
}

func TestAPIConfig_RetryPolicyOverride(t *testing.T) {
	cfg := APIConfig{BaseURL: "https://example.com/api", TimeoutSeconds: 30, RetryAttempts: 3}
	if got := cfg.RetryPolicy().MaxAttempts; got != 3 {
		t.Errorf("MaxAttempts = %d, want 3", got)
	}
	cfg.RetryAttempts = 0
	if got := cfg.RetryPolicy().MaxAttempts; got != 5 {
		t.Errorf("default MaxAttempts = %d, want 5", got)
	}
}

func TestSyncConfig_MissingDirectory(t *testing.T) {
	cfg := SyncConfig{IntervalMinutes: 60}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing directory should fail")
	}
}

func TestSyncConfig_Interval(t *testing.T) {
	cfg := SyncConfig{Directory: "./notes", IntervalMinutes: 30}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}
	if got := cfg.Interval(); got != 30*time.Minute {
		t.Errorf("Interval() = %v, want 30m", got)
	}
}

func TestTemplateConfig_MissingNote(t *testing.T) {
	cfg := TemplateConfig{Filename: "{{date}} {{title}}"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing note template should fail")
	}
}

func TestStateConfig_TokenFile(t *testing.T) {
	cfg := StateConfig{Dir: "/var/lib/vnsync"}
	if got := cfg.TokenFile(); got != "/var/lib/vnsync/token.json" {
		t.Errorf("TokenFile() = %q", got)
	}
}

func TestNewDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Templates.Filename != "{{date}} {{title}}" {
		t.Errorf("default filename template = %q", cfg.Templates.Filename)
	}
	if !strings.Contains(cfg.Templates.Note, "{{ transcript }}") {
		t.Error("default note template should reference the transcript")
	}
}

func TestConfig_NoteOptions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sync.ExcludeTags = []string{"private"}
	cfg.Sync.TodoTag = "todo"
	cfg.Sync.DownloadAudio = true

	opts := cfg.NoteOptions()
	if len(opts.ExcludeTags) != 1 || opts.ExcludeTags[0] != "private" {
		t.Errorf("ExcludeTags = %v", opts.ExcludeTags)
	}
	if opts.TodoTag != "todo" {
		t.Errorf("TodoTag = %q", opts.TodoTag)
	}
	if !opts.DownloadAudio {
		t.Error("DownloadAudio should carry over")
	}
	if opts.NoteTemplate != cfg.Templates.Note {
		t.Error("NoteTemplate should carry over")
	}
}
