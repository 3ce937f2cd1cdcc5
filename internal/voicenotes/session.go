package voicenotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Session holds the bearer token and optional stored credentials used for
// silent re-login. The token survives restarts through a JSON file in the
// state directory; credentials are never written to disk.
type Session struct {
	mu       sync.Mutex
	token    string
	username string
	password string
	path     string // token file location, "" disables persistence
}

type tokenFile struct {
	Token    string    `json:"token"`
	Username string    `json:"username,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// NewSession creates a session backed by the token file at path. An
// existing token file is loaded; a missing one is not an error.
func NewSession(path, username, password string) (*Session, error) {
	s := &Session{username: username, password: password, path: path}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("voicenotes: read token file: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("voicenotes: parse token file: %w", err)
	}
	s.token = tf.Token
	return s, nil
}

// Token returns the current bearer token, or "".
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken stores a new token and persists it.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(tokenFile{Token: token, Username: s.username, SavedAt: time.Now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("voicenotes: encode token file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("voicenotes: create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("voicenotes: write token file: %w", err)
	}
	return nil
}

// Clear invalidates the in-memory token and removes the token file.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if s.path != "" {
		_ = os.Remove(s.path)
	}
}

// Credentials returns the stored username/password pair, if any.
func (s *Session) Credentials() (username, password string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username, s.password, s.username != "" && s.password != ""
}
