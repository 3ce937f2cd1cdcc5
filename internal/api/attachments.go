package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	audioDir  = "audio"
	attachDir = "attachments"
)

// FileHandler serves downloaded audio and attachment files read-only.
// Writes to these directories happen only through the sync pipeline.
type FileHandler struct {
	syncRoot string
}

// NewFileHandler creates a handler rooted at the sync directory.
func NewFileHandler(syncRoot string) *FileHandler {
	return &FileHandler{syncRoot: syncRoot}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the absolute path under the given subdirectory.
func (h *FileHandler) safeName(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	root := filepath.Join(h.syncRoot, dir)
	abs := filepath.Join(root, cleaned)
	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) && abs != root {
		return "", fmt.Errorf("path escapes %s directory", dir)
	}
	return abs, nil
}

// ServeAudio handles GET /audio/{filename}.
func (h *FileHandler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, audioDir)
}

// ServeAttachment handles GET /attachments/{filename}.
func (h *FileHandler) ServeAttachment(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, attachDir)
}

func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, dir string) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(dir, filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
