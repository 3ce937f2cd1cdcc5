package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mysticcoders/voicenotes-sync/internal/apperr"
	"github.com/mysticcoders/voicenotes-sync/internal/index"
	"github.com/mysticcoders/voicenotes-sync/internal/models"
	"github.com/mysticcoders/voicenotes-sync/internal/syncer"
)

type fakeSyncer struct {
	report  *syncer.Report
	err     error
	running bool
	last    *syncer.Report
	gotFull bool
}

func (f *fakeSyncer) Sync(_ context.Context, full bool) (*syncer.Report, error) {
	f.gotFull = full
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeSyncer) Running() bool              { return f.running }
func (f *fakeSyncer) LastReport() *syncer.Report { return f.last }

type fakeIndex struct {
	notes []models.SyncedNote
	hits  []index.SearchResult
}

func (f *fakeIndex) Notes() ([]models.SyncedNote, error) { return f.notes, nil }
func (f *fakeIndex) Search(_ string, _ int) ([]index.SearchResult, error) {
	return f.hits, nil
}
func (f *fakeIndex) Count() (int, error) { return len(f.notes), nil }

type fakeAccount struct {
	user *models.User
	err  error
}

func (f *fakeAccount) Me(_ context.Context) (*models.User, error) {
	return f.user, f.err
}

// testEnv builds a router over fakes. authToken == "" means disabled mode.
func testEnv(t *testing.T, authToken string, sync *fakeSyncer, idx *fakeIndex, acct *fakeAccount) http.Handler {
	t.Helper()
	if sync == nil {
		sync = &fakeSyncer{report: &syncer.Report{}}
	}
	if idx == nil {
		idx = &fakeIndex{}
	}
	if acct == nil {
		acct = &fakeAccount{user: &models.User{Name: "Test User"}}
	}
	svc := NewService(sync, idx, acct)
	return NewRouter(svc, authToken != "", authToken, nil, t.TempDir())
}

func TestStatusEndpoint(t *testing.T) {
	idx := &fakeIndex{notes: []models.SyncedNote{
		{Path: "a.md", RecordingID: 1},
		{Path: "b.md", RecordingID: 2},
	}}
	sync := &fakeSyncer{last: &syncer.Report{Created: 2}}
	router := testEnv(t, "", sync, idx, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp StatusResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NoteCount != 2 {
		t.Errorf("note_count = %d, want 2", resp.NoteCount)
	}
	if resp.LastReport == nil || resp.LastReport.Created != 2 {
		t.Errorf("last_report = %+v", resp.LastReport)
	}
}

func TestSyncEndpoint(t *testing.T) {
	sync := &fakeSyncer{report: &syncer.Report{Created: 3, SkipExisting: 1}}
	router := testEnv(t, "", sync, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sync = %d, body = %s", w.Code, w.Body.String())
	}
	if sync.gotFull {
		t.Error("plain sync should not be full")
	}
	var report syncer.Report
	_ = json.Unmarshal(w.Body.Bytes(), &report)
	if report.Created != 3 {
		t.Errorf("created = %d, want 3", report.Created)
	}
}

func TestSyncEndpoint_FullParam(t *testing.T) {
	sync := &fakeSyncer{report: &syncer.Report{Full: true}}
	router := testEnv(t, "", sync, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/sync?full=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("full sync = %d", w.Code)
	}
	if !sync.gotFull {
		t.Error("full=true should request a full pass")
	}
}

func TestSyncEndpoint_AlreadyRunning(t *testing.T) {
	sync := &fakeSyncer{err: apperr.ErrSyncInProgress}
	router := testEnv(t, "", sync, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("concurrent sync = %d, want 409", w.Code)
	}
}

func TestSyncEndpoint_AuthFailure(t *testing.T) {
	sync := &fakeSyncer{err: apperr.ErrAuthentication}
	router := testEnv(t, "", sync, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Errorf("auth failure = %d, want 502", w.Code)
	}
}

func TestListNotesEndpoint(t *testing.T) {
	idx := &fakeIndex{notes: []models.SyncedNote{
		{Path: "one.md", RecordingID: 11, Title: "One"},
		{Path: "two.md", RecordingID: 22, Title: "Two"},
	}}
	router := testEnv(t, "", nil, idx, nil)

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Notes) != 2 {
		t.Errorf("total = %d, notes = %d", resp.Total, len(resp.Notes))
	}
}

func TestTodaysNotesEndpoint(t *testing.T) {
	idx := &fakeIndex{notes: []models.SyncedNote{
		{Path: "fresh.md", RecordingID: 1, CreatedAt: time.Now().Format(time.RFC3339)},
		{Path: "old.md", RecordingID: 2, CreatedAt: "2020-01-01 10:00:00"},
	}}
	router := testEnv(t, "", nil, idx, nil)

	req := httptest.NewRequest(http.MethodGet, "/notes/today", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("today = %d", w.Code)
	}
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Fatalf("total = %d, want 1", resp.Total)
	}
	if resp.Notes[0].Path != "fresh.md" {
		t.Errorf("path = %q", resp.Notes[0].Path)
	}
}

func TestSearchEndpoint(t *testing.T) {
	idx := &fakeIndex{hits: []index.SearchResult{
		{Path: "hit.md", Title: "Hit", Snippet: "...match..."},
	}}
	router := testEnv(t, "", nil, idx, nil)

	req := httptest.NewRequest(http.MethodGet, "/search?q=match", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "hit.md" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "", nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestUserEndpoint(t *testing.T) {
	acct := &fakeAccount{user: &models.User{Name: "Ada", Email: "ada@example.com"}}
	router := testEnv(t, "", nil, nil, acct)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("user = %d", w.Code)
	}
	var user models.User
	_ = json.Unmarshal(w.Body.Bytes(), &user)
	if user.Email != "ada@example.com" {
		t.Errorf("email = %q", user.Email)
	}
}

func TestUserEndpoint_AuthFailure(t *testing.T) {
	acct := &fakeAccount{err: apperr.ErrAuthentication}
	router := testEnv(t, "", nil, nil, acct)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Errorf("user auth failure = %d, want 502", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123", nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123", nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123", nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "", nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()
	svc := NewService(&fakeSyncer{}, &fakeIndex{}, &fakeAccount{})

	// Minimal SSE handler stub: writes headers and blocks until context done.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	return NewRouter(svc, authEnabled, token, sseHandler, t.TempDir())
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// Media serving tests.

func TestServeAudio(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "audio"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "audio", "42.mp3"), []byte("mp3-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	fh := NewFileHandler(root)
	r := chi.NewRouter()
	r.Get("/audio/{filename}", fh.ServeAudio)

	req := httptest.NewRequest(http.MethodGet, "/audio/42.mp3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("serve audio = %d", w.Code)
	}
	if w.Body.String() != "mp3-bytes" {
		t.Error("audio content mismatch")
	}
}

func TestServeAttachment_NotFound(t *testing.T) {
	fh := NewFileHandler(t.TempDir())
	r := chi.NewRouter()
	r.Get("/attachments/{filename}", fh.ServeAttachment)

	req := httptest.NewRequest(http.MethodGet, "/attachments/nope.png", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing attachment = %d, want 404", w.Code)
	}
}

func TestServeFile_TraversalBlocked(t *testing.T) {
	fh := NewFileHandler(t.TempDir())
	r := chi.NewRouter()
	r.Get("/attachments/{filename}", fh.ServeAttachment)

	for _, name := range []string{"../secret.md", "../../etc/passwd"} {
		req := httptest.NewRequest(http.MethodGet, "/attachments/"+name, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		// chi may not route the traversal paths at all (404), or the handler rejects (400).
		if w.Code == http.StatusOK {
			t.Errorf("traversal %q should not return 200", name)
		}
	}
}
