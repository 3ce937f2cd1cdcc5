// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes sync tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mysticcoders/voicenotes-sync/internal/apperr"
	"github.com/mysticcoders/voicenotes-sync/internal/format"
	"github.com/mysticcoders/voicenotes-sync/internal/index"
	"github.com/mysticcoders/voicenotes-sync/internal/models"
	"github.com/mysticcoders/voicenotes-sync/internal/storage"
	"github.com/mysticcoders/voicenotes-sync/internal/syncer"
)

// SyncRunner triggers a sync pass.
type SyncRunner interface {
	Sync(ctx context.Context, full bool) (*syncer.Report, error)
}

// NoteIndex exposes read access to the synced-note index.
type NoteIndex interface {
	Notes() ([]models.SyncedNote, error)
	Search(query string, limit int) ([]index.SearchResult, error)
}

// Server wraps the MCP server with sync tools.
type Server struct {
	mcp    *server.MCPServer
	store  storage.Provider
	idx    NoteIndex
	runner SyncRunner
}

// New creates a new MCP server with all sync tools registered.
func New(store storage.Provider, idx NoteIndex, runner SyncRunner) *Server {
	s := &Server{store: store, idx: idx, runner: runner}

	s.mcp = server.NewMCPServer(
		"voicenotes-sync",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("sync_now",
		mcp.WithDescription("Run one sync pass against the recording service. "+
			"Returns the sync report. Fails if a pass is already running."),
		mcp.WithBoolean("full", mcp.Description("Walk every remote page instead of only the most recent recordings")),
	), s.syncNow)

	s.mcp.AddTool(mcp.NewTool("todays_recordings",
		mcp.WithDescription("List the synced notes whose recording was made today."),
	), s.todaysRecordings)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through synced note content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a synced Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. My Recording.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all synced notes with their recording IDs, newest first."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the synced note format description. "+
			"Call this before parsing or referencing synced notes."),
	), s.getNoteContract)

	// Resource: synced note format.
	s.mcp.AddResource(
		mcp.NewResource("voicenotes://note-format", "Synced Note Format",
			mcp.WithResourceDescription("Markdown format of the notes produced by the sync engine."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) syncNow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	full := req.GetBool("full", false)
	report, err := s.runner.Sync(ctx, full)
	if err != nil {
		if errors.Is(err, apperr.ErrSyncInProgress) {
			return mcp.NewToolResultError("a sync pass is already running"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) todaysRecordings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := s.idx.Notes()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	today := []models.SyncedNote{}
	for _, n := range all {
		if format.IsToday(n.CreatedAt) {
			today = append(today, n)
		}
	}
	if len(today) == 0 {
		return mcp.NewToolResultText("no recordings synced today"), nil
	}
	// Wiki-link bullets, ready for insertion into a document.
	lines := make([]string, len(today))
	for i, n := range today {
		lines[i] = "- [[" + strings.TrimSuffix(n.Path, ".md") + "]]"
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.idx.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.idx.Notes()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var lines []string
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("%s (recording %d)", n.Path, n.RecordingID))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no synced notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "voicenotes://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
