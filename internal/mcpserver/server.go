// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the synced note set as tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/areaewhy/JoplinView/internal/models"
	"github.com/areaewhy/JoplinView/internal/store"
	"github.com/areaewhy/JoplinView/internal/syncer"
)

// Server wraps the MCP server with JoplinView tools. All tools read
// the local store; run_sync is the only mutating tool.
type Server struct {
	mcp   *server.MCPServer
	sync  *syncer.Syncer
	notes store.NoteStore
}

// New creates a new MCP server with all tools registered.
func New(sync *syncer.Syncer, notes store.NoteStore) *Server {
	s := &Server{sync: sync, notes: notes}

	s.mcp = server.NewMCPServer(
		"JoplinView",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all synced notes with their ids, titles, and tags."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive substring search over note titles, bodies, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full body of a note by its Joplin id."),
		mcp.WithString("joplinId", mcp.Required(), mcp.Description("Joplin id of the note (export filename stem)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("Tag frequency table for the current note set."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("run_sync",
		mcp.WithDescription("Run a full bucket reconciliation pass and report the result."),
	), s.runSync)

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

// noteSummary is the list_notes/search_notes item shape. Bodies are
// omitted to keep tool output small; read_note returns them.
type noteSummary struct {
	ID       int64    `json:"id"`
	JoplinID string   `json:"joplinId"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
}

func summarize(notes []models.Note) []noteSummary {
	out := make([]noteSummary, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteSummary{ID: n.ID, JoplinID: n.JoplinID, Title: n.Title, Tags: n.Tags})
	}
	return out
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.sync.EnsureWarm(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.notes.All()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(summarize(notes), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.sync.EnsureWarm(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.notes.Search(query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(summarize(notes), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	joplinID, err := req.RequireString("joplinId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.ByJoplinID(joplinID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if note == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", joplinID)), nil
	}
	return mcp.NewToolResultText(note.Body), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.sync.ListTags()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags"), nil
	}
	var b strings.Builder
	for _, tc := range tags {
		fmt.Fprintf(&b, "%s (%d)\n", tc.Name, tc.Count)
	}
	return mcp.NewToolResultText(strings.TrimSpace(b.String())), nil
}

func (s *Server) runSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.sync.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("synced %d notes, %s used", summary.Processed, summary.StorageUsed)), nil
}
