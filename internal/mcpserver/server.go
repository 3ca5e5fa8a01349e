// Package mcpserver exposes the note graph of a site to LLM clients as an
// MCP (Model Context Protocol) server over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ztk/internal/graph"
	"github.com/starford/ztk/internal/index"
	"github.com/starford/ztk/internal/note"
)

// Server wraps the MCP server with ztk tools.
type Server struct {
	mcp   *server.MCPServer
	graph *graph.Graph
	index index.Searcher
}

// New creates an MCP server over g, searching through idx.
func New(g *graph.Graph, idx index.Searcher, version string) *Server {
	s := &Server{graph: g, index: idx}

	s.mcp = server.NewMCPServer(
		"ztk",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag with the number of notes carrying it, most used first."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, most recent first, optionally only those carrying a tag."),
		mcp.WithString("tag", mcp.Description("Optional tag without the leading #")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the raw text of a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (file name without extension)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search note titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	return s
}

// ServeStdio serves MCP over the given stdio pair until ctx is cancelled or
// in reaches EOF.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) listTags(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	freqs := s.graph.Frequencies()
	if len(freqs) == 0 {
		return mcp.NewToolResultText("no tags"), nil
	}
	lines := make([]string, len(freqs))
	for i, f := range freqs {
		lines[i] = fmt.Sprintf("#%s (%d)", f.Name, f.Count)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var notes []*note.Note
	if tag, err := req.RequireString("tag"); err == nil && tag != "" {
		notes = s.graph.Tagged(strings.TrimPrefix(tag, "#"))
	} else {
		notes = s.graph.Nodes()
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	lines := make([]string, len(notes))
	for i, n := range notes {
		lines[i] = n.ID + "\t" + n.Title
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.graph.Lookup(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(n.Content), nil
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.index.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
