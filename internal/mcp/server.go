// Package mcp exposes the persisted conversation store to MCP clients as a
// read-only tool surface.
package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cursorvault/cursorvault/internal/persist"
)

// Server wraps the MCP server and the conversation store it reads from.
type Server struct {
	store *persist.Store
	root  string
	mcp   *server.MCPServer
}

// NewServer creates an MCP server with the conversation tools registered.
func NewServer(root string, store *persist.Store, version string) *Server {
	s := &Server{store: store, root: root}

	srv := server.NewMCPServer(
		"cursorvault",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	srv.AddTool(mcp.NewTool("list_conversations",
		mcp.WithDescription("List saved Cursor conversations for this project with message counts and timestamps."),
	), s.handleListConversations)

	srv.AddTool(mcp.NewTool("get_conversation",
		mcp.WithDescription("Return the full message history of one saved conversation."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Conversation or container identifier"),
		),
	), s.handleGetConversation)

	srv.AddTool(mcp.NewTool("search_conversations",
		mcp.WithDescription("Search saved conversation messages for a substring (case-insensitive)."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
	), s.handleSearchConversations)

	srv.AddTool(mcp.NewTool("recent_messages",
		mcp.WithDescription("Return messages recorded since the project's last git commit."),
	), s.handleRecentMessages)

	s.mcp = srv
	return s
}

// ServeStdio runs the server over stdio until the client disconnects.
func (s *Server) ServeStdio() error {
	if err := server.ServeStdio(s.mcp); err != nil {
		return fmt.Errorf("mcp: serve: %w", err)
	}
	return nil
}
