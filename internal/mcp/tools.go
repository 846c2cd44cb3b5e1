package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cursorvault/cursorvault/internal/conversation"
	"github.com/cursorvault/cursorvault/internal/gitstate"
)

func (s *Server) handleListConversations(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	convs, err := s.store.LoadAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load conversations: %v", err)), nil
	}
	if len(convs) == 0 {
		return mcp.NewToolResultText("No conversations saved yet."), nil
	}

	var sb strings.Builder
	for _, c := range convs {
		fmt.Fprintf(&sb, "- %s (id: %s): %d messages, updated %s\n",
			c.Title, c.ID, c.Metadata.TotalMessages, c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleGetConversation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	conv, found, err := s.store.LoadByContainerID(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load conversation: %v", err)), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("no conversation with id %q", id)), nil
	}

	return mcp.NewToolResultText(renderConversation(conv)), nil
}

func (s *Server) handleSearchConversations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	needle := strings.ToLower(query)

	convs, err := s.store.LoadAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load conversations: %v", err)), nil
	}

	var sb strings.Builder
	matches := 0
	for _, c := range convs {
		for _, m := range c.Messages {
			if !strings.Contains(strings.ToLower(m.Content), needle) {
				continue
			}
			matches++
			fmt.Fprintf(&sb, "### %s / %s (%s)\n%s\n\n",
				c.Title, m.Role, m.Timestamp.Format("2006-01-02 15:04"), snippet(m.Content, needle))
		}
	}
	if matches == 0 {
		return mcp.NewToolResultText("No results found."), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleRecentMessages(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cp := gitstate.Capture(s.root)

	convs, err := s.store.LoadAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load conversations: %v", err)), nil
	}

	var sb strings.Builder
	count := 0
	for _, c := range convs {
		for _, m := range c.Messages {
			if !cp.IsZero() && !m.Timestamp.After(cp.CommitTime) {
				continue
			}
			count++
			fmt.Fprintf(&sb, "[%s] %s: %s\n", m.Timestamp.Format("15:04:05"), m.Role, m.Content)
		}
	}
	if count == 0 {
		return mcp.NewToolResultText("No messages since the last commit."), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func renderConversation(c conversation.Conversation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", c.Title)
	for _, m := range c.Messages {
		fmt.Fprintf(&sb, "**%s** (%s):\n%s\n\n", m.Role, m.Timestamp.Format("2006-01-02 15:04"), m.Content)
	}
	return sb.String()
}

// snippet returns a short window of text around the first match.
func snippet(text, needle string) string {
	const window = 160
	i := strings.Index(strings.ToLower(text), needle)
	if i < 0 {
		i = 0
	}
	start := i - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(text) {
		end = len(text)
	}
	out := text[start:end]
	if start > 0 {
		out = "…" + out
	}
	if end < len(text) {
		out += "…"
	}
	return out
}
