package export

import (
	"fmt"
	"strings"

	"github.com/cursorvault/cursorvault/internal/conversation"
)

// MarkdownExporter renders conversations as a single markdown document.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(convs []conversation.Conversation) (string, error) {
	var b strings.Builder
	b.WriteString("# Extracted Conversations\n\n")

	for _, conv := range convs {
		fmt.Fprintf(&b, "## %s\n\n", conv.Title)
		fmt.Fprintf(&b, "- Created: %s\n", conv.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "- Updated: %s\n", conv.UpdatedAt.Format("2006-01-02 15:04"))
		if pc := conv.Metadata.ProjectContext; pc != "" {
			fmt.Fprintf(&b, "- Project: %s\n", pc)
		}
		fmt.Fprintf(&b, "- Messages: %d (%d user, %d assistant), ~%d tokens\n\n",
			conv.Metadata.TotalMessages,
			conv.Metadata.UserMessages,
			conv.Metadata.AssistantMessages,
			conv.Metadata.TotalTokensEstimated,
		)

		for _, m := range conv.Messages {
			fmt.Fprintf(&b, "**%s** (%s):\n\n", roleHeading(string(m.Role)), m.Timestamp.Format("15:04:05"))
			content := m.Content
			if m.FilteredContent != "" {
				content = m.FilteredContent
			}
			b.WriteString(content)
			b.WriteString("\n\n")
		}
		b.WriteString("---\n\n")
	}

	return b.String(), nil
}

func roleHeading(role string) string {
	if role == "" {
		return "Unknown"
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
