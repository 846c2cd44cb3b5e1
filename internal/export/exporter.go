// Package export renders persisted conversations into shareable formats.
// Rendering is stateless; all invariants live upstream in the persist layer.
package export

import (
	"github.com/cursorvault/cursorvault/internal/conversation"
)

// Exporter renders a set of conversations to a string in a specific format.
type Exporter interface {
	Export(convs []conversation.Conversation) (string, error)
}

// registry maps format names to Exporter implementations.
var registry = map[string]Exporter{
	"markdown": &MarkdownExporter{},
	"json":     &JSONExporter{},
}

// Get returns the Exporter registered under name, and whether it was found.
func Get(name string) (Exporter, bool) {
	e, ok := registry[name]
	return e, ok
}

// ValidFormats returns the list of supported export format names.
func ValidFormats() []string {
	formats := make([]string, 0, len(registry))
	for k := range registry {
		formats = append(formats, k)
	}
	return formats
}

// FileName maps a format name to its output file name.
func FileName(format string) string {
	switch format {
	case "markdown":
		return "CONVERSATIONS.md"
	case "json":
		return "conversations-export.json"
	default:
		return ""
	}
}
