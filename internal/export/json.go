package export

import (
	"encoding/json"
	"fmt"

	"github.com/cursorvault/cursorvault/internal/conversation"
)

// JSONExporter renders conversations as a single indented JSON array.
type JSONExporter struct{}

func (e *JSONExporter) Export(convs []conversation.Conversation) (string, error) {
	if convs == nil {
		convs = []conversation.Conversation{}
	}
	data, err := json.MarshalIndent(convs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: encode json: %w", err)
	}
	return string(data), nil
}
