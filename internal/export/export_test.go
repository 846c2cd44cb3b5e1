package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cursorvault/cursorvault/internal/conversation"
	"github.com/cursorvault/cursorvault/internal/record"
)

func sampleConversations() []conversation.Conversation {
	conv := conversation.Conversation{
		ID:        "c1",
		CreatedAt: conversation.At(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)),
		UpdatedAt: conversation.At(time.Date(2024, 6, 15, 11, 0, 0, 0, time.UTC)),
		Title:     "Fixing the watcher",
		Messages: []conversation.Message{
			{
				ID: "m1", FragmentID: "f1", Role: record.RoleUser,
				Timestamp: conversation.At(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)),
				Content:   "why does the watcher miss events",
			},
			{
				ID: "m2", FragmentID: "f2", Role: record.RoleAssistant,
				Timestamp:       conversation.At(time.Date(2024, 6, 15, 10, 1, 0, 0, time.UTC)),
				Content:         "add the dir with `watcher.Add(dir)`",
				FilteredContent: "add the dir with [INLINE_CODE_FILTERED]",
			},
		},
	}
	conv.Metadata = conversation.ComputeStats(conv.Messages, nil)
	conv.Metadata.ContainerID = "c1"
	conv.Metadata.ProjectContext = "/home/u/proj"
	return []conversation.Conversation{conv}
}

func TestMarkdownExporter(t *testing.T) {
	out, err := (&MarkdownExporter{}).Export(sampleConversations())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	for _, want := range []string{
		"# Extracted Conversations",
		"## Fixing the watcher",
		"- Project: /home/u/proj",
		"**User**",
		"**Assistant**",
		"why does the watcher miss events",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// The filtered variant takes precedence over raw assistant content.
	if !strings.Contains(out, "[INLINE_CODE_FILTERED]") {
		t.Error("filtered content not used")
	}
	if strings.Contains(out, "watcher.Add(dir)") {
		t.Error("raw code leaked into the rendered output")
	}
}

func TestJSONExporter(t *testing.T) {
	out, err := (&JSONExporter{}).Export(sampleConversations())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var convs []conversation.Conversation
	if err := json.Unmarshal([]byte(out), &convs); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != "c1" {
		t.Errorf("round trip: %+v", convs)
	}
}

func TestJSONExporter_EmptySet(t *testing.T) {
	out, err := (&JSONExporter{}).Export(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty set must render an empty array, got %q", out)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"markdown", "json"} {
		if _, ok := Get(name); !ok {
			t.Errorf("format %q not registered", name)
		}
		if FileName(name) == "" {
			t.Errorf("format %q has no file name", name)
		}
	}
	if _, ok := Get("xml"); ok {
		t.Error("unknown format resolved")
	}
	if got := len(ValidFormats()); got != 2 {
		t.Errorf("valid formats: got %d, want 2", got)
	}
}
