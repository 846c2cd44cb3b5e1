package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/cursorvault/cursorvault/internal/record"
)

func testContainer() record.Container {
	return record.Container{
		ID:   "c1",
		Kind: record.KindComposer,
		Fragments: []record.FragmentRef{
			{ID: "f1", Type: 1},
			{ID: "f2", Type: 2},
		},
	}
}

func TestBuild_Basic(t *testing.T) {
	fragments := []record.Fragment{
		{ID: "f1", Type: 1, Text: "how do I sort a slice"},
		{ID: "f2", Type: 2, Text: "use sort.Slice"},
	}

	conv := Build(testContainer(), fragments, BuildOptions{})
	if conv == nil {
		t.Fatal("expected a conversation")
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("messages: got %d, want 2", len(conv.Messages))
	}
	if conv.Messages[0].Role != record.RoleUser || conv.Messages[1].Role != record.RoleAssistant {
		t.Errorf("roles: got %s, %s", conv.Messages[0].Role, conv.Messages[1].Role)
	}
	if conv.Messages[0].FragmentID != "f1" {
		t.Errorf("fragment id: got %q", conv.Messages[0].FragmentID)
	}
	if conv.Messages[0].ID == "" || conv.Messages[0].ID == conv.Messages[1].ID {
		t.Error("messages need distinct generated ids")
	}
	if conv.Metadata.TotalMessages != 2 || conv.Metadata.UserMessages != 1 || conv.Metadata.AssistantMessages != 1 {
		t.Errorf("stats: %+v", conv.Metadata)
	}
	if conv.Metadata.ContainerID != "c1" {
		t.Errorf("container id: got %q", conv.Metadata.ContainerID)
	}
	if conv.Metadata.ProvenanceKey != "composerData:c1" {
		t.Errorf("provenance key: got %q", conv.Metadata.ProvenanceKey)
	}
}

func TestBuild_UnrecognizedRoleDropped(t *testing.T) {
	fragments := []record.Fragment{
		{ID: "f1", Type: 7, Text: "capability message"},
		{ID: "f2", Type: 1, Text: "real question"},
	}

	conv := Build(testContainer(), fragments, BuildOptions{})
	if conv == nil {
		t.Fatal("expected a conversation")
	}
	if len(conv.Messages) != 1 {
		t.Fatalf("messages: got %d, want 1", len(conv.Messages))
	}
	if conv.Messages[0].FragmentID != "f2" {
		t.Errorf("surviving fragment: got %q", conv.Messages[0].FragmentID)
	}
}

func TestBuild_AllUnrecognizedReturnsNil(t *testing.T) {
	fragments := []record.Fragment{
		{ID: "f1", Type: 7, Text: "a"},
		{ID: "f2", Type: 9, Text: "b"},
	}

	if conv := Build(testContainer(), fragments, BuildOptions{}); conv != nil {
		t.Errorf("expected nil conversation, got %d messages", len(conv.Messages))
	}
}

func TestBuild_EmptyFragmentsReturnsNil(t *testing.T) {
	if conv := Build(testContainer(), nil, BuildOptions{}); conv != nil {
		t.Error("expected nil conversation for no fragments")
	}
}

func TestBuild_BlankTextDropped(t *testing.T) {
	fragments := []record.Fragment{
		{ID: "f1", Type: 1, Text: ""},
	}
	if conv := Build(testContainer(), fragments, BuildOptions{}); conv != nil {
		t.Error("expected nil conversation when every fragment is blank")
	}
}

func TestBuild_FilteringOnlyAssistant(t *testing.T) {
	fragments := []record.Fragment{
		{ID: "f1", Type: 1, Text: "run `ls` for me"},
		{ID: "f2", Type: 2, Text: "sure: `ls -la`"},
	}

	conv := Build(testContainer(), fragments, BuildOptions{FilterCode: true})
	if conv == nil {
		t.Fatal("expected a conversation")
	}
	if conv.Messages[0].FilteredContent != "" {
		t.Error("user message must not carry filtered content")
	}
	if !strings.Contains(conv.Messages[1].FilteredContent, "[INLINE_CODE_FILTERED]") {
		t.Errorf("assistant filtered content: got %q", conv.Messages[1].FilteredContent)
	}
	if conv.Messages[1].Content != "sure: `ls -la`" {
		t.Error("raw content must be preserved alongside the filtered variant")
	}
}

func TestBuild_TitleFallbacks(t *testing.T) {
	c := testContainer()
	fragments := []record.Fragment{{ID: "f1", Type: 1, Text: "hi"}}

	conv := Build(c, fragments, BuildOptions{})
	if conv.Title != "Composer c1" {
		t.Errorf("composer fallback title: got %q", conv.Title)
	}

	c.Kind = record.KindSession
	conv = Build(c, fragments, BuildOptions{})
	if conv.Title != "Session c1" {
		t.Errorf("session fallback title: got %q", conv.Title)
	}

	c.Name = "Debugging the poller"
	conv = Build(c, fragments, BuildOptions{})
	if conv.Title != "Debugging the poller" {
		t.Errorf("explicit title: got %q", conv.Title)
	}
}

func TestBuild_ContainerTimestampsPreferred(t *testing.T) {
	c := testContainer()
	c.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	fragments := []record.Fragment{{ID: "f1", Type: 1, Text: "hi"}}

	conv := Build(c, fragments, BuildOptions{})
	if !conv.CreatedAt.Equal(c.CreatedAt) {
		t.Errorf("created at: got %v, want container's %v", conv.CreatedAt, c.CreatedAt)
	}
	// No source update time: falls back to extraction time.
	if conv.UpdatedAt.IsZero() {
		t.Error("updated at must fall back to wall-clock time")
	}
}

func TestComputeStats_TokenEstimate(t *testing.T) {
	messages := []Message{
		{Role: record.RoleUser, Content: "one two three"},       // 3 words → ceil(3.9) = 4
		{Role: record.RoleAssistant, Content: "four five"},      // 2 words → ceil(2.6) = 3
	}

	meta := ComputeStats(messages, HeuristicCounter{})
	if meta.TotalTokensEstimated != 7 {
		t.Errorf("token estimate: got %d, want 7", meta.TotalTokensEstimated)
	}
}
