// Package conversation defines the persisted conversation model and builds
// conversations from newly extracted fragments.
package conversation

import (
	"fmt"
	"time"

	"github.com/cursorvault/cursorvault/internal/filter"
	"github.com/cursorvault/cursorvault/internal/record"
)

// Timestamp is a time.Time persisted as RFC 3339 UTC. Reading accepts the
// locale-formatted strings older files carry.
type Timestamp struct {
	time.Time
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

// At wraps a time.Time.
func At(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("conversation: timestamp is not a string: %s", s)
	}
	parsed, err := parseFlexibleTime(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// legacyTimeLayouts covers the locale-string forms written by earlier
// versions of the persisted format.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"1/2/2006, 3:04:05 PM",
	"2/1/2006, 15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006, 15:04:05",
}

// parseFlexibleTime parses RFC 3339 first, then the known legacy layouts.
func parseFlexibleTime(s string) (time.Time, error) {
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("conversation: unparseable timestamp %q", s)
}

// Message is one resolved message in a persisted conversation.
type Message struct {
	ID              string          `json:"id"`
	FragmentID      string          `json:"fragmentId,omitempty"`
	Timestamp       Timestamp       `json:"timestamp"`
	Role            record.Role     `json:"role"`
	Content         string          `json:"content"`
	FilteredContent string          `json:"filteredContent,omitempty"`
	Metadata        filter.Metadata `json:"metadata"`
}

// DedupKey is the stable identity used by merge dedup: the fragment
// identifier when present, else the message identifier.
func (m Message) DedupKey() string {
	if m.FragmentID != "" {
		return m.FragmentID
	}
	return m.ID
}

// Metadata holds a conversation's derived statistics and provenance.
type Metadata struct {
	ProjectContext       string `json:"projectContext,omitempty"`
	TotalMessages        int    `json:"totalMessages"`
	UserMessages         int    `json:"userMessages"`
	AssistantMessages    int    `json:"assistantMessages"`
	TotalTokensEstimated int    `json:"totalTokensEstimated"`
	ContainerID          string `json:"containerId"`
	ProvenanceKey        string `json:"provenanceKey"`
}

// Conversation is the persisted unit: one container's accumulated messages.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Metadata  Metadata  `json:"metadata"`
}

// FragmentIDs returns the fragment identifiers present in the conversation.
func (c Conversation) FragmentIDs() []string {
	var ids []string
	for _, m := range c.Messages {
		if m.FragmentID != "" {
			ids = append(ids, m.FragmentID)
		}
	}
	return ids
}
