package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cursorvault/cursorvault/internal/conversation"
)

// SinceFileName is the derived-output file written next to the
// conversations directory.
const SinceFileName = "since-last-commit.json"

// SinceEntry is one message in the since-checkpoint derived output.
type SinceEntry struct {
	Content        string                 `json:"content"`
	Role           string                 `json:"role"`
	Timestamp      conversation.Timestamp `json:"timestamp"`
	ConversationID string                 `json:"conversationId"`
}

// WriteSinceCheckpoint rewrites the flat list of messages newer than the
// checkpoint across all persisted conversations. The file is replaced
// wholesale on every call. A zero checkpoint includes everything.
func (s *Store) WriteSinceCheckpoint(checkpoint time.Time) error {
	convs, err := s.LoadAll()
	if err != nil {
		return err
	}

	entries := make([]SinceEntry, 0)
	for _, conv := range convs {
		for _, m := range conv.Messages {
			if !checkpoint.IsZero() && !m.Timestamp.After(checkpoint) {
				continue
			}
			entries = append(entries, SinceEntry{
				Content:        m.Content,
				Role:           string(m.Role),
				Timestamp:      m.Timestamp,
				ConversationID: conv.ID,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp.Time)
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode since-checkpoint: %w", err)
	}

	dest := filepath.Join(filepath.Dir(s.dir), SinceFileName)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("persist: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-since-*")
	if err != nil {
		return fmt.Errorf("persist: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("persist: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: close temp: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: rename: %w", err)
	}
	return nil
}
