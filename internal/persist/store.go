// Package persist owns the durable conversation files under
// .cursorvault/conversations/ and the merge semantics that keep them
// duplicate-free across re-entrant polls and process restarts.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cursorvault/cursorvault/internal/conversation"
	"github.com/cursorvault/cursorvault/internal/track"
)

// ErrNoContainerID flags an attempt to persist a conversation without a
// container identifier, which is a data-shape assumption break rather than
// a skippable row.
var ErrNoContainerID = errors.New("persist: conversation has no container id")

// Store reads and writes conversation files in a single directory. One file
// per container, named by (createdAt date, containerId) so repeated merges
// target the same destination.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first write, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// fileName returns the stable file name for a conversation.
func fileName(conv conversation.Conversation) string {
	return fmt.Sprintf("%s-%s.json", conv.CreatedAt.UTC().Format("2006-01-02"), conv.Metadata.ContainerID)
}

// LoadByContainerID returns the persisted conversation for a container, or
// ok=false if none exists.
func (s *Store) LoadByContainerID(containerID string) (conversation.Conversation, bool, error) {
	var zero conversation.Conversation
	if containerID == "" {
		return zero, false, ErrNoContainerID
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("persist: read dir: %w", err)
	}

	suffix := "-" + containerID + ".json"
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		conv, err := s.loadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return zero, false, err
		}
		return conv, true, nil
	}
	return zero, false, nil
}

// LoadAll returns every persisted conversation, sorted by creation time.
// Files that fail to decode are skipped.
func (s *Store) LoadAll() ([]conversation.Conversation, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("persist: read dir: %w", err)
	}

	var out []conversation.Conversation
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		conv, err := s.loadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
	})
	return out, nil
}

func (s *Store) loadFile(path string) (conversation.Conversation, error) {
	var conv conversation.Conversation
	data, err := os.ReadFile(path)
	if err != nil {
		return conv, fmt.Errorf("persist: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &conv); err != nil {
		return conv, fmt.Errorf("persist: decode %s: %w", path, err)
	}
	return conv, nil
}

// write persists the conversation atomically: temp file in the same
// directory, then rename over the destination.
func (s *Store) write(conv conversation.Conversation) error {
	if conv.Metadata.ContainerID == "" {
		return ErrNoContainerID
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("persist: mkdir: %w", err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode %s: %w", conv.ID, err)
	}

	dest := filepath.Join(s.dir, fileName(conv))
	tmp, err := os.CreateTemp(s.dir, ".tmp-conversation-*")
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

// SaveMerged merges the newly built conversation with any persisted one
// sharing its container identifier and writes the result. Returns the
// merged conversation as written.
func (s *Store) SaveMerged(conv conversation.Conversation, counter conversation.TokenCounter) (conversation.Conversation, error) {
	if conv.Metadata.ContainerID == "" {
		return conversation.Conversation{}, ErrNoContainerID
	}

	existing, found, err := s.LoadByContainerID(conv.Metadata.ContainerID)
	if err != nil {
		return conversation.Conversation{}, err
	}

	var merged conversation.Conversation
	if found {
		merged = Merge(existing, conv, counter)
	} else {
		merged = conv
		merged.Metadata = conversation.ComputeStats(merged.Messages, counter)
		merged.Metadata.ContainerID = conv.Metadata.ContainerID
		merged.Metadata.ProvenanceKey = conv.Metadata.ProvenanceKey
		merged.Metadata.ProjectContext = conv.Metadata.ProjectContext
	}

	if err := s.write(merged); err != nil {
		return conversation.Conversation{}, err
	}
	return merged, nil
}

// Reseed rebuilds a dedup tracker from the persisted conversations so a
// process restart never re-emits already-saved messages.
func (s *Store) Reseed(tracker *track.Tracker) error {
	convs, err := s.LoadAll()
	if err != nil {
		return err
	}
	for _, conv := range convs {
		if conv.Metadata.ContainerID == "" {
			continue
		}
		tracker.MarkSeen(conv.Metadata.ContainerID, conv.FragmentIDs())
	}
	return nil
}
