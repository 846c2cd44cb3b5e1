package persist

import (
	"github.com/cursorvault/cursorvault/internal/conversation"
)

// Merge reconciles a newly built conversation against the previously
// persisted one sharing its container identifier. Existing messages come
// first; duplicates by dedup key (fragment id, else message id) keep the
// first occurrence, so the on-disk message wins if a key somehow recurs.
// Derived statistics are recomputed over the deduplicated set; createdAt is
// preserved from the existing record and updatedAt set to merge time.
func Merge(existing, incoming conversation.Conversation, counter conversation.TokenCounter) conversation.Conversation {
	merged := existing
	merged.Messages = dedupMessages(existing.Messages, incoming.Messages)
	merged.UpdatedAt = conversation.Now()

	if merged.Title == "" {
		merged.Title = incoming.Title
	}

	stats := conversation.ComputeStats(merged.Messages, counter)
	stats.ContainerID = existing.Metadata.ContainerID
	if stats.ContainerID == "" {
		stats.ContainerID = incoming.Metadata.ContainerID
	}
	stats.ProvenanceKey = existing.Metadata.ProvenanceKey
	if stats.ProvenanceKey == "" {
		stats.ProvenanceKey = incoming.Metadata.ProvenanceKey
	}
	stats.ProjectContext = existing.Metadata.ProjectContext
	if stats.ProjectContext == "" {
		stats.ProjectContext = incoming.Metadata.ProjectContext
	}
	merged.Metadata = stats

	return merged
}

// dedupMessages concatenates existing then incoming and drops later
// occurrences of a dedup key. A message with no key at all (legacy files)
// has no identity to collide on and is always kept.
func dedupMessages(existing, incoming []conversation.Message) []conversation.Message {
	seen := make(map[string]bool, len(existing)+len(incoming))
	out := make([]conversation.Message, 0, len(existing)+len(incoming))
	for _, batch := range [][]conversation.Message{existing, incoming} {
		for _, m := range batch {
			key := m.DedupKey()
			if key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			out = append(out, m)
		}
	}
	return out
}
