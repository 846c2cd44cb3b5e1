package conversation

import (
	"github.com/google/uuid"

	"github.com/cursorvault/cursorvault/internal/cursordb"
	"github.com/cursorvault/cursorvault/internal/filter"
	"github.com/cursorvault/cursorvault/internal/record"
)

// BuildOptions tunes conversation construction.
type BuildOptions struct {
	// FilterCode enables code redaction of assistant messages.
	FilterCode bool
	// Counter estimates per-message token counts; nil means the heuristic.
	Counter TokenCounter
}

// Build assembles a Conversation from a container and its new fragments, in
// container order. Fragments with unrecognized type codes or empty text are
// dropped; if nothing survives, Build returns nil.
func Build(c record.Container, newFragments []record.Fragment, opts BuildOptions) *Conversation {
	counter := opts.Counter
	if counter == nil {
		counter = HeuristicCounter{}
	}

	now := Now()
	var messages []Message
	for _, frag := range newFragments {
		role, ok := frag.Role()
		if !ok {
			continue
		}
		if frag.Text == "" {
			continue
		}

		filtered, meta := filter.Apply(frag.Text, role, opts.FilterCode)
		messages = append(messages, Message{
			ID:              uuid.NewString(),
			FragmentID:      frag.ID,
			Timestamp:       now, // the source rarely carries per-message times
			Role:            role,
			Content:         frag.Text,
			FilteredContent: filtered,
			Metadata:        meta,
		})
	}
	if len(messages) == 0 {
		return nil
	}

	createdAt := now
	if !c.CreatedAt.IsZero() {
		createdAt = At(c.CreatedAt)
	}
	updatedAt := now
	if !c.UpdatedAt.IsZero() {
		updatedAt = At(c.UpdatedAt)
	}

	conv := &Conversation{
		ID:        c.ID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Title:     TitleFor(c),
		Messages:  messages,
	}
	conv.Metadata = ComputeStats(conv.Messages, counter)
	conv.Metadata.ContainerID = c.ID
	conv.Metadata.ProvenanceKey = ProvenanceKey(c)
	return conv
}

// TitleFor returns the container's display name, falling back to a stable
// kind-qualified identifier.
func TitleFor(c record.Container) string {
	if c.Name != "" {
		return c.Name
	}
	if c.Kind == record.KindSession {
		return "Session " + c.ID
	}
	return "Composer " + c.ID
}

// ProvenanceKey returns the store key the conversation was extracted from.
func ProvenanceKey(c record.Container) string {
	return cursordb.ContainerPrefix + c.ID
}

// ComputeStats derives the message-count and token statistics for a message
// set.
func ComputeStats(messages []Message, counter TokenCounter) Metadata {
	if counter == nil {
		counter = HeuristicCounter{}
	}
	var meta Metadata
	meta.TotalMessages = len(messages)
	for _, m := range messages {
		switch m.Role {
		case record.RoleUser:
			meta.UserMessages++
		case record.RoleAssistant:
			meta.AssistantMessages++
		}
		meta.TotalTokensEstimated += counter.Count(m.Content)
	}
	return meta
}
