// Package record defines the typed views of Cursor's raw key-value rows:
// container records (one logical conversation) and fragment records (one
// message). Decoding is lenient per row: a malformed value is reported to
// the caller, never fatal to sibling rows.
package record

import "time"

// ContainerKind discriminates the two container payload shapes Cursor writes.
type ContainerKind string

const (
	KindComposer ContainerKind = "composer"
	KindSession  ContainerKind = "session"
)

// FragmentRef is one entry in a container's ordered fragment list.
type FragmentRef struct {
	ID   string
	Type int
}

// Container summarizes one logical conversation. The fragment list defines
// canonical message order and grows monotonically over the conversation's
// lifetime; the identifier is stable across polls and never reused.
type Container struct {
	ID        string
	Kind      ContainerKind
	Name      string
	CreatedAt time.Time // zero when the source row carries no timestamp
	UpdatedAt time.Time
	Fragments []FragmentRef
}

// FragmentIDs returns the ordered fragment identifiers.
func (c Container) FragmentIDs() []string {
	ids := make([]string, len(c.Fragments))
	for i, f := range c.Fragments {
		ids[i] = f.ID
	}
	return ids
}

// Role classifies a message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RoleForType maps Cursor's numeric message type codes to roles. Unrecognized
// codes return ok=false; such fragments are dropped, not errors, since they are
// message kinds outside the supported set.
func RoleForType(code int) (Role, bool) {
	switch code {
	case 0:
		return RoleSystem, true
	case 1:
		return RoleUser, true
	case 2:
		return RoleAssistant, true
	}
	return "", false
}

// Attachment is a file or tool-result reference carried by a fragment. Only
// the context resolver consults these; they are not stored in the output.
type Attachment struct {
	URI string
}

// Fragment is one message body as stored by Cursor. Immutable once written.
type Fragment struct {
	ID          string
	Type        int
	Text        string
	Attachments []Attachment
}

// Role returns the fragment's mapped role.
func (f Fragment) Role() (Role, bool) {
	return RoleForType(f.Type)
}

// LayoutHint is the context-record payload consulted during local project
// resolution. It declares the workspace root folder name the conversation
// was held in.
type LayoutHint struct {
	WorkspaceRootName string
}
