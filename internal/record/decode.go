package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// composerPayload is the composer-style container shape. Discriminated by
// the presence of composerId.
type composerPayload struct {
	ComposerID    string          `json:"composerId"`
	Name          string          `json:"name"`
	CreatedAt     int64           `json:"createdAt"`     // unix millis, 0 when absent
	LastUpdatedAt int64           `json:"lastUpdatedAt"` // unix millis, 0 when absent
	Headers       []composerEntry `json:"fullConversationHeadersOnly"`
}

type composerEntry struct {
	BubbleID string `json:"bubbleId"`
	Type     int    `json:"type"`
}

// sessionPayload is the session-style container shape. Discriminated by the
// presence of sessionId.
type sessionPayload struct {
	SessionID  string   `json:"sessionId"`
	Title      string   `json:"title"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt"`
	MessageIDs []string `json:"messageIds"`
}

// DecodeContainer parses a raw container value into its tagged variant.
// The two payload shapes carry the same semantic roles under different field
// names; the discriminating field decides the kind.
func DecodeContainer(raw string) (Container, error) {
	var probe struct {
		ComposerID string `json:"composerId"`
		SessionID  string `json:"sessionId"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return Container{}, fmt.Errorf("record: decode container: %w", err)
	}

	switch {
	case probe.ComposerID != "":
		var p composerPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return Container{}, fmt.Errorf("record: decode composer container: %w", err)
		}
		c := Container{
			ID:        p.ComposerID,
			Kind:      KindComposer,
			Name:      p.Name,
			CreatedAt: msToTime(p.CreatedAt),
			UpdatedAt: msToTime(p.LastUpdatedAt),
		}
		for _, h := range p.Headers {
			if h.BubbleID == "" {
				continue
			}
			c.Fragments = append(c.Fragments, FragmentRef{ID: h.BubbleID, Type: h.Type})
		}
		return c, nil

	case probe.SessionID != "":
		var p sessionPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return Container{}, fmt.Errorf("record: decode session container: %w", err)
		}
		c := Container{
			ID:        p.SessionID,
			Kind:      KindSession,
			Name:      p.Title,
			CreatedAt: msToTime(p.CreatedAt),
			UpdatedAt: msToTime(p.UpdatedAt),
		}
		for _, id := range p.MessageIDs {
			if id == "" {
				continue
			}
			// Session-style lists carry no per-entry type; the fragment
			// body's own type code decides the role at fetch time.
			c.Fragments = append(c.Fragments, FragmentRef{ID: id, Type: -1})
		}
		return c, nil
	}

	return Container{}, fmt.Errorf("record: container has neither composerId nor sessionId")
}

// fragmentPayload mirrors the bubble record shape. Attachment URIs appear in
// several spots depending on how the file reached the conversation.
type fragmentPayload struct {
	BubbleID string `json:"bubbleId"`
	Type     int    `json:"type"`
	Text     string `json:"text"`
	Context  struct {
		FileSelections []struct {
			URI uriPayload `json:"uri"`
		} `json:"fileSelections"`
	} `json:"context"`
	AttachedFileURIs []string `json:"attachedFileCodeChunksUris"`
	ToolFormerData   struct {
		Result string `json:"result"`
	} `json:"toolFormerData"`
}

// uriPayload is the serialized editor URI shape {scheme, authority, path}.
type uriPayload struct {
	Scheme    string `json:"scheme"`
	Authority string `json:"authority"`
	Path      string `json:"path"`
	External  string `json:"external"`
}

func (u uriPayload) String() string {
	if u.External != "" {
		return u.External
	}
	if u.Scheme == "" {
		return u.Path
	}
	return u.Scheme + "://" + u.Authority + u.Path
}

// DecodeFragment parses a raw fragment value. fragmentID is the identifier
// from the row key, used when the payload omits its own.
func DecodeFragment(fragmentID, raw string) (Fragment, error) {
	var p fragmentPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Fragment{}, fmt.Errorf("record: decode fragment %s: %w", fragmentID, err)
	}

	f := Fragment{
		ID:   p.BubbleID,
		Type: p.Type,
		Text: p.Text,
	}
	if f.ID == "" {
		f.ID = fragmentID
	}

	for _, sel := range p.Context.FileSelections {
		if s := sel.URI.String(); s != "" {
			f.Attachments = append(f.Attachments, Attachment{URI: s})
		}
	}
	for _, u := range p.AttachedFileURIs {
		if u != "" {
			f.Attachments = append(f.Attachments, Attachment{URI: u})
		}
	}
	// Tool results embed file URIs inline; harvest any remote-looking ones.
	for _, u := range extractURIs(p.ToolFormerData.Result) {
		f.Attachments = append(f.Attachments, Attachment{URI: u})
	}

	return f, nil
}

// DecodeLayoutHint parses a context record into its layout hint. The payload
// nests the root name at either the top level or under "workspace".
func DecodeLayoutHint(raw string) (LayoutHint, error) {
	var p struct {
		WorkspaceRootName string `json:"workspaceRootName"`
		Workspace         struct {
			RootName string `json:"rootName"`
		} `json:"workspace"`
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return LayoutHint{}, fmt.Errorf("record: decode layout hint: %w", err)
	}
	hint := LayoutHint{WorkspaceRootName: p.WorkspaceRootName}
	if hint.WorkspaceRootName == "" {
		hint.WorkspaceRootName = p.Workspace.RootName
	}
	return hint, nil
}

// extractURIs pulls vscode-remote:// URIs out of free-form tool output.
func extractURIs(s string) []string {
	var out []string
	for {
		i := strings.Index(s, "vscode-remote://")
		if i < 0 {
			return out
		}
		rest := s[i:]
		end := strings.IndexAny(rest, " \t\n\r\"'`)]},")
		if end < 0 {
			end = len(rest)
		}
		out = append(out, rest[:end])
		s = s[i+end:]
	}
}

func msToTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
