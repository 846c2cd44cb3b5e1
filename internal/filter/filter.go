// Package filter redacts code from assistant message text while reporting
// code-detection metadata for every message regardless of policy.
package filter

import (
	"regexp"

	"github.com/cursorvault/cursorvault/internal/record"
)

// Placeholder tokens substituted for redacted content.
const (
	CodeBlockPlaceholder  = "[CODE_BLOCK_FILTERED]"
	InlineCodePlaceholder = "[INLINE_CODE_FILTERED]"
)

var (
	// Fenced blocks: opening marker with optional language tag, non-greedy
	// to the closing marker.
	fencedRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+#.-]*\\n?.*?```")
	// Language tag of a fenced block's opening line.
	fenceLangRe = regexp.MustCompile("```([a-zA-Z0-9_+#.-]+)")
	// Inline spans: backtick-delimited, no internal backtick or newline.
	inlineRe = regexp.MustCompile("`[^`\n]+`")
)

// Metadata describes the code content detected in a message. It is always
// computed, even when redaction is disabled or the role is exempt.
type Metadata struct {
	HasCodeBlocks bool   `json:"hasCodeBlocks"`
	CodeLanguage  string `json:"codeLanguage,omitempty"`
	CharLength    int    `json:"charLength"`
	Filtered      bool   `json:"filtered"`
}

// Apply computes code metadata for text and, when enabled and the role is
// assistant, redacts fenced blocks then inline spans. The filtered string is
// returned non-empty only when redaction actually changed the text.
func Apply(text string, role record.Role, enabled bool) (string, Metadata) {
	meta := Metadata{
		HasCodeBlocks: fencedRe.MatchString(text),
		CodeLanguage:  firstLanguage(text),
		CharLength:    len(text),
	}

	if !enabled || role != record.RoleAssistant {
		return "", meta
	}

	filtered := fencedRe.ReplaceAllString(text, CodeBlockPlaceholder)
	filtered = inlineRe.ReplaceAllString(filtered, InlineCodePlaceholder)
	if filtered == text {
		return "", meta
	}

	meta.Filtered = true
	return filtered, meta
}

// firstLanguage reports the language tag of the first fenced block in the
// original text, if any.
func firstLanguage(text string) string {
	m := fenceLangRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
