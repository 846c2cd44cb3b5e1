package conversation

import (
	"fmt"
	"math"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the token count of a message body.
type TokenCounter interface {
	Count(s string) int
}

// HeuristicCounter estimates ≈ word count × 1.3, ceiling-rounded. This is
// the default and what the persisted totalTokensEstimated stat is defined
// over.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(s string) int {
	words := len(strings.Fields(s))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) * 1.3))
}

// TiktokenCounter counts exact cl100k_base tokens. Opt-in via
// tokens.counter = "tiktoken".
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a TiktokenCounter using the cl100k_base
// encoding, which approximates most current model tokenizers well enough
// for stats.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("conversation: get encoding: %w", err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (t *TiktokenCounter) Count(s string) int {
	return len(t.enc.Encode(s, nil, nil))
}

// CounterFor returns the TokenCounter for a config name. Unknown names and
// a failed tiktoken init fall back to the heuristic.
func CounterFor(name string) TokenCounter {
	if name == "tiktoken" {
		if tc, err := NewTiktokenCounter(); err == nil {
			return tc
		}
	}
	return HeuristicCounter{}
}
