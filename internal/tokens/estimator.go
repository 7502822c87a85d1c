// Package tokens provides token counting for context budgeting using tiktoken.
package tokens

import (
	"encoding/json"
	"sync"

	. "github.com/roelfdiedericks/agentloop/internal/logging"
	"github.com/roelfdiedericks/agentloop/internal/types"
	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens in a piece of text. Implementations must be
// deterministic for a given instance and input, and side-effect free.
// Counts are budgeting heuristics, not exact accounting - a stand-in
// encoding is used for backends whose true tokenizer is unavailable.
type Counter interface {
	Count(text string) int
}

// Estimator is the tiktoken-backed Counter used by all adapters.
type Estimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

// DefaultEncoding is cl100k_base, used by GPT-4 and close enough for
// Claude and Groq-hosted models for budgeting purposes.
const DefaultEncoding = "cl100k_base"

var (
	globalEstimator     *Estimator
	globalEstimatorOnce sync.Once
)

// Get returns the global token estimator (singleton)
func Get() *Estimator {
	globalEstimatorOnce.Do(func() {
		var err error
		globalEstimator, err = New()
		if err != nil {
			L_warn("tokens: failed to create estimator, using fallback", "error", err)
			globalEstimator = &Estimator{} // fallback to char-based estimation
		}
	})
	return globalEstimator
}

// New creates a new token estimator
func New() (*Estimator, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, err
	}
	return &Estimator{encoding: enc}, nil
}

// Count returns the token count for a string.
// Falls back to chars/4 if tiktoken is unavailable.
func (e *Estimator) Count(text string) int {
	if e == nil || e.encoding == nil {
		return len(text) / 4
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	toks := e.encoding.Encode(text, nil, nil)
	return len(toks)
}

// CountMessage counts the tokens of a canonical message using c.
// Blocks are summed independently: text blocks count their text, tool_use
// blocks count a stable serialized form, tool_result blocks count their
// string content directly or a serialized form when structured.
func CountMessage(c Counter, msg types.Message) int {
	if !msg.Content.IsBlocks() {
		return c.Count(msg.Content.Text)
	}

	total := 0
	for _, block := range msg.Content.Blocks {
		switch block.Type {
		case types.BlockText:
			total += c.Count(block.Text)
		case types.BlockToolUse:
			total += c.Count(serializeBlock(block))
		case types.BlockToolResult:
			if block.ResultBlocks == nil {
				total += c.Count(block.ResultText)
			} else {
				total += c.Count(serializeBlock(block))
			}
		default:
			total += c.Count(serializeBlock(block))
		}
	}
	return total
}

// serializeBlock renders a block to a stable string form for counting.
// json.Marshal over the wire shape is deterministic for a given block.
func serializeBlock(block types.ContentBlock) string {
	raw, err := json.Marshal(block)
	if err != nil {
		// Marshalling canonical blocks cannot realistically fail; fall
		// back to the text fields so the count stays non-zero.
		return block.Text + block.ResultText
	}
	return string(raw)
}
