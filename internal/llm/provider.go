// Package llm provides the unified provider contract and per-backend
// adapters translating canonical messages and tools to each backend's
// wire format and normalizing the reply.
package llm

import (
	"context"

	"github.com/roelfdiedericks/agentloop/internal/types"
)

// Provider is the unified interface for all LLM backends.
// Implementations: OpenAIProvider, GroqProvider, AnthropicProvider.
//
// Each adapter also exposes typed PrepareMessages / PrepareTools /
// ParseResponse methods in its backend's native types; CreateCompletion
// pipes through them. They stay off this interface because their
// signatures are backend-specific - callers that need them hold the
// concrete adapter.
type Provider interface {
	// Identity
	Name() string // Provider instance name (e.g., "openai", "groq-fast")
	Type() string // Provider type (e.g., "openai", "groq", "anthropic")

	// DefaultModel returns the backend-specific model used when a
	// completion call passes an empty model name.
	DefaultModel() string

	// TokenCount counts tokens with this adapter's own tokenizer.
	// Adapters are not required to share one tokenizer; counts are
	// self-consistent per adapter, not comparable across backends.
	TokenCount(text string) int

	// CreateCompletion sends one chat completion request and returns
	// the normalized assistant reply: a text block first (when the
	// backend reported text), then one tool_use block per reported
	// tool call in the backend's order. The call honors ctx
	// cancellation, never retries internally, and propagates backend
	// errors unchanged.
	CreateCompletion(ctx context.Context, messages []types.Message, tools []types.ToolSpec, model string, maxTokens int) (types.Message, error)
}

// DefaultMaxTokens is the response token limit used when a completion
// call passes zero.
const DefaultMaxTokens = 4096

// ErrNotSupported is returned when a provider doesn't support an operation
type ErrNotSupported struct {
	Provider  string
	Operation string
}

func (e ErrNotSupported) Error() string {
	return e.Provider + " does not support " + e.Operation
}

// ErrUnavailable is returned when a provider is not available
type ErrUnavailable struct {
	Provider string
	Reason   string
}

func (e ErrUnavailable) Error() string {
	if e.Reason != "" {
		return e.Provider + " is unavailable: " + e.Reason
	}
	return e.Provider + " is unavailable"
}

// ProviderConfig is the configuration for a single provider instance
type ProviderConfig struct {
	Driver         string `json:"driver"`         // "openai", "groq", "anthropic"
	APIKey         string `json:"apiKey"`         // Opaque credential passed to the backend client
	BaseURL        string `json:"baseURL"`        // For OpenAI-compatible endpoints
	Model          string `json:"model"`          // Default model override (empty = adapter default)
	MaxTokens      int    `json:"maxTokens"`      // Response token limit override
	TimeoutSeconds int    `json:"timeoutSeconds"` // Request timeout
}
