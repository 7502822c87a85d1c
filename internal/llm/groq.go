// Package llm provides LLM provider implementations.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	. "github.com/roelfdiedericks/agentloop/internal/logging"
	"github.com/roelfdiedericks/agentloop/internal/tokens"
	"github.com/roelfdiedericks/agentloop/internal/types"
	openai "github.com/sashabaranov/go-openai"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint
const groqBaseURL = "https://api.groq.com/openai/v1"

const groqDefaultModel = "mixtral-8x7b-32768"

// GroqProvider implements the Provider interface for Groq's
// OpenAI-compatible API. Shares the chat-completions wire conversion
// with OpenAIProvider but owns its own tokenizer instance - the
// cl100k_base encoding is a stand-in for the hosted models' true
// tokenizers, so counts are budgeting heuristics only.
type GroqProvider struct {
	name      string
	client    *openai.Client
	model     string
	maxTokens int
	counter   tokens.Counter
}

// NewGroqProvider creates a new Groq provider from ProviderConfig.
func NewGroqProvider(name string, cfg ProviderConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key not configured")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = groqBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.TimeoutSeconds > 0 {
		config.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}

	L_debug("groq provider created", "name", name, "baseURL", config.BaseURL, "model", cfg.Model, "maxTokens", cfg.MaxTokens)

	return &GroqProvider{
		name:      name,
		client:    openai.NewClientWithConfig(config),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		counter:   tokens.Get(),
	}, nil
}

// Name returns the provider instance name
func (p *GroqProvider) Name() string {
	return p.name
}

// Type returns the provider type
func (p *GroqProvider) Type() string {
	return "groq"
}

// DefaultModel returns the configured model, or the backend default
func (p *GroqProvider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return groqDefaultModel
}

// TokenCount counts tokens using this adapter's tokenizer
func (p *GroqProvider) TokenCount(text string) int {
	return p.counter.Count(text)
}

// PrepareMessages converts canonical messages to the chat completions
// wire format (Groq is OpenAI-compatible).
func (p *GroqProvider) PrepareMessages(messages []types.Message) []openai.ChatCompletionMessage {
	return chatMessages(messages)
}

// PrepareTools converts canonical tool specs to the function-calling schema.
func (p *GroqProvider) PrepareTools(specs []types.ToolSpec) []openai.Tool {
	return chatTools(specs)
}

// ParseResponse normalizes a chat completion response to canonical form.
func (p *GroqProvider) ParseResponse(resp openai.ChatCompletionResponse) (types.Message, error) {
	return parseChatResponse(resp)
}

// CreateCompletion sends one chat completion request. Backend errors
// propagate unchanged; no internal retry.
func (p *GroqProvider) CreateCompletion(ctx context.Context, messages []types.Message, tools []types.ToolSpec, model string, maxTokens int) (types.Message, error) {
	return chatCompletion(ctx, p.client, p, messages, tools, model, maxTokens)
}
