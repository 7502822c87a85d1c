// Package llm provides LLM provider implementations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	. "github.com/roelfdiedericks/agentloop/internal/logging"
	"github.com/roelfdiedericks/agentloop/internal/tokens"
	"github.com/roelfdiedericks/agentloop/internal/types"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI and
// OpenAI-compatible chat completion APIs (custom endpoints via BaseURL).
type OpenAIProvider struct {
	name      string
	client    *openai.Client
	model     string
	maxTokens int
	counter   tokens.Counter
}

const openAIDefaultModel = "gpt-4-turbo-preview"

// NewOpenAIProvider creates a new OpenAI provider from ProviderConfig.
func NewOpenAIProvider(name string, cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		// OpenAI-compatible APIs expect the /v1 suffix
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") && !strings.HasSuffix(baseURL, "/v1/") {
			baseURL = strings.TrimSuffix(baseURL, "/") + "/v1"
		}
		config.BaseURL = baseURL
	}
	if cfg.TimeoutSeconds > 0 {
		config.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}

	L_debug("openai provider created", "name", name, "baseURL", cfg.BaseURL, "model", cfg.Model, "maxTokens", cfg.MaxTokens)

	return &OpenAIProvider{
		name:      name,
		client:    openai.NewClientWithConfig(config),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		counter:   tokens.Get(),
	}, nil
}

// Name returns the provider instance name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Type returns the provider type
func (p *OpenAIProvider) Type() string {
	return "openai"
}

// DefaultModel returns the configured model, or the backend default
func (p *OpenAIProvider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return openAIDefaultModel
}

// TokenCount counts tokens using this adapter's tokenizer
func (p *OpenAIProvider) TokenCount(text string) int {
	return p.counter.Count(text)
}

// PrepareMessages converts canonical messages to the chat completions
// wire format, flattening multi-block content per FlattenContent. Role
// passes through unchanged.
func (p *OpenAIProvider) PrepareMessages(messages []types.Message) []openai.ChatCompletionMessage {
	return chatMessages(messages)
}

// PrepareTools converts canonical tool specs to the function-calling
// schema, defaulting required to an empty list.
func (p *OpenAIProvider) PrepareTools(specs []types.ToolSpec) []openai.Tool {
	return chatTools(specs)
}

// ParseResponse normalizes a chat completion response: assistant role,
// one text block when content is present, then one tool_use block per
// tool call in reported order.
func (p *OpenAIProvider) ParseResponse(resp openai.ChatCompletionResponse) (types.Message, error) {
	return parseChatResponse(resp)
}

// CreateCompletion sends one chat completion request. Backend errors
// propagate unchanged; no internal retry.
func (p *OpenAIProvider) CreateCompletion(ctx context.Context, messages []types.Message, tools []types.ToolSpec, model string, maxTokens int) (types.Message, error) {
	return chatCompletion(ctx, p.client, p, messages, tools, model, maxTokens)
}

// chatCompletion is the request path shared by all chat-completions
// backends (OpenAI, Groq). Defaults model and maxTokens from the
// adapter, issues one request, and parses the reply.
func chatCompletion(ctx context.Context, client *openai.Client, p Provider, messages []types.Message, tools []types.ToolSpec, model string, maxTokens int) (types.Message, error) {
	if model == "" {
		model = p.DefaultModel()
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  chatMessages(messages),
		MaxTokens: maxTokens,
	}
	if len(tools) > 0 {
		req.Tools = chatTools(tools)
	}

	start := time.Now()
	L_info("llm: request started", "provider", p.Name(), "model", model, "messages", len(messages), "tools", len(tools))

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		L_error("llm: request failed", "provider", p.Name(), "error", err)
		return types.Message{}, fmt.Errorf("%s completion: %w", p.Type(), err)
	}

	reply, err := parseChatResponse(resp)
	if err != nil {
		return types.Message{}, err
	}

	L_info("llm: request completed",
		"provider", p.Name(),
		"duration", time.Since(start).Round(time.Millisecond),
		"inputTokens", resp.Usage.PromptTokens,
		"outputTokens", resp.Usage.CompletionTokens,
		"toolCalls", len(reply.ToolUses()))
	return reply, nil
}

// chatMessages flattens canonical messages for the chat completions API
func chatMessages(messages []types.Message) []openai.ChatCompletionMessage {
	prepared := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		prepared = append(prepared, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: FlattenContent(msg.Content),
		})
	}
	return prepared
}

// chatTools wraps canonical tool specs in the function-calling schema
func chatTools(specs []types.ToolSpec) []openai.Tool {
	prepared := make([]openai.Tool, 0, len(specs))
	for _, spec := range specs {
		prepared = append(prepared, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  FunctionParameters(spec.Parameters),
			},
		})
	}
	return prepared
}

// parseChatResponse converts a chat completion response to canonical
// form. Tool call arguments stay as the backend's raw JSON string -
// downstream consumers parse them.
func parseChatResponse(resp openai.ChatCompletionResponse) (types.Message, error) {
	if len(resp.Choices) == 0 {
		return types.Message{}, fmt.Errorf("completion response has no choices")
	}

	choice := resp.Choices[0].Message

	var blocks []types.ContentBlock
	if choice.Content != "" {
		blocks = append(blocks, types.NewTextBlock(choice.Content))
	}
	for _, call := range choice.ToolCalls {
		blocks = append(blocks, types.NewToolUseBlock(call.Function.Name, call.ID, json.RawMessage(call.Function.Arguments)))
	}

	return types.AssistantMessage(blocks...), nil
}
