// Package llm provides LLM provider implementations.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	. "github.com/roelfdiedericks/agentloop/internal/logging"
	"github.com/roelfdiedericks/agentloop/internal/tokens"
	"github.com/roelfdiedericks/agentloop/internal/types"
)

const anthropicDefaultModel = "claude-sonnet-4-5"

// AnthropicProvider implements the Provider interface for Anthropic's
// Messages API. Unlike the chat-completions backends it keeps native
// content blocks on the wire instead of flattening tools to text, and
// carries system messages in the dedicated system field.
type AnthropicProvider struct {
	name      string
	client    *anthropic.Client
	model     string
	maxTokens int
	counter   tokens.Counter
}

// NewAnthropicProvider creates a new Anthropic provider from ProviderConfig.
// Supports custom BaseURL for Anthropic-compatible APIs.
func NewAnthropicProvider(name string, cfg ProviderConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}))
	}
	client := anthropic.NewClient(opts...)

	L_debug("anthropic provider created", "name", name, "baseURL", cfg.BaseURL, "model", cfg.Model, "maxTokens", cfg.MaxTokens)

	return &AnthropicProvider{
		name:      name,
		client:    &client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		counter:   tokens.Get(),
	}, nil
}

// Name returns the provider instance name
func (p *AnthropicProvider) Name() string {
	return p.name
}

// Type returns the provider type
func (p *AnthropicProvider) Type() string {
	return "anthropic"
}

// DefaultModel returns the configured model, or the backend default
func (p *AnthropicProvider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return anthropicDefaultModel
}

// TokenCount counts tokens using this adapter's tokenizer. cl100k_base
// stands in for Anthropic's tokenizer; counts are budgeting heuristics.
func (p *AnthropicProvider) TokenCount(text string) int {
	return p.counter.Count(text)
}

// PrepareMessages converts canonical messages to Anthropic's format.
// System messages are pulled out into the returned system prompt (the
// Messages API carries them separately); tool-role messages become user
// messages; multi-block content is flattened per FlattenContent.
func (p *AnthropicProvider) PrepareMessages(messages []types.Message) ([]anthropic.MessageParam, string) {
	var prepared []anthropic.MessageParam
	var system string

	for _, msg := range messages {
		text := FlattenContent(msg.Content)
		if text == "" {
			continue
		}

		switch msg.Role {
		case types.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += text
		case types.RoleAssistant:
			prepared = append(prepared, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			// user and tool roles both travel as user messages
			prepared = append(prepared, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}

	return prepared, system
}

// PrepareTools converts canonical tool specs to Anthropic's native tool
// schema (input_schema instead of the function-calling wrapper).
func (p *AnthropicProvider) PrepareTools(specs []types.ToolSpec) []anthropic.ToolUnionParam {
	prepared := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		prepared = append(prepared, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: spec.Parameters.Properties,
				},
			},
		})
	}
	return prepared
}

// ParseResponse normalizes an Anthropic message: one text block when the
// backend reported text, then one tool_use block per tool call in
// reported order. Tool input stays as raw JSON.
func (p *AnthropicProvider) ParseResponse(msg *anthropic.Message) (types.Message, error) {
	if msg == nil {
		return types.Message{}, fmt.Errorf("anthropic response is empty")
	}

	var text string
	var toolUses []types.ContentBlock
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "tool_use":
			toolUses = append(toolUses, types.NewToolUseBlock(block.Name, block.ID, block.Input))
		}
	}

	var blocks []types.ContentBlock
	if text != "" {
		blocks = append(blocks, types.NewTextBlock(text))
	}
	blocks = append(blocks, toolUses...)

	return types.AssistantMessage(blocks...), nil
}

// CreateCompletion sends one Messages API request. Backend errors
// propagate unchanged; no internal retry.
func (p *AnthropicProvider) CreateCompletion(ctx context.Context, messages []types.Message, tools []types.ToolSpec, model string, maxTokens int) (types.Message, error) {
	if model == "" {
		model = p.DefaultModel()
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	prepared, system := p.PrepareMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  prepared,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(tools) > 0 {
		params.Tools = p.PrepareTools(tools)
	}

	start := time.Now()
	L_info("llm: request started", "provider", p.name, "model", model, "messages", len(prepared), "tools", len(tools))

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		L_error("llm: request failed", "provider", p.name, "error", err)
		return types.Message{}, fmt.Errorf("anthropic completion: %w", err)
	}

	reply, err := p.ParseResponse(resp)
	if err != nil {
		return types.Message{}, err
	}

	L_info("llm: request completed",
		"provider", p.name,
		"duration", time.Since(start).Round(time.Millisecond),
		"inputTokens", resp.Usage.InputTokens,
		"outputTokens", resp.Usage.OutputTokens,
		"stopReason", string(resp.StopReason))
	return reply, nil
}
