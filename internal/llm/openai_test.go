package llm

import (
	"testing"

	"github.com/roelfdiedericks/agentloop/internal/types"
	openai "github.com/sashabaranov/go-openai"
)

func TestParseChatResponseTextOnly(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "hello"}},
		},
	}

	msg, err := parseChatResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Role != types.RoleAssistant {
		t.Errorf("role = %q, want assistant", msg.Role)
	}
	blocks := msg.Content.Blocks
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Type != types.BlockText || blocks[0].Text != "hello" {
		t.Errorf("unexpected block: %+v", blocks[0])
	}
}

func TestParseChatResponseTextThenToolCalls(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role:    "assistant",
				Content: "checking",
				ToolCalls: []openai.ToolCall{
					{
						ID:   "call_1",
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      "search",
							Arguments: `{"q":"go"}`,
						},
					},
					{
						ID:   "call_2",
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      "read_file",
							Arguments: `{"path":"main.go"}`,
						},
					},
				},
			}},
		},
	}

	msg, err := parseChatResponse(resp)
	if err != nil {
		t.Fatal(err)
	}

	blocks := msg.Content.Blocks
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[0].Type != types.BlockText {
		t.Errorf("first block is %q, want text", blocks[0].Type)
	}
	if blocks[1].Name != "search" || blocks[1].ID != "call_1" {
		t.Errorf("unexpected first tool use: %+v", blocks[1])
	}
	if blocks[2].Name != "read_file" || blocks[2].ID != "call_2" {
		t.Errorf("tool call order not preserved: %+v", blocks[2])
	}
	if string(blocks[1].Input) != `{"q":"go"}` {
		t.Errorf("tool input = %s, want raw arguments", blocks[1].Input)
	}
}

func TestParseChatResponseNoChoices(t *testing.T) {
	if _, err := parseChatResponse(openai.ChatCompletionResponse{}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestChatMessagesPassRolesThrough(t *testing.T) {
	msgs := chatMessages([]types.Message{
		types.SystemMessage("rules"),
		types.UserMessage("hi"),
		{Role: types.RoleTool, Content: types.BlockContent(types.NewToolResultBlock("t1", "done", false))},
	})

	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[1].Role != "user" || msgs[2].Role != "tool" {
		t.Errorf("roles altered: %s/%s/%s", msgs[0].Role, msgs[1].Role, msgs[2].Role)
	}
	if msgs[2].Content != "Tool result: done" {
		t.Errorf("tool result content = %q", msgs[2].Content)
	}
}

func TestChatToolsSchema(t *testing.T) {
	prepared := chatTools([]types.ToolSpec{
		{
			Name:        "search",
			Description: "Search the index",
			Parameters: types.ToolParameters{
				Properties: map[string]any{"q": map[string]any{"type": "string"}},
				Required:   []string{"q"},
			},
		},
	})

	if len(prepared) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(prepared))
	}
	tool := prepared[0]
	if tool.Type != openai.ToolTypeFunction {
		t.Errorf("tool type = %v, want function", tool.Type)
	}
	if tool.Function.Name != "search" {
		t.Errorf("function name = %q", tool.Function.Name)
	}
	params, ok := tool.Function.Parameters.(map[string]any)
	if !ok {
		t.Fatalf("parameters is %T", tool.Function.Parameters)
	}
	if params["type"] != "object" {
		t.Errorf("parameters type = %v", params["type"])
	}
}

func TestOpenAIRequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider("openai", ProviderConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestOpenAIDefaultModel(t *testing.T) {
	p, err := NewOpenAIProvider("openai", ProviderConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}
	if p.DefaultModel() != "gpt-4-turbo-preview" {
		t.Errorf("default model = %q", p.DefaultModel())
	}

	custom, err := NewOpenAIProvider("openai", ProviderConfig{APIKey: "test-key", Model: "gpt-4o"})
	if err != nil {
		t.Fatal(err)
	}
	if custom.DefaultModel() != "gpt-4o" {
		t.Errorf("configured model not honored: %q", custom.DefaultModel())
	}
}

func TestGroqDefaults(t *testing.T) {
	if _, err := NewGroqProvider("groq", ProviderConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}

	p, err := NewGroqProvider("groq", ProviderConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Type() != "groq" {
		t.Errorf("type = %q", p.Type())
	}
	if p.DefaultModel() != "mixtral-8x7b-32768" {
		t.Errorf("default model = %q", p.DefaultModel())
	}
}
