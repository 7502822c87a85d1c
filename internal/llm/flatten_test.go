package llm

import (
	"strings"
	"testing"

	"github.com/roelfdiedericks/agentloop/internal/types"
)

func TestFlattenPlainText(t *testing.T) {
	got := FlattenContent(types.TextContent("hello world"))
	if got != "hello world" {
		t.Errorf("flatten = %q, want %q", got, "hello world")
	}
}

func TestFlattenTextBlocksVerbatim(t *testing.T) {
	content := types.BlockContent(
		types.NewTextBlock("first"),
		types.NewTextBlock("second"),
	)
	got := FlattenContent(content)
	if got != "first\nsecond" {
		t.Errorf("flatten = %q, want %q", got, "first\nsecond")
	}
}

func TestFlattenToolResultGetsPrefix(t *testing.T) {
	content := types.BlockContent(
		types.NewToolResultBlock("t1", "42 files", false),
	)
	got := FlattenContent(content)
	if got != "Tool result: 42 files" {
		t.Errorf("flatten = %q, want %q", got, "Tool result: 42 files")
	}
}

func TestFlattenNestedToolResultBlocks(t *testing.T) {
	content := types.BlockContent(
		types.NewToolResultBlocks("t1", []types.ContentBlock{
			types.NewTextBlock("line one"),
			types.NewTextBlock("line two"),
		}, false),
	)
	got := FlattenContent(content)
	want := "Tool result: line one\nTool result: line two"
	if got != want {
		t.Errorf("flatten = %q, want %q", got, want)
	}
}

func TestFlattenToolUseKeepsTranscript(t *testing.T) {
	content := types.BlockContent(
		types.NewTextBlock("Let me check."),
		types.NewToolUseBlock("search", "t1", []byte(`{"q":"go"}`)),
	)
	got := FlattenContent(content)
	if !strings.Contains(got, "[Called tool: search]") {
		t.Errorf("flatten dropped the tool call: %q", got)
	}
	if !strings.Contains(got, `{"q":"go"}`) {
		t.Errorf("flatten dropped the tool input: %q", got)
	}
}

func TestFunctionParametersDefaults(t *testing.T) {
	params := FunctionParameters(types.ToolParameters{
		Properties: map[string]any{
			"q": map[string]any{"type": "string"},
		},
	})

	if params["type"] != "object" {
		t.Errorf("type = %v, want object", params["type"])
	}

	required, ok := params["required"].([]string)
	if !ok {
		t.Fatalf("required is %T, want []string", params["required"])
	}
	if required == nil || len(required) != 0 {
		t.Errorf("required = %v, want empty non-nil list", required)
	}
}

func TestFunctionParametersEmptySpec(t *testing.T) {
	params := FunctionParameters(types.ToolParameters{})

	props, ok := params["properties"].(map[string]any)
	if !ok || props == nil {
		t.Fatalf("properties = %v, want empty map", params["properties"])
	}
}
