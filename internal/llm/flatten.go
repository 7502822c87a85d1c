// Package llm - shared normalization helpers used by every adapter.
package llm

import (
	"fmt"
	"strings"

	. "github.com/roelfdiedericks/agentloop/internal/logging"
	"github.com/roelfdiedericks/agentloop/internal/types"
)

// toolResultPrefix is prepended to flattened tool_result blocks so
// text-only backends can still tell results apart from user prose.
const toolResultPrefix = "Tool result: "

// FlattenContent renders a canonical payload to a single string for
// backends that accept plain-text message content.
//
// Policy: text blocks contribute their text verbatim; tool_result blocks
// contribute toolResultPrefix plus the result text, recursing one level
// when the result content is itself a block sequence; tool_use blocks in
// outgoing history are serialized as "[Called tool: name]\nInput: ..."
// rather than dropped, so text-only backends keep a lossless transcript.
// Blocks are joined with newlines in original order.
func FlattenContent(content types.Content) string {
	if !content.IsBlocks() {
		return content.Text
	}

	var parts []string
	for _, block := range content.Blocks {
		switch block.Type {
		case types.BlockText:
			parts = append(parts, block.Text)

		case types.BlockToolUse:
			parts = append(parts, fmt.Sprintf("[Called tool: %s]\nInput: %s", block.Name, string(block.Input)))

		case types.BlockToolResult:
			if block.ResultBlocks == nil {
				parts = append(parts, toolResultPrefix+block.ResultText)
				continue
			}
			for _, inner := range block.ResultBlocks {
				if inner.Type == types.BlockText {
					parts = append(parts, toolResultPrefix+inner.Text)
				}
			}

		default:
			L_trace("llm: skipping unknown block type in flatten", "type", block.Type)
		}
	}

	return strings.Join(parts, "\n")
}

// FunctionParameters builds the OpenAI-style function-calling parameter
// object shared by every currently supported backend schema:
// {type: "object", properties, required}. Required defaults to an empty
// list when the tool spec leaves it out - several backends reject a
// missing required field.
func FunctionParameters(params types.ToolParameters) map[string]any {
	required := params.Required
	if required == nil {
		required = []string{}
	}
	properties := params.Properties
	if properties == nil {
		properties = map[string]any{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
