// Package types contains the canonical conversation types shared across
// packages. Everything the context manager, providers, and chat logger
// exchange is expressed in these shapes; each provider adapter converts
// to and from its own wire format at the edge.
package types

import (
	"encoding/json"
	"fmt"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Content block types
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// ContentBlock is one typed unit of message content.
// Type selects which fields are meaningful:
//   - text:        Text
//   - tool_use:    Name, ID, Input
//   - tool_result: ToolUseID, ResultText or ResultBlocks, IsError
type ContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use. Input is carried as the backend's raw argument
	// representation - often still-serialized JSON.
	Name  string          `json:"name,omitempty"`
	ID    string          `json:"id,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result. Exactly one of ResultText / ResultBlocks is set.
	ToolUseID    string         `json:"tool_use_id,omitempty"`
	ResultText   string         `json:"-"`
	ResultBlocks []ContentBlock `json:"-"`
	IsError      bool           `json:"is_error,omitempty"`
}

// NewTextBlock creates a text content block
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// NewToolUseBlock creates a tool_use content block
func NewToolUseBlock(name, id string, input json.RawMessage) ContentBlock {
	return ContentBlock{Type: BlockToolUse, Name: name, ID: id, Input: input}
}

// NewToolResultBlock creates a tool_result block with plain string content
func NewToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, ResultText: content, IsError: isError}
}

// NewToolResultBlocks creates a tool_result block whose content is itself
// a block sequence (e.g. text plus an image reference from a tool)
func NewToolResultBlocks(toolUseID string, blocks []ContentBlock, isError bool) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, ResultBlocks: blocks, IsError: isError}
}

// blockWire is the JSON wire form of a ContentBlock. The tool_result
// content field is a union (string or block array), so marshalling goes
// through this intermediate.
type blockWire struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Name      string          `json:"name,omitempty"`
	ID        string          `json:"id,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// MarshalJSON emits the wire shape, keeping the type discriminator and
// encoding tool_result content as either a string or a block array.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	w := blockWire{
		Type:      b.Type,
		Text:      b.Text,
		Name:      b.Name,
		ID:        b.ID,
		Input:     b.Input,
		ToolUseID: b.ToolUseID,
		IsError:   b.IsError,
	}
	if b.Type == BlockToolResult {
		var content any
		if b.ResultBlocks != nil {
			content = b.ResultBlocks
		} else {
			content = b.ResultText
		}
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}
		w.Content = raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire shape, resolving the tool_result content
// union into ResultText or ResultBlocks.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var w blockWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = ContentBlock{
		Type:      w.Type,
		Text:      w.Text,
		Name:      w.Name,
		ID:        w.ID,
		Input:     w.Input,
		ToolUseID: w.ToolUseID,
		IsError:   w.IsError,
	}
	if w.Type == BlockToolResult && len(w.Content) > 0 {
		if w.Content[0] == '[' {
			return json.Unmarshal(w.Content, &b.ResultBlocks)
		}
		return json.Unmarshal(w.Content, &b.ResultText)
	}
	return nil
}

// Content is a message payload: either a plain string or an ordered
// sequence of content blocks. Blocks takes precedence when non-nil.
type Content struct {
	Text   string
	Blocks []ContentBlock
}

// TextContent creates a plain-string payload
func TextContent(text string) Content {
	return Content{Text: text}
}

// BlockContent creates a structured payload
func BlockContent(blocks ...ContentBlock) Content {
	return Content{Blocks: blocks}
}

// IsBlocks returns true if the payload is a block sequence
func (c Content) IsBlocks() bool {
	return c.Blocks != nil
}

// MarshalJSON emits a bare string or a block array
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Blocks != nil {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON accepts a bare string or a block array
func (c *Content) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty content payload")
	}
	if data[0] == '[' {
		c.Text = ""
		return json.Unmarshal(data, &c.Blocks)
	}
	c.Blocks = nil
	return json.Unmarshal(data, &c.Text)
}

// Message represents one provider-agnostic conversation turn.
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// UserMessage creates a plain-text user message
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: TextContent(text)}
}

// SystemMessage creates a plain-text system message
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: TextContent(text)}
}

// AssistantMessage creates an assistant message from content blocks
func AssistantMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleAssistant, Content: BlockContent(blocks...)}
}

// FirstText returns the first text block's content, or the plain-string
// payload for unstructured messages. Empty string if neither exists.
func (m Message) FirstText() string {
	if !m.Content.IsBlocks() {
		return m.Content.Text
	}
	for _, b := range m.Content.Blocks {
		if b.Type == BlockText {
			return b.Text
		}
	}
	return ""
}

// ToolUses returns all tool_use blocks in the message, in order
func (m Message) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, b := range m.Content.Blocks {
		if b.Type == BlockToolUse {
			uses = append(uses, b)
		}
	}
	return uses
}
