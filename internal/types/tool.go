// Package types provides shared type definitions to avoid import cycles.
package types

// ToolParameters is the JSON-Schema-like parameter description of a tool.
// Required may be nil; adapters default it to an empty list on the wire.
type ToolParameters struct {
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

// ToolSpec describes one tool in the canonical format. Each provider
// adapter maps this to its backend's function-calling schema.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}
