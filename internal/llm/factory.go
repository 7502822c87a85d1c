// Package llm - Provider factory
package llm

import "fmt"

// NewProvider creates a provider instance from config.
// Dispatches to the appropriate constructor based on cfg.Driver.
func NewProvider(name string, cfg ProviderConfig) (Provider, error) {
	switch cfg.Driver {
	case "openai":
		return NewOpenAIProvider(name, cfg)
	case "groq":
		return NewGroqProvider(name, cfg)
	case "anthropic":
		return NewAnthropicProvider(name, cfg)
	default:
		return nil, fmt.Errorf("unknown provider driver: %s", cfg.Driver)
	}
}
