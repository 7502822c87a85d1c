// Package config loads the agentloop configuration from
// ~/.agentloop/agentloop.json, merging file values over built-in
// defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/roelfdiedericks/agentloop/internal/llm"
)

// Config represents the merged agentloop configuration
type Config struct {
	Context  ContextConfig                 `json:"context"`
	ChatLog  ChatLogConfig                 `json:"chatlog"`
	Logging  LoggingConfig                 `json:"logging"`
	LLM      LLMConfig                     `json:"llm"`
	Provider map[string]llm.ProviderConfig `json:"providers"`
}

type ContextConfig struct {
	MaxTokens int `json:"maxTokens"`
}

type ChatLogConfig struct {
	Dir     string `json:"dir"`
	IndexDB string `json:"indexDb"` // empty disables the sqlite index
}

type LoggingConfig struct {
	Level      string `json:"level"`
	ShowCaller bool   `json:"showCaller"`
}

// LLMConfig selects which configured provider handles completions
type LLMConfig struct {
	Provider string `json:"provider"`
}

// defaults returns the built-in configuration
func defaults() Config {
	return Config{
		Context: ContextConfig{
			MaxTokens: 100000,
		},
		ChatLog: ChatLogConfig{
			Dir: "~/.agentloop/logs",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		LLM: LLMConfig{
			Provider: "anthropic",
		},
		Provider: map[string]llm.ProviderConfig{
			"anthropic": {Driver: "anthropic"},
			"openai":    {Driver: "openai"},
			"groq":      {Driver: "groq"},
		},
	}
}

// Path returns the config file location
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".agentloop", "agentloop.json")
}

// Load reads agentloop.json and merges it over the defaults. A missing
// file is not an error; a malformed one is.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile loads configuration from a specific path
func LoadFile(path string) (*Config, error) {
	var cfg Config

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	// fill unset fields from the defaults
	def := defaults()
	if err := mergo.Merge(&cfg, def); err != nil {
		return nil, fmt.Errorf("config: merge defaults: %w", err)
	}

	// env var keys take precedence over file keys
	applyEnv(&cfg)

	return &cfg, nil
}

// applyEnv overlays API keys from the conventional environment variables
func applyEnv(cfg *Config) {
	for name, envKey := range map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
		"groq":      "GROQ_API_KEY",
	} {
		if val := os.Getenv(envKey); val != "" {
			p, ok := cfg.Provider[name]
			if !ok {
				continue
			}
			p.APIKey = val
			cfg.Provider[name] = p
		}
	}
}
