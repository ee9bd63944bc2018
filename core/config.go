package core

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// defaultSystemPrompt primes new sessions with the assistant's persona.
const defaultSystemPrompt = "You are a helpful AI assistant. Be concise, friendly, and provide accurate information."

// Config holds gateway configuration loaded from .parley.yaml and the
// environment. It is read once at process start; there is no hot-reload.
type Config struct {
	Server   ServerSettings   `yaml:"server"`
	Provider ProviderSettings `yaml:"provider"`
	Chat     ChatSettings     `yaml:"chat"`
}

// ServerSettings controls the HTTP listener.
type ServerSettings struct {
	Addr string `yaml:"addr"`
}

// ProviderSettings controls the upstream model provider client.
type ProviderSettings struct {
	Model      string `yaml:"model"`       // chat model name (default: gpt-4o)
	BaseURL    string `yaml:"base_url"`    // custom OpenAI-compatible API base URL
	APIKeyEnv  string `yaml:"api_key_env"` // env var name to read the API key from (default: OPENAI_API_KEY)
	MaxRetries int    `yaml:"max_retries"` // transport-level retries for transient failures (default: 4)
	Timeout    string `yaml:"timeout"`     // per-request timeout (e.g., "2m", "30s")
}

// ChatSettings controls completion sampling and the session persona.
type ChatSettings struct {
	SystemPrompt     string  `yaml:"system_prompt"`
	Temperature      float64 `yaml:"temperature"`
	TopP             float64 `yaml:"top_p"`
	PresencePenalty  float64 `yaml:"presence_penalty"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
}

// DefaultConfig returns the gateway defaults: a balanced conversational
// sampling profile and the stock assistant persona.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{Addr: ":8000"},
		Provider: ProviderSettings{
			Model:      "gpt-4o",
			APIKeyEnv:  "OPENAI_API_KEY",
			MaxRetries: 4,
			Timeout:    "2m",
		},
		Chat: ChatSettings{
			SystemPrompt: defaultSystemPrompt,
			Temperature:  0.5,
			TopP:         0.5,
		},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Server.Addr != "" {
		c.Server.Addr = source.Server.Addr
	}
	if source.Provider.Model != "" {
		c.Provider.Model = source.Provider.Model
	}
	if source.Provider.BaseURL != "" {
		c.Provider.BaseURL = source.Provider.BaseURL
	}
	if source.Provider.APIKeyEnv != "" {
		c.Provider.APIKeyEnv = source.Provider.APIKeyEnv
	}
	if source.Provider.MaxRetries > 0 {
		c.Provider.MaxRetries = source.Provider.MaxRetries
	}
	if source.Provider.Timeout != "" {
		c.Provider.Timeout = source.Provider.Timeout
	}
	if source.Chat.SystemPrompt != "" {
		c.Chat.SystemPrompt = source.Chat.SystemPrompt
	}
	if source.Chat.Temperature > 0 {
		c.Chat.Temperature = source.Chat.Temperature
	}
	if source.Chat.TopP > 0 {
		c.Chat.TopP = source.Chat.TopP
	}
	if source.Chat.PresencePenalty != 0 {
		c.Chat.PresencePenalty = source.Chat.PresencePenalty
	}
	if source.Chat.FrequencyPenalty != 0 {
		c.Chat.FrequencyPenalty = source.Chat.FrequencyPenalty
	}
}

// LoadConfig reads the YAML config at path, merges it over the defaults,
// and finally applies environment overrides. A missing file is not an
// error; the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else {
		var loaded Config
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.Merge(&loaded)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides config values from the process environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("PARLEY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PARLEY_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("PARLEY_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Provider.MaxRetries = n
		}
	}
	if v := os.Getenv("PARLEY_SYSTEM_PROMPT"); v != "" {
		c.Chat.SystemPrompt = v
	}
}
