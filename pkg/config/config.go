package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config defines the business-level application configuration.
// It maps directly to config.json and describes who the agent is,
// which model it talks to and which chat surfaces it is exposed on.
type Config struct {
	// Agent holds the identity and loop parameters of the agent.
	Agent AgentConfig `json:"agent"`
	// Prompts overrides the built-in prompt templates. Empty fields keep the defaults.
	Prompts PromptConfig `json:"prompts"`
	// Channels contains a map of channel identifiers (e.g., "telegram", "web")
	// to their specific configuration payloads in raw JSON format.
	Channels map[string]jsoniter.RawMessage `json:"channels"`
}

// AgentConfig describes a single agent as it is exposed to users.
type AgentConfig struct {
	// Name and Description are rendered into the identity part of the system prompt.
	Name        string `json:"name"`
	Description string `json:"description"`
	// CustomPrompt is appended to the identity. Empty uses the default instruction.
	CustomPrompt string `json:"custom_prompt,omitempty"`
	// Model is either a known model id ("gpt-5-mini") or "provider/model".
	Model string `json:"model,omitempty"`
	// MaxIterations bounds the ordinary model calls of one run.
	MaxIterations int `json:"max_iterations,omitempty"`
	// MaxTokens caps the length of every model response.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Demo surfaces every tool dispatch and its outcome to the monitor.
	Demo bool `json:"demo,omitempty"`
	// Tools lists the enabled tool names. Empty enables every built-in tool.
	Tools []string `json:"tools,omitempty"`
}

// PromptConfig carries optional template overrides.
// Templates use {agent_name}, {agent_description}, {custom_prompt}
// and {tool_descriptions} placeholders.
type PromptConfig struct {
	Identity         string `json:"identity,omitempty"`
	ToolInstructions string `json:"tool_instructions,omitempty"`
	FinalAnswer      string `json:"final_answer,omitempty"`
	CustomDefault    string `json:"custom_default,omitempty"`
}

// Validate ensures the configuration structure contains all mandatory fields.
func (c *Config) Validate() error {
	if c.Agent.Name == "" {
		return fmt.Errorf("mandatory 'agent.name' is missing")
	}
	if c.Agent.Description == "" {
		return fmt.Errorf("mandatory 'agent.description' is missing")
	}
	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("'agent.max_iterations' must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.MaxTokens < 0 {
		return fmt.Errorf("'agent.max_tokens' must be positive, got %d", c.Agent.MaxTokens)
	}
	return nil
}

// StorageConfig selects where session histories are persisted.
type StorageConfig struct {
	// Type is "file" (default), "postgres" or "memory".
	Type string `json:"type"`
	// Dir is the directory used by the file store.
	Dir string `json:"dir,omitempty"`
	// DSN is the connection string used by the postgres store.
	DSN string `json:"dsn,omitempty"`
}

// SystemConfig defines engine-level technical parameters.
// These settings are usually stored in system.json and control the
// reliability and technical behavior of the agent runtime.
type SystemConfig struct {
	// MaxRetries is the number of times a caller re-runs the agent after a
	// transient backend error before giving up.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the duration to wait (in milliseconds) between
	// consecutive retry attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
	// LLMTimeoutMs is the hard cutoff time (in milliseconds) for a whole
	// agent run started from a chat surface.
	LLMTimeoutMs int `json:"llm_timeout_ms"`
	// OllamaDefaultURL is the fallback endpoint used when connecting
	// to a local Ollama instance if no host is provided.
	OllamaDefaultURL string `json:"ollama_default_url"`
	// TelegramMessageLimit is the maximum character count for a single
	// Telegram message. Longer responses will be split into multiple chunks.
	TelegramMessageLimit int `json:"telegram_message_limit"`
	// DebugChunks enables saving every raw LLM request and response to the
	// debug folder for inspection and troubleshooting purposes.
	DebugChunks bool `json:"debug_chunks"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
	// EnableTools globally toggles tool calling. If false, the agent is
	// built with an empty registry and never sees tool instructions.
	EnableTools bool `json:"enable_tools"`
	// Storage selects the session history backend.
	Storage StorageConfig `json:"storage"`
}

// DefaultSystemConfig returns a SystemConfig pointer initialized with hardcoded
// safe default values. This is used as a fallback when the system.json file
// is missing or corrupt, ensuring the engine can always start.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxRetries:           3,
		RetryDelayMs:         500,
		LLMTimeoutMs:         600000,
		OllamaDefaultURL:     "http://localhost:11434",
		TelegramMessageLimit: 4000,
		LogLevel:             "info",
		EnableTools:          true,
		Storage: StorageConfig{
			Type: "file",
			Dir:  "data/sessions",
		},
	}
}

// Load reads config.json and system.json.
// The app config is mandatory; the system config falls back to defaults.
func Load(appPath, sysPath string) (*Config, *SystemConfig, error) {
	cfg, err := LoadAppConfig(appPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, LoadSystemConfig(sysPath), nil
}

// LoadAppConfig reads and validates the application config at path.
func LoadAppConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found. please create one", path)
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg // File not found, use defaults
	}

	if err := json.Unmarshal(file, cfg); err != nil {
		return DefaultSystemConfig() // Parse failed, use defaults
	}

	return cfg
}
