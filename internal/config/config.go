package config

import (
	"fmt"
	"time"

	"aircher/internal/policy"
	"aircher/internal/router"
)

// Config represents the main application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Agent    AgentConfig    `yaml:"agent"`
	Approval ApprovalConfig `yaml:"approval"`
	Research ResearchConfig `yaml:"research"`
	Router   RouterConfig   `yaml:"router"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watcher  WatcherConfig  `yaml:"watcher"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds API-related settings.
type APIConfig struct {
	GeminiKey string `yaml:"gemini_key,omitempty"`
}

// AgentConfig controls the conversation loop.
type AgentConfig struct {
	MaxTurns        int           `yaml:"max_turns"`
	ToolTimeout     time.Duration `yaml:"tool_timeout"`
	MaxOutputTokens int32         `yaml:"max_output_tokens"`
	Temperature     float32       `yaml:"temperature"`
	StartMode       string        `yaml:"start_mode"`
}

// ApprovalConfig controls the safety policy.
type ApprovalConfig struct {
	Mode    string        `yaml:"mode"`
	Timeout time.Duration `yaml:"timeout"`
}

// ResearchConfig controls the research scheduler.
type ResearchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// RouterConfig controls model selection.
type RouterConfig struct {
	// Models maps "<agent>/<complexity>" to a model, overriding the
	// built-in table (e.g. "orchestrator/high").
	Models  map[string]router.ModelConfig `yaml:"models,omitempty"`
	Default *router.ModelConfig           `yaml:"default,omitempty"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

// WatcherConfig controls the workspace file watcher.
type WatcherConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
	MaxWatches int  `yaml:"max_watches"`
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Approval.Mode != "" && !policy.ApprovalMode(c.Approval.Mode).Valid() {
		return fmt.Errorf("unknown approval mode: %q", c.Approval.Mode)
	}
	switch c.Agent.StartMode {
	case "", "plan", "build":
	default:
		return fmt.Errorf("unknown start mode: %q", c.Agent.StartMode)
	}
	if c.Agent.MaxTurns < 0 {
		return fmt.Errorf("agent.max_turns must not be negative")
	}
	if c.Research.MaxConcurrent < 0 {
		return fmt.Errorf("research.max_concurrent must not be negative")
	}
	return nil
}
