package config

import "time"

// Default configuration values.
const (
	DefaultMaxTurns          = 25
	DefaultToolTimeout       = 120 * time.Second
	DefaultMaxOutputTokens   = 8192
	DefaultTemperature       = 0.2
	DefaultPermissionTimeout = 60 * time.Second
	DefaultMaxConcurrent     = 3
	DefaultDebounceMs        = 500
	DefaultMaxWatches        = 1000
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			MaxTurns:        DefaultMaxTurns,
			ToolTimeout:     DefaultToolTimeout,
			MaxOutputTokens: DefaultMaxOutputTokens,
			Temperature:     DefaultTemperature,
			StartMode:       "plan",
		},
		Approval: ApprovalConfig{
			Mode:    "smart",
			Timeout: DefaultPermissionTimeout,
		},
		Research: ResearchConfig{
			MaxConcurrent: DefaultMaxConcurrent,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Enabled: false,
		},
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMs: DefaultDebounceMs,
			MaxWatches: DefaultMaxWatches,
		},
	}
}
