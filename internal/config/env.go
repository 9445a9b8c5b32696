package config

import (
	"os"
	"strings"
)

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setString := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			if sources != nil {
				sources[field] = SourceEnv
			}
		}
	}
	setBool := func(env, field string, target *bool) {
		if v := os.Getenv(env); v != "" {
			*target = boolFromString(v)
			if sources != nil {
				sources[field] = SourceEnv
			}
		}
	}

	setString("TODO_DATA_DIR", "data_dir", &cfg.DataDir)
	setString("TODO_KEY", "storage_key", &cfg.StorageKey)
	setString("TODO_LOG_DIR", "log_dir", &cfg.LogDir)
	setBool("TODO_JOURNAL", "journal", &cfg.Journal)
	setString("TODO_FILTER", "default_filter", &cfg.DefaultFilter)
	setString("TODO_HOOK", "hook_command", &cfg.HookCommand)

	// Logging configuration
	setString("TODO_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("TODO_LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("TODO_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("TODO_LOG_CALLER", "log_caller", &cfg.LogCaller)
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
