// Package config handles configuration loading and defaults.
package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultDataDir    = ".todo"
	DefaultStorageKey = "todos"
	DefaultLogDir     = "~/.todo/logs"
	DefaultFilter     = "all"
	DefaultJournal    = true
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Config holds the full configuration for todo.
type Config struct {
	// Storage
	DataDir    string `toml:"data_dir"`
	StorageKey string `toml:"storage_key"`
	Memory     bool   `toml:"-"` // keep tasks in memory only (flag only)

	// Journal of store changes
	LogDir  string `toml:"log_dir"`
	Journal bool   `toml:"journal"`

	// View
	DefaultFilter string `toml:"default_filter"`

	// Command run after every saved change
	HookCommand string `toml:"hook_command"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return []string{
		"data_dir",
		"storage_key",
		"log_dir",
		"journal",
		"default_filter",
		"hook_command",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Value returns the printable value of a config field.
func (c *Config) Value(field string) string {
	switch field {
	case "data_dir":
		return c.DataDir
	case "storage_key":
		return c.StorageKey
	case "log_dir":
		return c.LogDir
	case "journal":
		return boolString(c.Journal)
	case "default_filter":
		return c.DefaultFilter
	case "hook_command":
		return c.HookCommand
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return boolString(c.LogTimestamps)
	case "log_caller":
		return boolString(c.LogCaller)
	}
	return ""
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
