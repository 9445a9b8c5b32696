package config

import "flag"

// flagFields maps flag names to source field names.
var flagFields = map[string]string{
	"data-dir":       "data_dir",
	"key":            "storage_key",
	"log-dir":        "log_dir",
	"journal":        "journal",
	"filter":         "default_filter",
	"hook":           "hook_command",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines and parses the global CLI flags. Defaults are the
// values loaded so far, so unset flags leave them untouched.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the task list")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key for the task list")
	fs.BoolVar(&cfg.Memory, "memory", cfg.Memory, "Keep tasks in memory only (nothing is saved)")

	// Journal
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Journal directory")
	fs.BoolVar(&cfg.Journal, "journal", cfg.Journal, "Record store changes to the session journal")

	// View
	fs.StringVar(&cfg.DefaultFilter, "filter", cfg.DefaultFilter, "Default filter (all, active, completed)")

	// Hook
	fs.StringVar(&cfg.HookCommand, "hook", cfg.HookCommand, "Command to run after every saved change")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagFields[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
