package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo configuration file
# Values can be overridden by TODO_* environment variables or CLI flags

# Directory holding the task list (relative to the project root)
data_dir = ".todo"

# Storage key; the list is saved as <data_dir>/<storage_key>.json
storage_key = "todos"

# Journal directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.todo/logs"

# Record every store change as a CloudEvent in the session journal
journal = true

# Filter shown on startup: all, active or completed
default_filter = "all"

# Command run after every saved change, as: <command> <op> <task-id> <key>
# The change is also written to its stdin as a CloudEvent (JSON).
# hook_command = "./scripts/on-change.sh"

# Logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
