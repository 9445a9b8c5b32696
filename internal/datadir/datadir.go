// Package datadir provides constants and utilities for the .todo directory structure.
package datadir

import "path/filepath"

const (
	// Dir is the name of the todo state directory.
	Dir = ".todo"

	// DefaultConfigFile is the config file name inside a state directory.
	DefaultConfigFile = "todo.toml"

	// LogsDir is the journal directory name inside the user state directory.
	LogsDir = "logs"
)

// DirPath returns the full path to the .todo directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// ConfigPath returns the full path to the config file within a work directory.
func ConfigPath(workDir string) string {
	return filepath.Join(DirPath(workDir), DefaultConfigFile)
}

// LogPath returns the journal directory under a base state directory.
func LogPath(baseDir string) string {
	return filepath.Join(baseDir, LogsDir)
}
