// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// isolate points HOME and the working directory at empty temp dirs and
// clears every TODO_* variable so only the test's own sources apply.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, env := range []string{
		"TODO_DATA_DIR", "TODO_KEY", "TODO_LOG_DIR", "TODO_JOURNAL", "TODO_FILTER", "TODO_HOOK",
		"TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_LOG_TIMESTAMPS", "TODO_LOG_CALLER",
	} {
		t.Setenv(env, "")
	}
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	return home, work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.DataDir != DefaultDataDir {
		t.Errorf("DataDir: got %q, want %q", cfg.DataDir, DefaultDataDir)
	}
	if cfg.StorageKey != DefaultStorageKey {
		t.Errorf("StorageKey: got %q, want %q", cfg.StorageKey, DefaultStorageKey)
	}
	if !cfg.Journal {
		t.Error("Journal: got false, want true")
	}
	if cfg.DefaultFilter != "all" {
		t.Errorf("DefaultFilter: got %q, want all", cfg.DefaultFilter)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log defaults: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Memory {
		t.Error("Memory should default to false")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TODO_DATA_DIR", "/tmp/tasks")
	t.Setenv("TODO_KEY", "work")
	t.Setenv("TODO_JOURNAL", "off")
	t.Setenv("TODO_FILTER", "completed")
	t.Setenv("TODO_LOG_LEVEL", "debug")
	t.Setenv("TODO_LOG_TIMESTAMPS", "yes")

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	loadFromEnv(cfg, sources)

	if cfg.DataDir != "/tmp/tasks" {
		t.Errorf("DataDir: got %q", cfg.DataDir)
	}
	if cfg.StorageKey != "work" {
		t.Errorf("StorageKey: got %q", cfg.StorageKey)
	}
	if cfg.Journal {
		t.Error("Journal: got true, want false")
	}
	if cfg.DefaultFilter != "completed" {
		t.Errorf("DefaultFilter: got %q", cfg.DefaultFilter)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q", cfg.LogLevel)
	}
	if !cfg.LogTimestamps {
		t.Error("LogTimestamps: got false, want true")
	}
	if sources["storage_key"] != SourceEnv || sources["journal"] != SourceEnv {
		t.Errorf("sources not tracked: %v", sources)
	}
	if _, ok := sources["log_dir"]; ok {
		t.Error("unset variable should not be tracked")
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "todo.toml")
	writeFile(t, configFile, `storage_key = "home"
default_filter = "active"
journal = false
`)

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	if err := loadConfigFile(cfg, configFile, sources, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.StorageKey != "home" {
		t.Errorf("StorageKey: got %q, want home", cfg.StorageKey)
	}
	if cfg.DefaultFilter != "active" {
		t.Errorf("DefaultFilter: got %q, want active", cfg.DefaultFilter)
	}
	if cfg.Journal {
		t.Error("Journal: got true, want false")
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("DataDir should keep default, got %q", cfg.DataDir)
	}
	if sources["storage_key"] != SourceProjFile {
		t.Errorf("storage_key source: got %q", sources["storage_key"])
	}
	if _, ok := sources["data_dir"]; ok {
		t.Error("data_dir not in file should not be tracked")
	}
}

func TestLoadConfigFileRejectsUnknownKeys(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "todo.toml")
	writeFile(t, configFile, "max_iterations = 3\n")

	cfg := &Config{}
	err := loadConfigFile(cfg, configFile, nil, SourceProjFile)
	if err == nil || !strings.Contains(err.Error(), "max_iterations") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
		{"", ""},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("TODO_TEST_HOME", home)
		tests = append(tests,
			struct{ input, want string }{`~\test`, filepath.Join(home, "test")},
			struct{ input, want string }{`%TODO_TEST_HOME%\logs`, filepath.Join(home, "logs")},
		)
	} else {
		tests = append(tests, struct{ input, want string }{`~\test`, `~\test`})
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	args := []string{
		"--key", "errands",
		"--filter", "active",
		"--journal=false",
		"--memory",
		"add", "Buy milk",
	}
	sources := map[string]ConfigSource{}
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if cfg.StorageKey != "errands" {
		t.Errorf("StorageKey: got %q, want errands", cfg.StorageKey)
	}
	if cfg.DefaultFilter != "active" {
		t.Errorf("DefaultFilter: got %q, want active", cfg.DefaultFilter)
	}
	if cfg.Journal {
		t.Error("Journal: got true, want false")
	}
	if !cfg.Memory {
		t.Error("Memory: got false, want true")
	}
	if got := fs.Args(); len(got) != 2 || got[0] != "add" {
		t.Errorf("remaining args: got %v", got)
	}
	if sources["storage_key"] != SourceFlag || sources["journal"] != SourceFlag {
		t.Errorf("sources not tracked: %v", sources)
	}
	if _, ok := sources["log_level"]; ok {
		t.Error("unset flag should not be tracked")
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{" yes ", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		if got := boolFromString(tt.input); got != tt.want {
			t.Errorf("boolFromString(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoadWithSources(t *testing.T) {
	home, work := isolate(t)
	writeFile(t, filepath.Join(home, ".todo", "todo.toml"), `storage_key = "personal"
log_level = "warn"
`)
	writeFile(t, filepath.Join(work, "todo.toml"), `default_filter = "completed"
log_level = "debug"
`)
	t.Setenv("TODO_LOG_FORMAT", "json")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"--log-level", "error"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	checks := []struct {
		field  string
		value  string
		source ConfigSource
	}{
		{"storage_key", "personal", SourceUserFile},
		{"default_filter", "completed", SourceProjFile},
		{"log_format", "json", SourceEnv},
		{"log_level", "error", SourceFlag},
		{"journal", "true", SourceDefault},
	}
	for _, c := range checks {
		if got := cfg.Value(c.field); got != c.value {
			t.Errorf("%s: got %q, want %q", c.field, got, c.value)
		}
		if got := cws.Sources[c.field]; got != c.source {
			t.Errorf("%s source: got %q, want %q", c.field, got, c.source)
		}
	}
	if len(cws.Files) != 2 {
		t.Errorf("Files: got %v, want user and project file", cws.Files)
	}
	if cfg.Filter() != "completed" {
		t.Errorf("Filter(): got %q", cfg.Filter())
	}
}

func TestLoadFinalizesPaths(t *testing.T) {
	home, work := isolate(t)

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectRoot == "" {
		t.Fatal("ProjectRoot not set")
	}
	if !filepath.IsAbs(cfg.DataDir) || filepath.Base(cfg.DataDir) != DefaultDataDir {
		t.Errorf("DataDir: got %q", cfg.DataDir)
	}
	// The temp dir may sit behind a symlink, so compare base names.
	if filepath.Base(filepath.Dir(cfg.DataDir)) != filepath.Base(work) {
		t.Errorf("DataDir %q not under work dir %q", cfg.DataDir, work)
	}
	if cfg.LogDir != filepath.Join(home, ".todo", "logs") {
		t.Errorf("LogDir: got %q", cfg.LogDir)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad key", []string{"--key", "../escape"}, "key"},
		{"bad filter", []string{"--filter", "someday"}, "default_filter"},
		{"unknown flag", []string{"--max-iterations", "3"}, "parsing flags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(&strings.Builder{})
			_, err := Load(fs, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.toml")
	writeFile(t, path, ExampleConfig())

	cfg := &Config{}
	if err := loadConfigFile(cfg, path, nil, SourceProjFile); err != nil {
		t.Fatalf("example config does not decode: %v", err)
	}
	if cfg.StorageKey != DefaultStorageKey || !cfg.Journal {
		t.Errorf("example config values: %+v", cfg)
	}
}

func TestHookCommandResolution(t *testing.T) {
	tests := []struct {
		name string
		hook string
		want func(work string) string
	}{
		{"bare name uses PATH", "notify-send", func(string) string { return "notify-send" }},
		{"relative path anchored at project root", "scripts/hook.sh", func(work string) string {
			return filepath.Join(work, "scripts", "hook.sh")
		}},
		{"absolute path kept", "/usr/local/bin/hook", func(string) string { return "/usr/local/bin/hook" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), []string{"--hook", tt.hook})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if want := tt.want(cfg.ProjectRoot); cfg.HookCommand != want {
				t.Errorf("HookCommand: got %q, want %q", cfg.HookCommand, want)
			}
		})
	}
}
