// Package hooks provides tests for external post-change hook invocation.
package hooks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/store"
)

// writeScript creates an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "hook.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestInvoke tests the Invoke function with various scenarios.
func TestInvoke(t *testing.T) {
	t.Run("empty command returns success without running", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{}, Event{Op: store.OpAdded})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Ran {
			t.Error("expected Ran to be false")
		}
	})

	t.Run("passes args env and payload", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.txt")
		script := writeScript(t, `echo "$1 $2 $3" > "`+out+`"
echo "$TODO_OP $TODO_TASK_ID $TODO_KEY" >> "`+out+`"
cat >> "`+out+`"
`)
		result, err := Invoke(context.Background(), Options{Command: script}, Event{
			Op:      store.OpToggled,
			TaskID:  "T1",
			Key:     "todos",
			Payload: []byte(`{"type":"io.todo.task.toggled"}`),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !result.Ran || result.ExitCode != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(result.Command) != 4 || result.Command[1] != "toggled" {
			t.Errorf("command args: %v", result.Command)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		want := "toggled T1 todos\ntoggled T1 todos\n{\"type\":\"io.todo.task.toggled\"}"
		if strings.TrimSpace(string(data)) != want {
			t.Errorf("hook saw %q, want %q", data, want)
		}
	})

	t.Run("non-zero exit returns error with code", func(t *testing.T) {
		script := writeScript(t, "exit 3\n")
		result, err := Invoke(context.Background(), Options{Command: script}, Event{Op: store.OpAdded})
		if err == nil {
			t.Fatal("expected error for failing hook")
		}
		if result.ExitCode != 3 {
			t.Errorf("exit code: got %d, want 3", result.ExitCode)
		}
	})

	t.Run("runs in work dir", func(t *testing.T) {
		workDir := t.TempDir()
		script := writeScript(t, "touch ran-here\n")
		if _, err := Invoke(context.Background(), Options{Command: script, WorkDir: workDir}, Event{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(workDir, "ran-here")); err != nil {
			t.Errorf("hook did not run in work dir: %v", err)
		}
	})

	t.Run("timeout stops the hook", func(t *testing.T) {
		script := writeScript(t, "sleep 5\n")
		start := time.Now()
		_, err := Invoke(context.Background(), Options{Command: script, Timeout: 100 * time.Millisecond}, Event{})
		if err == nil {
			t.Fatal("expected timeout error")
		}
		if time.Since(start) > 3*time.Second {
			t.Errorf("hook was not stopped in time")
		}
	})

	t.Run("missing command returns error", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{Command: filepath.Join(t.TempDir(), "nope")}, Event{})
		if err == nil {
			t.Fatal("expected error")
		}
		if result.ExitCode != -1 {
			t.Errorf("exit code: got %d, want -1", result.ExitCode)
		}
	})
}

func TestRunnerRunsOnPersistedChanges(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ops.txt")
	script := writeScript(t, `echo "$1" >> "`+out+`"`+"\n")

	s := store.New(kv.NewMemoryStorage())
	runner := NewRunner(context.Background(), Options{Command: script}, s.Key(), nil)
	detach := runner.Attach(s)

	task, _ := s.Add("Buy milk")
	s.BeginEdit(task.ID)
	s.SetEditBuffer("Buy oat milk")
	s.CommitEdit()
	s.BeginEdit(task.ID)
	s.CancelEdit()
	s.Toggle(task.ID)
	s.ClearCompleted()
	detach()
	s.Add("Not hooked")

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "added\nedit_committed\ntoggled\ncleared_completed\n"
	if string(data) != want {
		t.Errorf("ops: got %q, want %q", data, want)
	}
}

func TestRunnerLogsFailures(t *testing.T) {
	script := writeScript(t, "exit 1\n")
	var logs bytes.Buffer
	s := store.New(kv.NewMemoryStorage())
	defer NewRunner(context.Background(), Options{Command: script}, s.Key(), log.New(&logs)).Attach(s)()

	if _, ok := s.Add("Buy milk"); !ok {
		t.Fatal("add failed")
	}
	if !strings.Contains(logs.String(), "Hook failed") {
		t.Errorf("expected failure to be logged, got %q", logs.String())
	}
	if len(s.Tasks()) != 1 {
		t.Error("hook failure must not affect the store")
	}
}

func TestRunnerSendsCloudEventPayload(t *testing.T) {
	out := filepath.Join(t.TempDir(), "payload.json")
	script := writeScript(t, `cat > "`+out+`"`+"\n")

	s := store.New(kv.NewMemoryStorage())
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})
	defer NewRunner(context.Background(), Options{Command: script}, s.Key(), logger).Attach(s)()

	task, _ := s.Add("Buy milk")

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type":"io.todo.task.added"`, task.ID, "Buy milk"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("payload %q does not contain %q", data, want)
		}
	}
	if strings.Contains(logs.String(), "hook payload") {
		t.Errorf("unexpected payload failure: %q", logs.String())
	}
}

func TestCheckCommand(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := CheckCommand(""); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := CheckCommand(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("executable script", func(t *testing.T) {
		script := writeScript(t, "exit 0\n")
		path, err := CheckCommand(script)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if path != script {
			t.Errorf("path: got %q, want %q", path, script)
		}
	})
}

func TestIsWindowsExecutable(t *testing.T) {
	t.Setenv("PATHEXT", ".EXE;.bat; cmd ;")
	tests := map[string]bool{
		`C:\tools\hook.exe`: true,
		`C:\tools\hook.BAT`: true,
		`C:\tools\hook.cmd`: true,
		`C:\tools\hook.ps1`: false,
		`C:\tools\hook`:     false,
	}
	for path, want := range tests {
		if got := isWindowsExecutable(path); got != want {
			t.Errorf("isWindowsExecutable(%q): got %v, want %v", path, got, want)
		}
	}
}
