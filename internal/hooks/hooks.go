// Package hooks invokes an external command after task list changes.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/events"
	"github.com/nibzard/todo-go/internal/store"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 10 * time.Second

// Options configures a hook invocation.
type Options struct {
	Command string
	WorkDir string
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
}

// Event is what the hook is told about one change.
type Event struct {
	Op      store.Op
	TaskID  string
	Key     string
	Payload []byte // CloudEvent JSON, written to the hook's stdin
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook as `<command> <op> <task-id> <key>`. The same values
// are exported as TODO_OP, TODO_TASK_ID and TODO_KEY.
func Invoke(ctx context.Context, opts Options, ev Event) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, opts.Command, string(ev.Op), ev.TaskID, ev.Key)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = append(os.Environ(),
		"TODO_OP="+string(ev.Op),
		"TODO_TASK_ID="+ev.TaskID,
		"TODO_KEY="+ev.Key,
	)
	cmd.Stdin = bytes.NewReader(ev.Payload)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = io.Discard
	}
	if cmd.Stderr == nil {
		cmd.Stderr = io.Discard
	}

	err := cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Runner invokes the hook after every change that rewrites the stored list.
type Runner struct {
	ctx    context.Context
	opts   Options
	key    string
	logger *log.Logger
}

// NewRunner returns a runner for changes to the list stored under key.
func NewRunner(ctx context.Context, opts Options, key string, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{ctx: ctx, opts: opts, key: key, logger: logger}
}

// Observe runs the hook for snap. Failures are logged, never returned.
func (r *Runner) Observe(snap store.Snapshot) {
	if !snap.Change.Op.Persists() {
		return
	}
	ev := Event{Op: snap.Change.Op, TaskID: snap.Change.TaskID, Key: r.key}
	ev.Payload = r.payload(snap)

	result, err := r.Invoke(ev)
	if err != nil {
		r.logger.Warn("Hook failed", "command", r.opts.Command, "exit_code", result.ExitCode, "err", err)
		return
	}
	r.logger.Debug("Hook ran", "command", r.opts.Command, "op", ev.Op)
}

// payload returns the CloudEvent JSON for snap, or nil when it cannot be
// built. The hook still runs without stdin data.
func (r *Runner) payload(snap store.Snapshot) []byte {
	event, err := events.NewChangeEvent(events.Source(r.key), snap)
	if err != nil {
		r.logger.Debug("Failed to build hook payload", "op", snap.Change.Op, "err", err)
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Debug("Failed to marshal hook payload", "op", snap.Change.Op, "err", err)
		return nil
	}
	return data
}

// Invoke runs the hook once with the runner's options.
func (r *Runner) Invoke(ev Event) (Result, error) {
	return Invoke(r.ctx, r.opts, ev)
}

// Attach subscribes the runner to s and returns the unsubscribe function.
func (r *Runner) Attach(s *store.Store) func() {
	return s.Subscribe(r.Observe)
}
