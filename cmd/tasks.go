package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/output"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/ui"
)

// ErrNothingToAdd is returned when a task text is blank.
var ErrNothingToAdd = errors.New("nothing to add: task text is empty")

// ErrEmptyText is returned when an edit would leave a task blank.
var ErrEmptyText = errors.New("task text cannot be empty")

// addCommand appends a task.
func (a *app) addCommand(args []string) error {
	fs := flag.NewFlagSet("todo add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, closeStore, err := a.openStore(true)
	if err != nil {
		return err
	}
	defer closeStore()

	task, ok := s.Add(joinArgs(fs.Args()))
	if !ok {
		return ErrNothingToAdd
	}
	if err := s.SaveErr(); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	fmt.Fprintf(a.stdout, "Added %d: %s\n", len(s.Tasks()), task.Text)
	return nil
}

// listFlags are shared by ls and watch.
type listFlags struct {
	filter string
	format string
	ids    bool
}

func (a *app) bindListFlags(fs *flag.FlagSet) *listFlags {
	lf := &listFlags{}
	fs.StringVar(&lf.filter, "filter", a.cfg.DefaultFilter, "Filter (all|active|completed)")
	fs.StringVar(&lf.format, "format", "text", "Output format (text|json|yaml)")
	fs.BoolVar(&lf.ids, "ids", false, "Show task ids")
	return lf
}

func (lf *listFlags) resolve() (todo.Filter, output.Format, error) {
	filter, err := todo.ParseFilter(lf.filter)
	if err != nil {
		return "", "", err
	}
	format, err := output.ParseFormat(lf.format)
	if err != nil {
		return "", "", err
	}
	return filter, format, nil
}

// lsCommand lists tasks in the selected view.
func (a *app) lsCommand(args []string) error {
	fs := flag.NewFlagSet("todo ls", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	lf := a.bindListFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		lf.filter = remaining[0]
	}
	filter, format, err := lf.resolve()
	if err != nil {
		return err
	}

	s, closeStore, err := a.openStore(false)
	if err != nil {
		return err
	}
	defer closeStore()

	return output.Write(a.stdout, format, output.NewListing(s.Tasks(), filter), output.Options{ShowIDs: lf.ids})
}

// doneCommand toggles a task's completed flag.
func (a *app) doneCommand(args []string) error {
	return a.withTask("todo done", args, func(s *store.Store, task todo.Task) error {
		s.Toggle(task.ID)
		if err := s.SaveErr(); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}
		if task.Completed {
			fmt.Fprintf(a.stdout, "Reopened: %s\n", task.Text)
		} else {
			fmt.Fprintf(a.stdout, "Completed: %s\n", task.Text)
		}
		return nil
	})
}

// rmCommand removes a task.
func (a *app) rmCommand(args []string) error {
	return a.withTask("todo rm", args, func(s *store.Store, task todo.Task) error {
		s.Remove(task.ID)
		if err := s.SaveErr(); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}
		fmt.Fprintf(a.stdout, "Removed: %s\n", task.Text)
		return nil
	})
}

// editCommand replaces a task's text through the store's edit mode.
func (a *app) editCommand(args []string) error {
	fs := flag.NewFlagSet("todo edit", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return ErrTaskRefRequired
	}
	ref, text := remaining[0], joinArgs(remaining[1:])

	s, closeStore, err := a.openStore(true)
	if err != nil {
		return err
	}
	defer closeStore()

	task, _, err := ResolveTaskRef(s.Tasks(), ref)
	if err != nil {
		return err
	}
	s.BeginEdit(task.ID)
	s.SetEditBuffer(text)
	if !s.CommitEdit() {
		s.CancelEdit()
		return ErrEmptyText
	}
	if err := s.SaveErr(); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	updated, _ := s.Get(task.ID)
	fmt.Fprintf(a.stdout, "Updated: %s\n", updated.Text)
	return nil
}

// clearCommand removes every completed task.
func (a *app) clearCommand(args []string) error {
	fs := flag.NewFlagSet("todo clear", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, closeStore, err := a.openStore(true)
	if err != nil {
		return err
	}
	defer closeStore()

	n := s.ClearCompleted()
	if err := s.SaveErr(); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	switch n {
	case 0:
		fmt.Fprintln(a.stdout, "No completed tasks")
	case 1:
		fmt.Fprintln(a.stdout, "Cleared 1 completed task")
	default:
		fmt.Fprintf(a.stdout, "Cleared %d completed tasks\n", n)
	}
	return nil
}

// withTask parses a single task reference and runs fn against it.
func (a *app) withTask(name string, args []string, fn func(*store.Store, todo.Task) error) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return ErrTaskRefRequired
	}
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}

	s, closeStore, err := a.openStore(true)
	if err != nil {
		return err
	}
	defer closeStore()

	task, _, err := ResolveTaskRef(s.Tasks(), remaining[0])
	if err != nil {
		return err
	}
	return fn(s, task)
}

// tuiCommand launches the TUI.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo tui", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	filterArg := fs.String("filter", a.cfg.DefaultFilter, "Filter shown on startup (all|active|completed)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, err := todo.ParseFilter(*filterArg)
	if err != nil {
		return err
	}
	if !ui.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	// Log lines and hook output would corrupt the alt screen.
	a.hookOut = io.Discard
	closeLog := a.redirectLogs()
	defer closeLog()

	s, closeStore, err := a.openStore(true)
	if err != nil {
		return err
	}
	defer closeStore()

	return ui.RunTUI(ctx, s, ui.WithFilter(filter))
}

// redirectLogs points the logger at the TUI log file, or discards output
// when the file cannot be opened.
func (a *app) redirectLogs() func() {
	discard := func() {
		a.logger = log.New(io.Discard)
	}
	path, err := tuiLogPath(a.cfg)
	if err != nil {
		discard()
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		discard()
		return func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		discard()
		return func() {}
	}
	logger, err := logging.NewLogger(file, logOptions(a.cfg))
	if err != nil {
		logger = log.New(file)
	}
	logger.SetReportTimestamp(true)
	a.logger = logger
	return func() { _ = file.Close() }
}
