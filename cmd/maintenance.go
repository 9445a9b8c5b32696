package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/hooks"
	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/output"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/watch"
)

// watchCommand prints the list, then prints it again after every change
// to the stored value. It only reads the slot.
func (a *app) watchCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo watch", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	lf := a.bindListFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, format, err := lf.resolve()
	if err != nil {
		return err
	}
	if a.cfg.Memory {
		return fmt.Errorf("watch requires file storage")
	}
	storage, err := kv.NewFileStorage(a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	render := func() {
		tasks, err := a.readTasks(storage)
		if err != nil {
			a.logger.Warn("Stored tasks are invalid", "err", err)
		}
		if err := output.Write(a.stdout, format, output.NewListing(tasks, filter), output.Options{ShowIDs: lf.ids}); err != nil {
			a.logger.Error("Failed to print tasks", "err", err)
		}
	}

	w, err := watch.New(storage.Path(a.cfg.StorageKey), watch.Options{Logger: a.logger})
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintf(a.stderr, "Watching: %s\n(Ctrl+C to stop)\n\n", w.Path())
	render()
	return w.Run(ctx, func() {
		fmt.Fprintln(a.stdout, "---")
		render()
	})
}

// readTasks decodes the stored list without hydrating a store, so no
// corrupt backup is written.
func (a *app) readTasks(storage kv.Storage) ([]todo.Task, error) {
	data, err := storage.Get(a.cfg.StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []todo.Task{}, nil
	}
	if err != nil {
		return []todo.Task{}, err
	}
	tasks, err := todo.Decode(data)
	if err != nil {
		return []todo.Task{}, err
	}
	return tasks, nil
}

// logCommand tails the latest change journal.
func (a *app) logCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo log", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	follow := fs.Bool("f", false, "Follow the journal (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the journal (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(a.cfg.LogDir, a.cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(a.stdout, "No journal files found.")
		return nil
	}

	fmt.Fprintf(a.stderr, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(a.stderr, "(Ctrl+C to stop)")
	}
	return logging.TailLog(ctx, a.stdout, logPath, *n, *follow)
}

// doctorCommand checks the config, the stored list and the journal dir.
func (a *app) doctorCommand(args []string) error {
	fs := flag.NewFlagSet("todo doctor", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := a.stdout
	fmt.Fprintln(w, "Todo Doctor")
	fmt.Fprintln(w, "===========")
	fmt.Fprintln(w)

	allOK := true

	// Check project root
	fmt.Fprintf(w, "Project root: %s\n", a.cfg.ProjectRoot)
	if _, err := os.Stat(a.cfg.ProjectRoot); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Check config files
	fmt.Fprintln(w, "Config files:")
	if len(a.sources.Files) == 0 {
		fmt.Fprintln(w, "  ✅ None (using defaults)")
	}
	for _, f := range a.sources.Files {
		fmt.Fprintf(w, "  ✅ %s\n", f)
	}
	fmt.Fprintln(w)

	// Check stored tasks
	if a.cfg.Memory {
		fmt.Fprintln(w, "Storage: memory")
		fmt.Fprintln(w, "  ⚠️  Tasks are not saved")
		fmt.Fprintln(w)
	} else if !a.checkStorage(*verbose) {
		allOK = false
	}

	// Check hook command
	if a.cfg.HookCommand != "" {
		fmt.Fprintf(w, "Hook command: %s\n", a.cfg.HookCommand)
		if path, err := hooks.CheckCommand(a.cfg.HookCommand); err != nil {
			fmt.Fprintf(w, "  ❌ %v\n", err)
			allOK = false
		} else {
			fmt.Fprintf(w, "  ✅ OK (%s)\n", path)
		}
		fmt.Fprintln(w)
	}

	// Check journal directory
	fmt.Fprintf(w, "Journal directory: %s\n", a.cfg.LogDir)
	switch {
	case !a.cfg.Journal:
		fmt.Fprintln(w, "  ⚠️  Journal disabled")
	default:
		if _, err := os.Stat(a.cfg.LogDir); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(w, "  ⚠️  Not found (will be created on first change)")
			} else {
				fmt.Fprintf(w, "  ❌ Error: %v\n", err)
				allOK = false
			}
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
	}
	fmt.Fprintln(w)

	// Overall status
	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Todo may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

func (a *app) checkStorage(verbose bool) bool {
	w := a.stdout
	storage, err := kv.NewFileStorage(a.cfg.DataDir)
	if err != nil {
		fmt.Fprintf(w, "Storage: %s\n  ❌ Error: %v\n\n", a.cfg.DataDir, err)
		return false
	}
	path := storage.Path(a.cfg.StorageKey)
	fmt.Fprintf(w, "Task file: %s\n", path)
	defer fmt.Fprintln(w)

	ok := true
	data, err := storage.Get(a.cfg.StorageKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		fmt.Fprintln(w, "  ⚠️  Not found (will be created on first change)")
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		ok = false
	default:
		result := todo.Validate(data)
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  ⚠️  %s\n", warning)
		}
		if result.Valid {
			counts := todo.Count(result.Tasks)
			fmt.Fprintf(w, "  ✅ Valid (%s)\n", output.Summary(counts))
		} else {
			fmt.Fprintln(w, "  ❌ Validation failed:")
			for _, e := range result.Errors {
				fmt.Fprintf(w, "     - %v\n", e)
			}
			ok = false
		}
		if verbose && result.Valid {
			for i, t := range result.Tasks {
				fmt.Fprintf(w, "    %4d  %s %s (%s)\n", i+1, output.Checkbox(t.Completed), t.Text, t.ID)
			}
		}
	}

	if _, err := storage.Get(a.cfg.StorageKey + store.CorruptSuffix); err == nil {
		fmt.Fprintf(w, "  ⚠️  Corrupt value set aside in %s\n", storage.Path(a.cfg.StorageKey+store.CorruptSuffix))
	}
	return ok
}

// configCommand prints the effective configuration and where each value
// came from.
func (a *app) configCommand(args []string) error {
	fs := flag.NewFlagSet("todo config", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	}

	width := 0
	for _, field := range config.Fields() {
		if len(field) > width {
			width = len(field)
		}
	}
	for _, field := range config.Fields() {
		fmt.Fprintf(a.stdout, "%-*s = %-24s (%s)\n", width, field, a.cfg.Value(field), a.sources.Sources[field])
	}
	if a.cfg.Memory {
		fmt.Fprintf(a.stdout, "%-*s = true\n", width, "memory")
	}
	if len(a.sources.Files) > 0 {
		fmt.Fprintf(a.stdout, "\nFiles: %s\n", strings.Join(a.sources.Files, ", "))
	}
	return nil
}
