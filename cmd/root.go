// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/events"
	"github.com/nibzard/todo-go/internal/hooks"
	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// app carries the resolved configuration and output streams of one
// invocation.
type app struct {
	ctx     context.Context
	cfg     *config.Config
	sources *config.ConfigWithSources
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
	hookOut io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	logger, err := logging.NewLogger(stderr, logOptions(cws.Config))
	if err != nil {
		return err
	}
	a := &app{
		ctx:     ctx,
		cfg:     cws.Config,
		sources: cws,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
		hookOut: stderr,
	}

	// With no command, open the TUI on a terminal and list otherwise.
	subcommand := "ls"
	if ui.IsTTY(stdout) {
		subcommand = "tui"
	}
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	err = a.dispatch(ctx, fs, subcommand, remainingArgs)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

func (a *app) dispatch(ctx context.Context, fs *flag.FlagSet, subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return a.addCommand(args)
	case "ls", "list":
		return a.lsCommand(args)
	case "done", "toggle":
		return a.doneCommand(args)
	case "rm", "remove":
		return a.rmCommand(args)
	case "edit":
		return a.editCommand(args)
	case "clear":
		return a.clearCommand(args)
	case "tui":
		return a.tuiCommand(ctx, args)
	case "watch":
		return a.watchCommand(ctx, args)
	case "log", "tail":
		return a.logCommand(ctx, args)
	case "doctor":
		return a.doctorCommand(args)
	case "config":
		return a.configCommand(args)
	case "version":
		return versionCommand(a.stdout)
	case "help":
		printUsage(fs, a.stdout)
		return nil
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, a.stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func logOptions(cfg *config.Config) logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = cfg.LogLevel
	opts.Format = cfg.LogFormat
	opts.ReportTimestamp = cfg.LogTimestamps
	opts.ReportCaller = cfg.LogCaller
	return opts
}

// openStorage returns the key-value backend selected by the config.
func (a *app) openStorage() (kv.Storage, error) {
	if a.cfg.Memory {
		return kv.NewMemoryStorage(), nil
	}
	storage, err := kv.NewFileStorage(a.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return storage, nil
}

// openStore hydrates the task store. With observe set, changes are
// appended to this session's journal and passed to the hook command. The
// returned func detaches them.
func (a *app) openStore(observe bool) (*store.Store, func(), error) {
	storage, err := a.openStorage()
	if err != nil {
		return nil, nil, err
	}
	s := store.New(storage, store.WithKey(a.cfg.StorageKey), store.WithLogger(a.logger))
	if !observe {
		return s, func() {}, nil
	}

	var closers []func()
	if a.cfg.Journal {
		if session, err := logging.NewSessionLog(a.cfg.LogDir, a.cfg.ProjectRoot); err != nil {
			a.logger.Warn("Journal disabled", "err", err)
		} else {
			a.logger.Debug("Journaling changes", "path", session.Path)
			detach := events.NewJournal(session.Writer(), events.Source(s.Key()), a.logger).Attach(s)
			closers = append(closers, func() {
				detach()
				if err := session.Close(); err != nil {
					a.logger.Warn("Failed to close journal", "err", err)
				}
			})
		}
	}
	if a.cfg.HookCommand != "" {
		runner := hooks.NewRunner(a.ctx, hooks.Options{
			Command: a.cfg.HookCommand,
			WorkDir: a.cfg.ProjectRoot,
			Stdout:  a.hookOut,
			Stderr:  a.hookOut,
		}, s.Key(), a.logger)
		closers = append(closers, runner.Attach(s))
	}

	return s, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "todo version %s\n", Version)
	return nil
}

// tuiLogPath is where the TUI sends log output so the alt screen stays clean.
func tuiLogPath(cfg *config.Config) (string, error) {
	dir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tui.log"), nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todo - A small task list for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [global options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <text...>          Add a task")
	fmt.Fprintln(w, "  ls [filter]            List tasks (default without a terminal)")
	fmt.Fprintln(w, "  done <ref>             Toggle a task between active and completed")
	fmt.Fprintln(w, "  rm <ref>               Remove a task")
	fmt.Fprintln(w, "  edit <ref> <text...>   Replace a task's text")
	fmt.Fprintln(w, "  clear                  Remove all completed tasks")
	fmt.Fprintln(w, "  tui                    Launch terminal UI (default on a terminal)")
	fmt.Fprintln(w, "  watch                  Print the list again whenever it changes")
	fmt.Fprintln(w, "  log                    Show the latest change journal")
	fmt.Fprintln(w, "  doctor                 Check config and stored tasks")
	fmt.Fprintln(w, "  config                 Show effective configuration")
	fmt.Fprintln(w, "  version                Show version information")
	fmt.Fprintln(w, "  help                   Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A <ref> is a task id, a unique id prefix of at least "+
		fmt.Sprint(minPrefixLen)+" characters, or the task's position in 'todo ls'.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls / Watch Options:")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        Filter (all|active|completed)")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (text|json|yaml)")
	fmt.Fprintln(w, "  -ids   Show task ids (text format)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Log Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the journal (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}

// joinArgs joins positional words into one task text.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
