// Package output renders task listings for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/todo-go/internal/todo"
)

// Format selects how a listing is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q, must be one of: text, json, yaml", s)
	}
}

// Entry is a task together with its 1-based position in the full list.
type Entry struct {
	Position  int `json:"position" yaml:"position"`
	todo.Task `yaml:",inline"`
}

// Listing is one filtered view of the task list.
type Listing struct {
	Filter todo.Filter `json:"filter" yaml:"filter"`
	Counts todo.Counts `json:"counts" yaml:"counts"`
	Tasks  []Entry     `json:"tasks" yaml:"tasks"`
}

// NewListing builds the view of tasks selected by f. Positions refer to
// the unfiltered list so they can be used as task references.
func NewListing(tasks []todo.Task, f todo.Filter) Listing {
	l := Listing{
		Filter: f,
		Counts: todo.Count(tasks),
		Tasks:  []Entry{},
	}
	for i, t := range tasks {
		if f.Match(t) {
			l.Tasks = append(l.Tasks, Entry{Position: i + 1, Task: t})
		}
	}
	return l
}

// Options tweaks text rendering.
type Options struct {
	ShowIDs bool
}

// Write renders l to w in the given format.
func Write(w io.Writer, format Format, l Listing, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, l, opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeText(w io.Writer, l Listing, opts Options) error {
	if len(l.Tasks) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage(l.Filter))
		return err
	}
	for _, e := range l.Tasks {
		FormatTask(w, e, opts.ShowIDs)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", Summary(l.Counts))
	return err
}

// FormatTask writes one task line.
// Format: "{N:>4}  [x] {TEXT}" with the id appended when requested.
func FormatTask(w io.Writer, e Entry, showID bool) {
	line := fmt.Sprintf("%4d  %s %s", e.Position, Checkbox(e.Completed), normalizeText(e.Text))
	if showID {
		line += "  (" + e.ID + ")"
	}
	fmt.Fprintln(w, line)
}

// Checkbox returns the completion marker for a task.
func Checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// EmptyMessage returns the message shown when a view has no tasks.
func EmptyMessage(f todo.Filter) string {
	switch f {
	case todo.FilterActive:
		return "No active tasks"
	case todo.FilterCompleted:
		return "No completed tasks"
	default:
		return "Add your first task!"
	}
}

// Summary returns a one-line count summary.
func Summary(c todo.Counts) string {
	noun := "tasks"
	if c.All == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%d %s: %d active, %d completed", c.All, noun, c.Active, c.Completed)
}

// normalizeText keeps each task on a single line.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.ReplaceAll(text, "\n", " ")
}
