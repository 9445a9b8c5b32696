// Package todo defines tasks, filter modes, and pure list transformations.
package todo

import (
	"fmt"
	"strings"
)

// Task represents a single entry in the todo list.
type Task struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == ""
}

// Filter selects a read-only view of the list.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the filter modes in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// ParseFilter parses a filter name. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "todo":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("invalid filter %q, must be one of: all, active, completed", s)
	}
}

// Match reports whether the task belongs to the filtered view.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Next returns the filter after f, wrapping around.
func (f Filter) Next() Filter {
	filters := Filters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return FilterAll
}

// Counts holds the number of tasks visible under each filter.
type Counts struct {
	All       int `json:"all" yaml:"all"`
	Active    int `json:"active" yaml:"active"`
	Completed int `json:"completed" yaml:"completed"`
}

// For returns the count for a filter.
func (c Counts) For(f Filter) int {
	switch f {
	case FilterActive:
		return c.Active
	case FilterCompleted:
		return c.Completed
	default:
		return c.All
	}
}

// NormalizeText trims surrounding whitespace. An empty result means the
// text must be rejected.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}

// Clone returns a copy of the list that shares no backing array with it.
func Clone(tasks []Task) []Task {
	if tasks == nil {
		return []Task{}
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// Index returns the position of the task with id, or -1.
func Index(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Append returns a new list with a task appended. It reports false and
// returns the input unchanged when text is blank.
func Append(tasks []Task, id, text string) ([]Task, Task, bool) {
	text = NormalizeText(text)
	if text == "" || id == "" {
		return tasks, Task{}, false
	}
	task := Task{ID: id, Text: text}
	out := make([]Task, 0, len(tasks)+1)
	out = append(out, tasks...)
	out = append(out, task)
	return out, task, true
}

// Toggle returns a new list with the completed flag of id flipped.
func Toggle(tasks []Task, id string) ([]Task, bool) {
	i := Index(tasks, id)
	if i < 0 {
		return tasks, false
	}
	out := Clone(tasks)
	out[i].Completed = !out[i].Completed
	return out, true
}

// Rename returns a new list with the text of id replaced by the trimmed text.
func Rename(tasks []Task, id, text string) ([]Task, bool) {
	text = NormalizeText(text)
	if text == "" {
		return tasks, false
	}
	i := Index(tasks, id)
	if i < 0 {
		return tasks, false
	}
	out := Clone(tasks)
	out[i].Text = text
	return out, true
}

// Remove returns a new list without the task with id.
func Remove(tasks []Task, id string) ([]Task, bool) {
	i := Index(tasks, id)
	if i < 0 {
		return tasks, false
	}
	out := make([]Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	out = append(out, tasks[i+1:]...)
	return out, true
}

// ClearCompleted returns the active tasks in their original order and the
// number of tasks dropped.
func ClearCompleted(tasks []Task) ([]Task, int) {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out, len(tasks) - len(out)
}

// Apply returns the subsequence of tasks matching the filter.
func Apply(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Count tallies the list under every filter.
func Count(tasks []Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}
