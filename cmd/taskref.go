package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/nibzard/todo-go/internal/todo"
)

// minPrefixLen is the shortest id prefix accepted as a task reference.
const minPrefixLen = 4

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")
	// ErrTaskNotFound indicates the reference matched no task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAmbiguousRef indicates an id prefix matched more than one task.
	ErrAmbiguousRef = errors.New("ambiguous task reference")
)

// ResolveTaskRef finds the task named by ref and returns it with its
// index in tasks.
//
// Resolution order:
// 1. Exact id match
// 2. All digits: 1-based position in the full list
// 3. Id prefix of at least minPrefixLen characters, which must be unique
func ResolveTaskRef(tasks []todo.Task, ref string) (todo.Task, int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return todo.Task{}, -1, ErrTaskRefRequired
	}

	if i := todo.Index(tasks, ref); i >= 0 {
		return tasks[i], i, nil
	}

	if isAllDigits(ref) {
		n, err := strconv.Atoi(ref)
		if err == nil && n >= 1 && n <= len(tasks) {
			return tasks[n-1], n - 1, nil
		}
		if len(ref) < minPrefixLen {
			return todo.Task{}, -1, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
		}
	}

	if len(ref) < minPrefixLen {
		return todo.Task{}, -1, fmt.Errorf("%w: %s (id prefixes need at least %d characters)", ErrTaskNotFound, ref, minPrefixLen)
	}

	match := -1
	var ids []string
	for i, t := range tasks {
		if !strings.HasPrefix(t.ID, ref) {
			continue
		}
		ids = append(ids, t.ID)
		match = i
	}
	switch len(ids) {
	case 0:
		return todo.Task{}, -1, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return tasks[match], match, nil
	default:
		return todo.Task{}, -1, fmt.Errorf("%w: %s matches %s", ErrAmbiguousRef, ref, strings.Join(ids, ", "))
	}
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
