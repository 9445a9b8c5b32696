package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/nibzard/todo-go/internal/todo"
)

func TestResolveTaskRef(t *testing.T) {
	tasks := []todo.Task{
		{ID: "0192a1b2-0000-7000-8000-000000000001", Text: "Buy milk"},
		{ID: "0192a1b2-0000-7000-8000-000000000002", Text: "Walk dog"},
		{ID: "abcdef12", Text: "Call mom"},
		{ID: "42", Text: "Numeric id"},
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantIdx int
		wantErr error
	}{
		{"exact id", "abcdef12", "Call mom", 2, nil},
		{"numeric exact id wins over position", "42", "Numeric id", 3, nil},
		{"position", "1", "Buy milk", 0, nil},
		{"last position", "4", "Numeric id", 3, nil},
		{"unique prefix", "abcd", "Call mom", 2, nil},
		{"long unique prefix", "0192a1b2-0000-7000-8000-000000000002", "Walk dog", 1, nil},
		{"trimmed", "  2 ", "Walk dog", 1, nil},
		{"ambiguous prefix", "0192a1b2", "", -1, ErrAmbiguousRef},
		{"position out of range", "9", "", -1, ErrTaskNotFound},
		{"position zero", "0", "", -1, ErrTaskNotFound},
		{"short prefix", "abc", "", -1, ErrTaskNotFound},
		{"unknown", "zzzzzz", "", -1, ErrTaskNotFound},
		{"empty", "", "", -1, ErrTaskRefRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, idx, err := ResolveTaskRef(tasks, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if idx != -1 {
					t.Errorf("index: got %d, want -1", idx)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if task.Text != tt.want || idx != tt.wantIdx {
				t.Errorf("got (%q, %d), want (%q, %d)", task.Text, idx, tt.want, tt.wantIdx)
			}
		})
	}
}

func TestResolveTaskRefErrorMessages(t *testing.T) {
	_, _, err := ResolveTaskRef(nil, "nope1")
	if err == nil || err.Error() != "task not found: nope1" {
		t.Errorf("unexpected message: %v", err)
	}

	tasks := []todo.Task{{ID: "aaaa1"}, {ID: "aaaa2"}}
	_, _, err = ResolveTaskRef(tasks, "aaaa")
	if err == nil || !strings.Contains(err.Error(), "aaaa1, aaaa2") {
		t.Errorf("ambiguous error should list candidates: %v", err)
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := map[string]bool{
		"":    false,
		"0":   true,
		"123": true,
		"12a": false,
		"١٢":  false,
	}
	for in, want := range tests {
		if got := isAllDigits(in); got != want {
			t.Errorf("isAllDigits(%q): got %v, want %v", in, got, want)
		}
	}
}
