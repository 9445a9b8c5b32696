// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/todo"
)

// Placeholder is shown in the empty add input.
const Placeholder = "Add a new task..."

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	filter   todo.Filter
	progOpts []tea.ProgramOption
}

// WithFilter selects the filter shown on startup.
func WithFilter(f todo.Filter) TUIOption {
	return func(c *tuiConfig) {
		c.filter = f
	}
}

// WithProgramOptions passes extra options to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) TUIOption {
	return func(c *tuiConfig) {
		c.progOpts = append(c.progOpts, opts...)
	}
}

// RunTUI runs the interactive list over s until the user quits or ctx is done.
func RunTUI(ctx context.Context, s *store.Store, opts ...TUIOption) error {
	c := &tuiConfig{filter: todo.FilterAll}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := NewModel(s, c.filter)
	defer model.Close()

	progOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, c.progOpts...)
	program := tea.NewProgram(model, progOpts...)
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

// Model is the bubbletea model. It renders store snapshots and turns
// key presses into store operations.
type Model struct {
	store       *store.Store
	unsubscribe func()
	snap        store.Snapshot

	filter   todo.Filter
	cursor   int
	mode     mode
	input    textinput.Model
	editor   textinput.Model
	showHelp bool
	status   string
	width    int
}

// NewModel creates a model subscribed to s. Call Close when done.
func NewModel(s *store.Store, filter todo.Filter) *Model {
	input := textinput.New()
	input.Placeholder = Placeholder
	input.CharLimit = 512
	input.Width = 50
	input.Prompt = "+ "

	editor := textinput.New()
	editor.CharLimit = 512
	editor.Width = 50
	editor.Prompt = ""

	m := &Model{
		store:  s,
		snap:   s.Snapshot(),
		filter: filter,
		input:  input,
		editor: editor,
	}
	m.unsubscribe = s.Subscribe(m.onSnapshot)
	return m
}

// Close detaches the model from the store.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) onSnapshot(snap store.Snapshot) {
	m.snap = snap
	m.clampCursor()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg)
		case modeEdit:
			return m.updateEditMode(msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 12 {
			m.input.Width = msg.Width - 10
			m.editor.Width = msg.Width - 12
		}
	}
	return m, nil
}

func (m *Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key {
	case "q":
		return m, tea.Quit
	case "?", "h":
		m.showHelp = !m.showHelp
	case "a", "i":
		m.mode = modeAdd
		m.input.SetValue("")
		return m, m.input.Focus()
	case " ", "space", "x":
		if task, ok := m.selected(); ok {
			m.store.Toggle(task.ID)
		}
	case "e":
		return m.startEdit()
	case "d", "delete":
		if task, ok := m.selected(); ok {
			m.store.Remove(task.ID)
			m.status = "Deleted task"
		}
	case "c":
		if n := m.store.ClearCompleted(); n > 0 {
			m.status = fmt.Sprintf("Cleared %d completed", n)
		}
	case "1":
		m.setFilter(todo.FilterAll)
	case "2":
		m.setFilter(todo.FilterActive)
	case "3":
		m.setFilter(todo.FilterCompleted)
	case "tab":
		m.setFilter(m.filter.Next())
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.visible()) - 1
		m.clampCursor()
	}
	return m, nil
}

func (m *Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	case "enter":
		task, ok := m.store.Add(m.input.Value())
		if !ok {
			m.status = "Nothing to add"
			return m, nil
		}
		m.input.SetValue("")
		m.status = "Added task"
		m.selectTask(task.ID)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startEdit() (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	if task.Completed {
		m.status = "Completed tasks cannot be edited"
		return m, nil
	}
	if !m.store.BeginEdit(task.ID) {
		return m, nil
	}
	m.mode = modeEdit
	m.editor.SetValue(m.snap.Edit.Buffer)
	m.editor.CursorEnd()
	return m, m.editor.Focus()
}

func (m *Model) updateEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.store.CancelEdit()
		m.leaveEdit()
		return m, nil
	case "enter":
		id := m.snap.Edit.TaskID
		if m.store.CommitEdit() {
			m.leaveEdit()
			m.selectTask(id)
			return m, nil
		}
		if m.store.Edit().Active() {
			m.status = "Task text cannot be empty"
			return m, nil
		}
		m.leaveEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.store.SetEditBuffer(m.editor.Value())
	return m, cmd
}

func (m *Model) leaveEdit() {
	m.mode = modeList
	m.editor.Blur()
	m.editor.SetValue("")
}

func (m *Model) setFilter(f todo.Filter) {
	if m.filter == f {
		return
	}
	m.filter = f
	m.cursor = 0
	m.clampCursor()
}

func (m *Model) visible() []todo.Task {
	return m.snap.Filter(m.filter)
}

func (m *Model) selected() (todo.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return todo.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) selectTask(id string) {
	if i := todo.Index(m.visible(), id); i >= 0 {
		m.cursor = i
	}
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
