package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todo-go/internal/output"
	"github.com/nibzard/todo-go/internal/todo"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	tabStyle       = lipgloss.NewStyle().Faint(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle    = lipgloss.NewStyle().Bold(true)
	doneStyle      = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	emptyStyle     = lipgloss.NewStyle().Italic(true).Faint(true)
	hintStyle      = lipgloss.NewStyle().Faint(true)
	statusStyle    = lipgloss.NewStyle().Italic(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		b.WriteString(hintStyle.Render("Press ? to close help") + "\n")
		return b.String()
	}

	m.writeTabs(&b)
	m.writeTasks(&b)
	m.writeInput(&b)
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n\n")
	}
	m.writeFooter(&b)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	title := "Todos"
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *Model) writeTabs(b *strings.Builder) {
	labels := map[todo.Filter]string{
		todo.FilterAll:       "All",
		todo.FilterActive:    "Active",
		todo.FilterCompleted: "Completed",
	}
	tabs := make([]string, 0, len(labels))
	for _, f := range todo.Filters() {
		label := fmt.Sprintf("%s (%d)", labels[f], m.snap.Counts.For(f))
		if f == m.filter {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " | ") + "\n\n")
}

func (m *Model) writeTasks(b *strings.Builder) {
	tasks := m.visible()
	if len(tasks) == 0 {
		b.WriteString("  " + emptyStyle.Render(output.EmptyMessage(m.filter)) + "\n\n")
		return
	}
	for i, task := range tasks {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		b.WriteString(pointer + output.Checkbox(task.Completed) + " " + m.renderText(task) + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) renderText(task todo.Task) string {
	if m.mode == modeEdit && m.snap.Edit.TaskID == task.ID {
		return m.editor.View()
	}
	if task.Completed {
		return doneStyle.Render(task.Text)
	}
	return task.Text
}

func (m *Model) writeInput(b *strings.Builder) {
	if m.mode != modeAdd {
		return
	}
	b.WriteString(m.input.View() + "\n\n")
}

func (m *Model) writeFooter(b *strings.Builder) {
	var hints []string
	switch m.mode {
	case modeAdd:
		hints = []string{"enter add", "esc done"}
	case modeEdit:
		hints = []string{"enter save", "esc cancel"}
	default:
		hints = []string{"a add", "space toggle", "e edit", "d delete"}
		if m.snap.Counts.Completed > 0 {
			hints = append(hints, "c clear completed")
		}
		hints = append(hints, "tab filter", "? help", "q quit")
	}
	b.WriteString(hintStyle.Render(strings.Join(hints, " | ")) + "\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  a, i         Add a task\n")
	b.WriteString("  enter        Submit / save edit\n")
	b.WriteString("  esc          Leave input / cancel edit\n")
	b.WriteString("  space, x     Toggle completed\n")
	b.WriteString("  e            Edit task (active tasks only)\n")
	b.WriteString("  d            Delete task\n")
	b.WriteString("  c            Clear completed\n")
	b.WriteString("  1, 2, 3      Show all / active / completed\n")
	b.WriteString("  tab          Next filter\n")
	b.WriteString("  j, k         Move down / up\n")
	b.WriteString("  ?            Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}
