package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"dotask/internal/editor"
	"dotask/internal/storage"
	"dotask/internal/tasks"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("237"))
	grayStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3e3e3e"))
	whiteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	priorityStyles = map[int]lipgloss.Style{
		0: whiteStyle,
		1: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		2: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

const (
	sidebarWidth = 32
	labelWidth   = 13
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasks"))
	if k := m.tasks.Sort(); k != tasks.SortNone {
		b.WriteString(statusStyle.Render(" • sorted by " + k.String()))
	}
	b.WriteString("\n\n")

	if m.editor.Active() {
		b.WriteString(m.renderEditor())
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderTaskList(), " ", m.renderSidebar()))
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	return b.String()
}

func (m Model) listWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width-sidebarWidth-6, 20)
}

func (m Model) renderTaskList() string {
	width := m.listWidth()
	items := m.tasks.Items()
	if len(items) == 0 {
		return boxStyle.Width(width).Render("No tasks yet.")
	}
	selected, hasSelection := m.tasks.SelectedIndex()
	rows := make([]string, 0, len(items))
	for i, t := range items {
		row := renderTask(t, width-2)
		if hasSelection && i == selected {
			row = selectedStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return boxStyle.Width(width).Render(strings.Join(rows, "\n"))
}

func renderTask(t storage.Task, width int) string {
	checkbox := "[ ] "
	if t.Completed {
		checkbox = "[✓] "
	}
	style, ok := priorityStyles[t.Priority]
	if !ok {
		style = whiteStyle
	}
	first := checkbox + style.Render(truncate.StringWithTail(t.Title, uint(max(width-4, 1)), "…"))
	second := fmt.Sprintf("    Due: %s Description: %s", t.DueDate.Format(editor.DateLayout), t.Description)
	return first + "\n" + truncate.StringWithTail(second, uint(max(width, 1)), "…")
}

func (m Model) renderSidebar() string {
	s := m.tasks.Stats()
	stats := strings.Join([]string{
		fmt.Sprintf("Total tasks: %d", s.Total),
		fmt.Sprintf("Uncompleted tasks: %d", s.Uncompleted),
		fmt.Sprintf("Due next week: %d", s.DueNextWeek),
		fmt.Sprintf("Late: %d", s.Overdue),
	}, "\n")

	var help []string
	for _, group := range m.listKeys.FullHelp() {
		for _, k := range group {
			h := k.Help()
			help = append(help, fmt.Sprintf("%s - %s", h.Key, h.Desc))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		boxStyle.Width(sidebarWidth).Render(stats),
		boxStyle.Width(sidebarWidth).Render(strings.Join(help, "\n")),
	)
}

func (m Model) renderEditor() string {
	cur := m.editor.Cursor()
	lines := make([]string, 0, editor.MaxRow+4)
	for row := 0; row <= editor.MaxRow; row++ {
		label := whiteStyle.Render(fmt.Sprintf("%-*s", labelWidth, editor.Labels[row]))
		lines = append(lines, label+renderField(m.editor.Field(row), editor.Placeholders[row], row == cur.Row, cur.Column))
	}
	lines = append(lines, "")
	if msg := m.editor.Err(); msg != "" {
		lines = append(lines, errorStyle.Render(msg), "")
	}
	lines = append(lines, m.help.View(m.editorKeys))

	title := "New task"
	if m.editor.Mode() == editor.ModeEdit {
		title = fmt.Sprintf("Edit task #%d", m.editor.TargetID())
	}
	return boxStyle.Render(titleStyle.Render(title) + "\n\n" + strings.Join(lines, "\n"))
}

// renderField draws a field value with the cell under the cursor inverted.
// Empty fields show their placeholder in gray.
func renderField(value, placeholder string, focused bool, column int) string {
	if value == "" {
		ph := []rune(placeholder)
		if !focused || len(ph) == 0 {
			return grayStyle.Render(placeholder)
		}
		return cursorStyle.Render(string(ph[:1])) + grayStyle.Render(string(ph[1:]))
	}
	if !focused {
		return whiteStyle.Render(value)
	}
	v := []rune(value)
	col := min(column, len(v))
	out := whiteStyle.Render(string(v[:col]))
	if col < len(v) {
		out += cursorStyle.Render(string(v[col:col+1])) + whiteStyle.Render(string(v[col+1:]))
	} else {
		out += cursorStyle.Render(" ")
	}
	return out
}
