package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"dotask/internal/config"
)

type action int

const (
	actionNone action = iota

	actionQuit
	actionDelete
	actionUnselect
	actionNext
	actionPrevious
	actionCreate
	actionEdit
	actionSortDue
	actionSortName
	actionSortPriority
	actionToggle

	actionFieldDown
	actionFieldUp
	actionCursorLeft
	actionCursorRight
	actionCancel
	actionSave
	actionBackspace
	actionInsert
)

type listKeyMap struct {
	Quit         key.Binding
	Delete       key.Binding
	Unselect     key.Binding
	Next         key.Binding
	Previous     key.Binding
	Add          key.Binding
	Edit         key.Binding
	SortDue      key.Binding
	SortName     key.Binding
	SortPriority key.Binding
	Toggle       key.Binding
}

type editorKeyMap struct {
	Down      key.Binding
	Up        key.Binding
	Left      key.Binding
	Right     key.Binding
	Cancel    key.Binding
	Save      key.Binding
	Backspace key.Binding
}

func binding(keys, help string) key.Binding {
	var names []string
	for _, k := range strings.Split(keys, ",") {
		if k == " " {
			names = append(names, k)
		} else if k = strings.TrimSpace(k); k != "" {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	return key.NewBinding(
		key.WithKeys(names...),
		key.WithHelp(names[0], help),
	)
}

func newListKeyMap(k config.Keymap) listKeyMap {
	return listKeyMap{
		Quit:         binding(k.Quit, "quit"),
		Delete:       binding(k.Delete, "delete a task"),
		Unselect:     binding(k.Unselect, "unselect"),
		Next:         binding(k.Next, "next"),
		Previous:     binding(k.Previous, "previous"),
		Add:          binding(k.Add, "add a task"),
		Edit:         binding(k.Edit, "edit a task"),
		SortDue:      binding(k.SortDue, "sort by due date"),
		SortName:     binding(k.SortName, "sort by name"),
		SortPriority: binding(k.SortPriority, "sort by priority"),
		Toggle:       binding(k.Toggle, "toggle do/done"),
	}
}

func newEditorKeyMap(k config.Keymap) editorKeyMap {
	return editorKeyMap{
		Down:      binding(k.FieldDown, "next field"),
		Up:        binding(k.FieldUp, "previous field"),
		Left:      binding(k.CursorLeft, "left"),
		Right:     binding(k.CursorRight, "right"),
		Cancel:    binding(k.Cancel, "cancel"),
		Save:      binding(k.Save, "save"),
		Backspace: binding(k.DeleteBackward, "delete"),
	}
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Add, k.Edit, k.Delete, k.SortDue, k.SortName, k.SortPriority, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Add, k.Edit, k.Delete},
		{k.SortDue, k.SortName, k.SortPriority},
		{k.Next, k.Previous, k.Unselect, k.Quit},
	}
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Save, k.Cancel, k.Up, k.Down, k.Left, k.Right, k.Backspace}}
}

func (k listKeyMap) resolve(msg tea.KeyMsg) action {
	switch {
	case key.Matches(msg, k.Quit):
		return actionQuit
	case key.Matches(msg, k.Delete):
		return actionDelete
	case key.Matches(msg, k.Unselect):
		return actionUnselect
	case key.Matches(msg, k.Next):
		return actionNext
	case key.Matches(msg, k.Previous):
		return actionPrevious
	case key.Matches(msg, k.Add):
		return actionCreate
	case key.Matches(msg, k.Edit):
		return actionEdit
	case key.Matches(msg, k.SortDue):
		return actionSortDue
	case key.Matches(msg, k.SortName):
		return actionSortName
	case key.Matches(msg, k.SortPriority):
		return actionSortPriority
	case key.Matches(msg, k.Toggle):
		return actionToggle
	}
	return actionNone
}

// resolve maps an editor key. Bound keys win; any other printable rune is
// typed into the field.
func (k editorKeyMap) resolve(msg tea.KeyMsg) action {
	switch {
	case key.Matches(msg, k.Down):
		return actionFieldDown
	case key.Matches(msg, k.Up):
		return actionFieldUp
	case key.Matches(msg, k.Left):
		return actionCursorLeft
	case key.Matches(msg, k.Right):
		return actionCursorRight
	case key.Matches(msg, k.Cancel):
		return actionCancel
	case key.Matches(msg, k.Save):
		return actionSave
	case key.Matches(msg, k.Backspace):
		return actionBackspace
	}
	if (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) && !msg.Alt {
		return actionInsert
	}
	return actionNone
}
