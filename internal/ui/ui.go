package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"dotask/internal/config"
	"dotask/internal/editor"
	"dotask/internal/tasks"
)

// Store is everything the list and the editor need from storage.
type Store interface {
	tasks.Store
	editor.Writer
}

type Model struct {
	tasks      *tasks.Collection
	editor     *editor.State
	listKeys   listKeyMap
	editorKeys editorKeyMap
	help       help.Model
	status     string
	width      int
	log        *zap.Logger
}

func New(store Store, cfg config.Config, log *zap.Logger) (Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	list, err := tasks.New(store)
	if err != nil {
		return Model{}, err
	}
	return Model{
		tasks:      list,
		editor:     editor.New(store),
		listKeys:   newListKeyMap(cfg.Keys),
		editorKeys: newEditorKeyMap(cfg.Keys),
		help:       help.New(),
		status:     "Press 'a' to add a task.",
		log:        log,
	}, nil
}

func Run(store Store, cfg config.Config, log *zap.Logger) error {
	m, err := New(store, cfg, log)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editor.Active() {
			return m.updateEditor(msg)
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.listKeys.resolve(msg) {
	case actionQuit:
		return m, tea.Quit
	case actionDelete:
		t, ok := m.tasks.Selected()
		if err := m.tasks.DeleteSelected(); err != nil {
			return m.fail("delete", err), nil
		}
		if ok {
			m.status = fmt.Sprintf("Deleted %q", t.Title)
		}
	case actionUnselect:
		m.tasks.Unselect()
	case actionNext:
		m.tasks.SelectNext()
	case actionPrevious:
		m.tasks.SelectPrevious()
	case actionCreate:
		m.editor.OpenCreate()
		m.status = ""
	case actionEdit:
		t, ok := m.tasks.Selected()
		if !ok {
			m.status = "No task selected"
			return m, nil
		}
		m.editor.OpenEdit(t)
		m.status = ""
	case actionSortDue:
		m = m.sortBy(tasks.SortByDueDate)
	case actionSortName:
		m = m.sortBy(tasks.SortByName)
	case actionSortPriority:
		m = m.sortBy(tasks.SortByPriority)
	case actionToggle:
		if err := m.tasks.ToggleCompleted(); err != nil {
			return m.fail("toggle", err), nil
		}
	}
	return m, nil
}

func (m Model) sortBy(key tasks.SortKey) Model {
	reversed := m.tasks.Sort() == key
	m.tasks.SetSort(key)
	if reversed {
		m.status = fmt.Sprintf("Reversed order (%s)", key)
	} else {
		m.status = fmt.Sprintf("Sorted by %s", key)
	}
	return m
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.editorKeys.resolve(msg) {
	case actionFieldDown:
		m.editor.MoveDown()
	case actionFieldUp:
		m.editor.MoveUp()
	case actionCursorLeft:
		m.editor.MoveLeft()
	case actionCursorRight:
		m.editor.MoveRight()
	case actionCancel:
		m.editor.Cancel()
		m.status = "Edit cancelled"
	case actionSave:
		return m.save(), nil
	case actionBackspace:
		m.editor.DeleteChar()
	case actionInsert:
		if msg.Type == tea.KeySpace {
			m.editor.InsertChar(' ')
			break
		}
		for _, r := range msg.Runes {
			m.editor.InsertChar(r)
		}
	}
	return m, nil
}

func (m Model) save() Model {
	editing := m.editor.Mode() == editor.ModeEdit
	err := m.editor.Commit()
	var verr *editor.ValidationError
	switch {
	case errors.As(err, &verr):
		// shown inside the dialog
		return m
	case err != nil:
		return m.fail("save", err)
	}
	if err := m.tasks.Reload(); err != nil {
		return m.fail("reload", err)
	}
	if editing {
		m.status = "Task updated"
	} else {
		m.status = "Task added"
	}
	return m
}

func (m Model) fail(op string, err error) Model {
	m.log.Error("action failed", zap.String("action", op), zap.Error(err))
	m.status = fmt.Sprintf("%s failed: %v", op, err)
	return m
}
