package editor

import (
	"fmt"
	"strconv"
	"time"

	"dotask/internal/storage"
)

// MaxRow is the index of the last field row. The field set is fixed.
const MaxRow = 3

const (
	RowTitle = iota
	RowDescription
	RowDueDate
	RowPriority
)

// DateLayout is the dd.mm.yyyy format used to show due dates.
const DateLayout = "02.01.2006"

// dateInputLayout also accepts one digit days and months, like 1.2.2024.
const dateInputLayout = "2.1.2006"

const (
	msgBadDate          = "Date should be in format dd.mm.yyyy"
	msgEmptyTitle       = "Title cannot be empty"
	msgEmptyDescription = "Description cannot be empty"
)

var (
	Labels       = [MaxRow + 1]string{"Title:", "Description:", "Due date:", "Priority:"}
	Placeholders = [MaxRow + 1]string{"My task name", "My description", "23.11.2023", "0"}
)

// Writer is the part of storage.Store a commit needs.
type Writer interface {
	Insert(t storage.Task) (int64, error)
	Update(t storage.Task) (int64, error)
}

type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

type Cursor struct {
	Column int
	Row    int
}

// ValidationError is returned by Commit when a field does not validate. The
// editor stays open and Err reports the same message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// State is the task dialog: four text fields and a cursor.
type State struct {
	store    Writer
	active   bool
	targetID int64
	fields   [MaxRow + 1][]rune
	cursor   Cursor
	err      string
}

func New(store Writer) *State {
	return &State{store: store}
}

func (s *State) Active() bool {
	return s.active
}

func (s *State) Mode() Mode {
	switch {
	case !s.active:
		return ModeClosed
	case s.targetID != 0:
		return ModeEdit
	default:
		return ModeCreate
	}
}

// TargetID is the id being edited, or 0 when creating.
func (s *State) TargetID() int64 {
	return s.targetID
}

func (s *State) Cursor() Cursor {
	return s.cursor
}

func (s *State) Err() string {
	return s.err
}

func (s *State) Field(row int) string {
	if row < 0 || row > MaxRow {
		return ""
	}
	return string(s.fields[row])
}

// OpenCreate opens an empty dialog. The cursor starts past the title
// placeholder; the first typed rune moves it back to column 0.
func (s *State) OpenCreate() {
	s.reset()
	s.active = true
	s.cursor = Cursor{Column: len([]rune(Placeholders[RowTitle])), Row: RowTitle}
}

func (s *State) OpenEdit(t storage.Task) {
	s.reset()
	s.active = true
	s.targetID = t.ID
	s.fields[RowTitle] = []rune(t.Title)
	s.fields[RowDescription] = []rune(t.Description)
	s.fields[RowDueDate] = []rune(t.DueDate.Format(DateLayout))
	s.fields[RowPriority] = []rune(strconv.Itoa(t.Priority))
}

func (s *State) Cancel() {
	s.reset()
}

func (s *State) reset() {
	s.active = false
	s.targetID = 0
	s.fields = [MaxRow + 1][]rune{}
	s.cursor = Cursor{}
	s.err = ""
}

func (s *State) rowLen(row int) int {
	return len(s.fields[row])
}

func (s *State) MoveDown() {
	if !s.active {
		return
	}
	row := min(s.cursor.Row+1, MaxRow)
	s.cursor = Cursor{Column: min(s.cursor.Column, s.rowLen(row)), Row: row}
}

// MoveUp keeps the column as is, even when the row above is shorter.
func (s *State) MoveUp() {
	if !s.active {
		return
	}
	s.cursor.Row = max(s.cursor.Row-1, 0)
}

func (s *State) MoveLeft() {
	if !s.active {
		return
	}
	s.cursor.Column = max(s.cursor.Column-1, 0)
}

func (s *State) MoveRight() {
	if !s.active {
		return
	}
	s.cursor.Column = min(s.cursor.Column+1, s.rowLen(s.cursor.Row))
}

// InsertChar types r at the cursor. The priority row holds a single digit
// which is replaced by 0, 1 or 2 and left alone for anything else.
func (s *State) InsertChar(r rune) {
	if !s.active {
		return
	}
	row := s.cursor.Row
	if s.rowLen(row) == 0 {
		s.cursor.Column = 0
	}
	col := min(s.cursor.Column, s.rowLen(row))
	s.cursor.Column = col

	if row == RowPriority {
		if r >= '0' && r <= '2' {
			s.fields[row] = []rune{r}
		}
	} else {
		f := s.fields[row]
		f = append(f[:col], append([]rune{r}, f[col:]...)...)
		s.fields[row] = f
	}
	s.MoveRight()
}

// DeleteChar removes the rune under the cursor, or the last rune when the
// cursor sits at the end, and moves left. The priority row is never shortened.
func (s *State) DeleteChar() {
	if !s.active || s.cursor.Column == 0 {
		return
	}
	row := s.cursor.Row
	if row != RowPriority && s.rowLen(row) > 0 {
		pos := s.cursor.Column
		if pos >= s.rowLen(row) {
			pos = s.rowLen(row) - 1
		}
		f := s.fields[row]
		s.fields[row] = append(f[:pos], f[pos+1:]...)
	}
	s.MoveLeft()
	s.cursor.Column = min(s.cursor.Column, s.rowLen(row))
}

// Commit validates the fields and writes the task. Validation failures keep
// the dialog open and set Err. A store failure also keeps it open but leaves
// Err untouched; the caller reports it.
func (s *State) Commit() error {
	if !s.active {
		return nil
	}
	task, verr := s.build()
	if verr != nil {
		s.err = verr.Message
		return verr
	}
	s.err = ""

	if s.targetID != 0 {
		n, err := s.store.Update(task)
		if err != nil {
			return fmt.Errorf("update task %d: %w", task.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("update task %d: %w", task.ID, storage.ErrNotFound)
		}
	} else {
		if _, err := s.store.Insert(task); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
	}
	s.reset()
	return nil
}

func (s *State) build() (storage.Task, *ValidationError) {
	due, err := ParseDate(string(s.fields[RowDueDate]))
	if err != nil {
		return storage.Task{}, &ValidationError{Message: msgBadDate}
	}
	if len(s.fields[RowTitle]) == 0 {
		return storage.Task{}, &ValidationError{Message: msgEmptyTitle}
	}
	if len(s.fields[RowDescription]) == 0 {
		return storage.Task{}, &ValidationError{Message: msgEmptyDescription}
	}
	priority := 0
	if p := s.fields[RowPriority]; len(p) == 1 && p[0] >= '0' && p[0] <= '2' {
		priority = int(p[0] - '0')
	}
	return storage.Task{
		ID:          s.targetID,
		Title:       string(s.fields[RowTitle]),
		Description: string(s.fields[RowDescription]),
		DueDate:     due,
		Priority:    priority,
		Completed:   false,
	}, nil
}

// ParseDate reads a dd.mm.yyyy date as midnight UTC.
func ParseDate(v string) (time.Time, error) {
	return time.ParseInLocation(dateInputLayout, v, time.UTC)
}
