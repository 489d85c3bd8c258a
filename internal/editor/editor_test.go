package editor

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"dotask/internal/storage"
)

type fakeWriter struct {
	inserted []storage.Task
	updated  []storage.Task
	err      error
	affected int64
}

func (f *fakeWriter) Insert(t storage.Task) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, t)
	return int64(len(f.inserted)), nil
}

func (f *fakeWriter) Update(t storage.Task) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.updated = append(f.updated, t)
	return f.affected, nil
}

func typeString(s *State, v string) {
	for _, r := range v {
		s.InsertChar(r)
	}
}

func existingTask() storage.Task {
	return storage.Task{
		ID:          9,
		Title:       "Pay rent",
		Description: "before the 5th",
		DueDate:     time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC),
		Priority:    1,
		Completed:   true,
	}
}

func TestOpenCreate(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	if !s.Active() || s.Mode() != ModeCreate {
		t.Fatalf("expected open create dialog, got active=%v mode=%v", s.Active(), s.Mode())
	}
	for row := 0; row <= MaxRow; row++ {
		if s.Field(row) != "" {
			t.Fatalf("expected empty field %d, got %q", row, s.Field(row))
		}
	}
	if want := (Cursor{Column: len(Placeholders[RowTitle]), Row: 0}); s.Cursor() != want {
		t.Fatalf("expected cursor %+v, got %+v", want, s.Cursor())
	}
}

func TestOpenEdit(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenEdit(existingTask())
	if s.Mode() != ModeEdit || s.TargetID() != 9 {
		t.Fatalf("expected edit of 9, got mode=%v id=%d", s.Mode(), s.TargetID())
	}
	want := []string{"Pay rent", "before the 5th", "03.01.2024", "1"}
	for row, v := range want {
		if got := s.Field(row); got != v {
			t.Fatalf("field %d: got %q want %q", row, got, v)
		}
	}
	if s.Cursor() != (Cursor{}) {
		t.Fatalf("expected cursor at origin, got %+v", s.Cursor())
	}
}

func TestCancelDiscards(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	typeString(s, "abc")
	_ = s.Commit()
	s.Cancel()
	if s.Active() || s.Err() != "" || s.Field(RowTitle) != "" {
		t.Fatalf("expected closed clean state, got active=%v err=%q title=%q", s.Active(), s.Err(), s.Field(RowTitle))
	}
}

func TestFirstCharOnEmptyFieldStartsAtColumnZero(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	s.InsertChar('A')
	if s.Field(RowTitle) != "A" {
		t.Fatalf("expected title A, got %q", s.Field(RowTitle))
	}
	if s.Cursor() != (Cursor{Column: 1, Row: 0}) {
		t.Fatalf("unexpected cursor %+v", s.Cursor())
	}
}

func TestInsertInMiddle(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenEdit(existingTask())
	s.MoveRight()
	s.MoveRight()
	s.MoveRight()
	typeString(s, "XY")
	if got := s.Field(RowTitle); got != "PayXY rent" {
		t.Fatalf("got %q", got)
	}
	if s.Cursor().Column != 5 {
		t.Fatalf("expected column 5, got %d", s.Cursor().Column)
	}
}

func TestMoveDownClampsColumn(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenEdit(existingTask())
	for i := 0; i < 20; i++ {
		s.MoveRight()
	}
	if s.Cursor().Column != len("Pay rent") {
		t.Fatalf("move right should stop at end, got %d", s.Cursor().Column)
	}
	s.MoveDown()
	s.MoveDown()
	s.MoveDown()
	if s.Cursor() != (Cursor{Column: 1, Row: RowPriority}) {
		t.Fatalf("expected clamp to priority length, got %+v", s.Cursor())
	}
	s.MoveDown()
	if s.Cursor().Row != MaxRow {
		t.Fatalf("row went past MaxRow: %+v", s.Cursor())
	}
}

func TestMoveUpKeepsColumn(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenEdit(existingTask())
	s.MoveDown()
	for i := 0; i < 20; i++ {
		s.MoveRight()
	}
	s.MoveUp()
	want := Cursor{Column: len("before the 5th"), Row: RowTitle}
	if s.Cursor() != want {
		t.Fatalf("expected %+v, got %+v", want, s.Cursor())
	}
	s.MoveUp()
	if s.Cursor().Row != 0 {
		t.Fatalf("row went below 0: %+v", s.Cursor())
	}
}

func TestMoveLeftStopsAtZero(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenEdit(existingTask())
	s.MoveLeft()
	if s.Cursor().Column != 0 {
		t.Fatalf("expected column 0, got %d", s.Cursor().Column)
	}
}

func TestDeleteCharAtEndIsBackspace(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	typeString(s, "abc")
	s.DeleteChar()
	if s.Field(RowTitle) != "ab" || s.Cursor().Column != 2 {
		t.Fatalf("got %q at %d", s.Field(RowTitle), s.Cursor().Column)
	}
}

func TestDeleteCharInsideRemovesUnderCursor(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	typeString(s, "abcd")
	s.MoveLeft()
	s.MoveLeft()
	s.DeleteChar()
	if s.Field(RowTitle) != "abd" || s.Cursor().Column != 1 {
		t.Fatalf("got %q at %d", s.Field(RowTitle), s.Cursor().Column)
	}
}

func TestDeleteCharAtColumnZeroIsNoop(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenEdit(existingTask())
	s.DeleteChar()
	if s.Field(RowTitle) != "Pay rent" || s.Cursor().Column != 0 {
		t.Fatalf("got %q at %d", s.Field(RowTitle), s.Cursor().Column)
	}
}

func TestDeleteCharLeavesPriorityDigit(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenEdit(existingTask())
	s.MoveDown()
	s.MoveDown()
	s.MoveDown()
	s.MoveRight()
	s.DeleteChar()
	if s.Field(RowPriority) != "1" {
		t.Fatalf("priority changed to %q", s.Field(RowPriority))
	}
	if s.Cursor().Column != 0 {
		t.Fatalf("expected cursor to move left, got %d", s.Cursor().Column)
	}
}

func TestPriorityDigits(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenEdit(existingTask())
	s.MoveDown()
	s.MoveDown()
	s.MoveDown()

	s.InsertChar('5')
	if s.Field(RowPriority) != "1" {
		t.Fatalf("invalid digit changed priority to %q", s.Field(RowPriority))
	}
	s.InsertChar('2')
	if s.Field(RowPriority) != "2" {
		t.Fatalf("expected priority 2, got %q", s.Field(RowPriority))
	}
	s.InsertChar('0')
	if s.Field(RowPriority) != "0" {
		t.Fatalf("expected overwrite to 0, got %q", s.Field(RowPriority))
	}
	if s.Cursor().Column != 1 {
		t.Fatalf("expected cursor clamped to 1, got %d", s.Cursor().Column)
	}
}

func TestPriorityOnEmptyField(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	s.MoveDown()
	s.MoveDown()
	s.MoveDown()
	s.InsertChar('x')
	if s.Field(RowPriority) != "" || s.Cursor().Column != 0 {
		t.Fatalf("got %q at %d", s.Field(RowPriority), s.Cursor().Column)
	}
	s.InsertChar('2')
	if s.Field(RowPriority) != "2" || s.Cursor().Column != 1 {
		t.Fatalf("got %q at %d", s.Field(RowPriority), s.Cursor().Column)
	}
}

func TestCommitIncompleteDateScenario(t *testing.T) {
	w := &fakeWriter{}
	s := New(w)
	s.OpenCreate()
	s.InsertChar('A')
	s.MoveDown()
	s.InsertChar('A')
	s.MoveDown()
	typeString(s, "01.2024")

	err := s.Commit()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Err() != "Date should be in format dd.mm.yyyy" {
		t.Fatalf("unexpected message %q", s.Err())
	}
	if !s.Active() {
		t.Fatalf("dialog closed on invalid date")
	}
	if len(w.inserted) != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestCommitRejectsImpossibleDay(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	typeString(s, "t")
	s.MoveDown()
	typeString(s, "d")
	s.MoveDown()
	typeString(s, "31.02.2024")
	if err := s.Commit(); err == nil || !s.Active() || s.Err() == "" {
		t.Fatalf("expected open dialog with error, got err=%v active=%v msg=%q", err, s.Active(), s.Err())
	}
}

func TestCommitValidationOrder(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	_ = s.Commit()
	if s.Err() != "Date should be in format dd.mm.yyyy" {
		t.Fatalf("date should be checked first, got %q", s.Err())
	}

	s.MoveDown()
	s.MoveDown()
	typeString(s, "01.02.2024")
	_ = s.Commit()
	if s.Err() != "Title cannot be empty" {
		t.Fatalf("got %q", s.Err())
	}
	if !s.Active() {
		t.Fatalf("dialog closed with empty title")
	}

	s.MoveUp()
	s.MoveUp()
	typeString(s, "title")
	_ = s.Commit()
	if s.Err() != "Description cannot be empty" {
		t.Fatalf("got %q", s.Err())
	}
}

func TestCommitCreateInserts(t *testing.T) {
	w := &fakeWriter{}
	s := New(w)
	s.OpenCreate()
	typeString(s, "Buy milk")
	s.MoveDown()
	typeString(s, "two litres")
	s.MoveDown()
	typeString(s, "24.12.2024")
	s.MoveDown()
	s.InsertChar('2')

	if err := s.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if s.Active() {
		t.Fatalf("expected dialog closed")
	}
	if len(w.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(w.inserted))
	}
	got := w.inserted[0]
	want := storage.Task{
		Title:       "Buy milk",
		Description: "two litres",
		DueDate:     time.Date(2024, time.December, 24, 0, 0, 0, 0, time.UTC),
		Priority:    2,
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestCommitDefaultsPriorityToZero(t *testing.T) {
	w := &fakeWriter{}
	s := New(w)
	s.OpenCreate()
	typeString(s, "t")
	s.MoveDown()
	typeString(s, "d")
	s.MoveDown()
	typeString(s, "01.01.2025")
	if err := s.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if w.inserted[0].Priority != 0 {
		t.Fatalf("expected priority 0, got %d", w.inserted[0].Priority)
	}
}

func TestCommitEditUpdatesAndResetsCompleted(t *testing.T) {
	w := &fakeWriter{affected: 1}
	s := New(w)
	s.OpenEdit(existingTask())
	if err := s.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(w.updated) != 1 || len(w.inserted) != 0 {
		t.Fatalf("expected one update, got updates=%d inserts=%d", len(w.updated), len(w.inserted))
	}
	got := w.updated[0]
	if got.ID != 9 || got.Completed {
		t.Fatalf("expected id 9 saved as pending, got %+v", got)
	}
}

func TestCommitStoreFailureKeepsDialogWithoutMessage(t *testing.T) {
	boom := errors.New("disk full")
	w := &fakeWriter{err: boom}
	s := New(w)
	s.OpenEdit(existingTask())
	err := s.Commit()
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if !s.Active() {
		t.Fatalf("dialog closed after failed write")
	}
	if s.Err() != "" {
		t.Fatalf("store failure should not set a dialog message, got %q", s.Err())
	}
	if s.Field(RowTitle) != "Pay rent" {
		t.Fatalf("buffers lost after failed write")
	}
}

func TestCommitStaleEdit(t *testing.T) {
	s := New(&fakeWriter{affected: 0})
	s.OpenEdit(existingTask())
	if err := s.Commit(); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !s.Active() {
		t.Fatalf("dialog closed after stale update")
	}
}

func TestClosedEditorIgnoresInput(t *testing.T) {
	w := &fakeWriter{}
	s := New(w)
	s.InsertChar('a')
	s.MoveDown()
	s.DeleteChar()
	if err := s.Commit(); err != nil {
		t.Fatalf("commit on closed editor: %v", err)
	}
	if s.Field(RowTitle) != "" || s.Cursor() != (Cursor{}) || len(w.inserted) != 0 {
		t.Fatalf("closed editor changed state")
	}
}

func TestUnicodeFieldsCountRunes(t *testing.T) {
	s := New(&fakeWriter{})
	s.OpenCreate()
	typeString(s, "héllo")
	if s.Cursor().Column != 5 {
		t.Fatalf("expected 5 runes, got column %d", s.Cursor().Column)
	}
	s.DeleteChar()
	if s.Field(RowTitle) != "héll" {
		t.Fatalf("got %q", s.Field(RowTitle))
	}
}

// Random walks over every operation except MoveUp, which keeps its column on
// purpose, must keep the cursor inside the current field.
func TestCursorInvariantUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	runes := []rune("ab0129.x ")
	s := New(&fakeWriter{affected: 1})
	s.OpenEdit(existingTask())
	for i := 0; i < 5000; i++ {
		switch rng.Intn(6) {
		case 0:
			s.MoveDown()
		case 1:
			s.MoveLeft()
		case 2:
			s.MoveRight()
		case 3:
			s.InsertChar(runes[rng.Intn(len(runes))])
		case 4:
			s.DeleteChar()
		case 5:
			s.MoveUp()
			s.cursor.Column = min(s.cursor.Column, len(s.fields[s.cursor.Row]))
		}
		c := s.Cursor()
		if c.Row < 0 || c.Row > MaxRow {
			t.Fatalf("step %d: row out of range %+v", i, c)
		}
		if c.Column < 0 || c.Column > len([]rune(s.Field(c.Row))) {
			t.Fatalf("step %d: column %d outside field %q", i, c.Column, s.Field(c.Row))
		}
	}
}

func TestParseDateSingleDigits(t *testing.T) {
	want := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	for _, v := range []string{"1.2.2024", "01.2.2024", "1.02.2024", "01.02.2024"} {
		got, err := ParseDate(v)
		if err != nil {
			t.Fatalf("parse %q: %v", v, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: got %v want %v", v, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("23.11.2023")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := time.Date(2023, time.November, 23, 0, 0, 0, 0, time.UTC); !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("got %v want %v", got, want)
	}
	for _, bad := range []string{"", "2023-11-23", "31.02.2024", "32.1.2024", "01.2024"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
