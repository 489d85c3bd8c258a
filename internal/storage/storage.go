package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Task is a single row of task_item. ID is 0 until the task has been inserted.
type Task struct {
	ID          int64
	Title       string    `validate:"required"`
	Description string    `validate:"required"`
	DueDate     time.Time `validate:"required"`
	Priority    int       `validate:"min=0,max=2"`
	Completed   bool
}

type Store struct {
	db       *sqlx.DB
	log      *zap.Logger
	validate *validator.Validate
}

func Open(dbPath string, log *zap.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, &Error{Op: "open", Err: errors.New("db path is empty")}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, &Error{Op: "open", Err: err}
	}
	db, err := sqlx.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log, validate: validator.New()}
	if err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates task_item if it does not exist yet.
func (s *Store) EnsureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS task_item (
	Id INTEGER PRIMARY KEY AUTOINCREMENT,
	Title TEXT,
	Description TEXT,
	DueDate DATETIME,
	PriorityLevel INT,
	Completed TINYINT
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return s.fail("ensure schema", err)
	}
	return nil
}

func (s *Store) Insert(t Task) (int64, error) {
	if t.ID != 0 {
		return 0, s.fail("insert", ErrHasID)
	}
	if err := s.validate.Struct(t); err != nil {
		return 0, s.fail("insert", err)
	}
	res, err := s.db.Exec(`INSERT INTO task_item (Title, Description, DueDate, PriorityLevel, Completed) VALUES (?, ?, ?, ?, ?);`,
		t.Title, t.Description, formatDue(t.DueDate), t.Priority, boolToInt(t.Completed))
	if err != nil {
		return 0, s.fail("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.fail("insert", err)
	}
	return id, nil
}

// Update rewrites every column of the row with t.ID and reports the rows
// affected. Zero means the id no longer exists.
func (s *Store) Update(t Task) (int64, error) {
	if t.ID == 0 {
		return 0, s.fail("update", ErrMissingID)
	}
	if err := s.validate.Struct(t); err != nil {
		return 0, s.fail("update", err)
	}
	res, err := s.db.Exec(`UPDATE task_item SET Title = ?, Description = ?, DueDate = ?, PriorityLevel = ?, Completed = ? WHERE Id = ?;`,
		t.Title, t.Description, formatDue(t.DueDate), t.Priority, boolToInt(t.Completed), t.ID)
	if err != nil {
		return 0, s.fail("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("update", err)
	}
	return n, nil
}

func (s *Store) Delete(id int64) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM task_item WHERE Id = ?;`, id)
	if err != nil {
		return 0, s.fail("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("delete", err)
	}
	return n, nil
}

// ListAll returns every readable row in insertion order. Rows that cannot be
// decoded are dropped and logged so one corrupt record does not hide the list.
func (s *Store) ListAll() ([]Task, error) {
	rows, err := s.db.Queryx(`SELECT Id, Title, Description, DueDate, PriorityLevel, Completed FROM task_item ORDER BY Id;`)
	if err != nil {
		return nil, s.fail("list", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var r taskRow
		if err := rows.StructScan(&r); err != nil {
			s.log.Warn("dropping unreadable task row", zap.Error(err))
			continue
		}
		t, err := r.task()
		if err != nil {
			s.log.Warn("dropping malformed task row", zap.Int64("id", r.ID), zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", err)
	}
	return tasks, nil
}

func (s *Store) Get(id int64) (Task, error) {
	var r taskRow
	err := s.db.QueryRowx(`SELECT Id, Title, Description, DueDate, PriorityLevel, Completed FROM task_item WHERE Id = ?;`, id).StructScan(&r)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, &Error{Op: "get", Err: ErrNotFound}
	}
	if err != nil {
		return Task{}, s.fail("get", err)
	}
	t, err := r.task()
	if err != nil {
		return Task{}, s.fail("get", err)
	}
	return t, nil
}

func (s *Store) fail(op string, err error) error {
	s.log.Error("storage operation failed", zap.String("op", op), zap.Error(err))
	return &Error{Op: op, Err: err}
}

type taskRow struct {
	ID          int64          `db:"Id"`
	Title       sql.NullString `db:"Title"`
	Description sql.NullString `db:"Description"`
	DueDate     sql.NullString `db:"DueDate"`
	Priority    sql.NullInt64  `db:"PriorityLevel"`
	Completed   sql.NullInt64  `db:"Completed"`
}

func (r taskRow) task() (Task, error) {
	if !r.Title.Valid || !r.Description.Valid {
		return Task{}, errors.New("missing title or description")
	}
	if !r.DueDate.Valid {
		return Task{}, errors.New("missing due date")
	}
	due, err := parseDue(r.DueDate.String)
	if err != nil {
		return Task{}, err
	}
	if !r.Priority.Valid || !r.Completed.Valid {
		return Task{}, errors.New("missing priority or completed flag")
	}
	return Task{
		ID:          r.ID,
		Title:       r.Title.String,
		Description: r.Description.String,
		DueDate:     due,
		Priority:    int(r.Priority.Int64),
		Completed:   r.Completed.Int64 != 0,
	}, nil
}

// Databases written by earlier versions of the app store DueDate as
// "2006-01-02 15:04:05+00:00" rather than RFC3339.
var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseDue(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable due date %q", v)
}

func formatDue(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
