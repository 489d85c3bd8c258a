package tasks

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"dotask/internal/storage"
)

// Store is the part of storage.Store the collection reads from and writes
// through to.
type Store interface {
	ListAll() ([]storage.Task, error)
	Update(t storage.Task) (int64, error)
	Delete(id int64) (int64, error)
}

type SortKey int

const (
	SortNone SortKey = iota
	SortByDueDate
	SortByName
	SortByPriority
)

func (k SortKey) String() string {
	switch k {
	case SortByDueDate:
		return "due date"
	case SortByName:
		return "name"
	case SortByPriority:
		return "priority"
	default:
		return "none"
	}
}

func ParseSortKey(v string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none":
		return SortNone, nil
	case "due", "due-date", "date":
		return SortByDueDate, nil
	case "name", "title":
		return SortByName, nil
	case "priority":
		return SortByPriority, nil
	}
	return SortNone, fmt.Errorf("unknown sort key %q", v)
}

// Collection is the in-memory task list shown by the UI. It holds at most one
// selected index and remembers the last sort key so that repeating it flips
// the current order.
type Collection struct {
	store    Store
	items    []storage.Task
	selected int
	sortKey  SortKey
	now      func() time.Time
}

func New(store Store) (*Collection, error) {
	c := &Collection{
		store:    store,
		selected: -1,
		now:      time.Now,
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// WithClock replaces the clock used by the date based views.
func (c *Collection) WithClock(now func() time.Time) *Collection {
	c.now = now
	return c
}

// Reload replaces the snapshot with the rows in the store and clears the
// selection. The sort key is kept, so repeating it reverses the store order.
// On error the previous snapshot is kept.
func (c *Collection) Reload() error {
	items, err := c.store.ListAll()
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	c.items = items
	c.selected = -1
	return nil
}

func (c *Collection) Items() []storage.Task {
	return c.items
}

func (c *Collection) Len() int {
	return len(c.items)
}

func (c *Collection) Sort() SortKey {
	return c.sortKey
}

func (c *Collection) SelectNext() {
	switch {
	case c.selected < 0, len(c.items) == 0, c.selected >= len(c.items)-1:
		c.selected = 0
	default:
		c.selected++
	}
}

func (c *Collection) SelectPrevious() {
	switch {
	case c.selected < 0, len(c.items) == 0:
		c.selected = 0
	case c.selected == 0:
		c.selected = len(c.items) - 1
	default:
		c.selected--
	}
}

func (c *Collection) Unselect() {
	c.selected = -1
}

// SelectedIndex reports the selected index. An empty collection can still
// report index 0 after SelectNext; Selected then returns false.
func (c *Collection) SelectedIndex() (int, bool) {
	if c.selected < 0 {
		return 0, false
	}
	return c.selected, true
}

func (c *Collection) Selected() (storage.Task, bool) {
	if c.selected < 0 || c.selected >= len(c.items) {
		return storage.Task{}, false
	}
	return c.items[c.selected], true
}

// ToggleCompleted flips the completed flag of the selected task in the store
// and, once that succeeded, in the snapshot.
func (c *Collection) ToggleCompleted() error {
	t, ok := c.Selected()
	if !ok {
		return nil
	}
	t.Completed = !t.Completed
	n, err := c.store.Update(t)
	if err != nil {
		return fmt.Errorf("toggle task %d: %w", t.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("toggle task %d: %w", t.ID, storage.ErrNotFound)
	}
	c.items[c.selected] = t
	return nil
}

// DeleteSelected removes the selected task from the store and reloads. A
// task without an id is deleted as id 0, which matches no row.
func (c *Collection) DeleteSelected() error {
	if t, ok := c.Selected(); ok {
		if _, err := c.store.Delete(t.ID); err != nil {
			return fmt.Errorf("delete task %d: %w", t.ID, err)
		}
	}
	return c.Reload()
}

func (c *Collection) Uncompleted() []storage.Task {
	return c.filter(func(t storage.Task) bool { return !t.Completed })
}

func (c *Collection) DueWithinNextWeek() []storage.Task {
	limit := c.now().Add(7 * 24 * time.Hour)
	return c.filter(func(t storage.Task) bool {
		return !t.Completed && t.DueDate.Before(limit)
	})
}

func (c *Collection) Overdue() []storage.Task {
	now := c.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return c.filter(func(t storage.Task) bool {
		return !t.Completed && t.DueDate.Before(startOfDay)
	})
}

type Stats struct {
	Total       int
	Uncompleted int
	DueNextWeek int
	Overdue     int
}

func (c *Collection) Stats() Stats {
	return Stats{
		Total:       len(c.items),
		Uncompleted: len(c.Uncompleted()),
		DueNextWeek: len(c.DueWithinNextWeek()),
		Overdue:     len(c.Overdue()),
	}
}

func (c *Collection) filter(keep func(storage.Task) bool) []storage.Task {
	var out []storage.Task
	for _, t := range c.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// SetSort sorts by key. Asking for the key that is already active reverses
// the current order instead of sorting again.
func (c *Collection) SetSort(key SortKey) {
	if key == SortNone {
		return
	}
	if c.sortKey == key {
		slices.Reverse(c.items)
		return
	}
	slices.SortStableFunc(c.items, compareBy(key))
	c.sortKey = key
}

func compareBy(key SortKey) func(a, b storage.Task) int {
	switch key {
	case SortByName:
		return func(a, b storage.Task) int { return strings.Compare(a.Title, b.Title) }
	case SortByPriority:
		return func(a, b storage.Task) int { return a.Priority - b.Priority }
	default:
		return func(a, b storage.Task) int { return a.DueDate.Compare(b.DueDate) }
	}
}
