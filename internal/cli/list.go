package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"dotask/internal/editor"
	"dotask/internal/storage"
	"dotask/internal/tasks"
)

func addList(topLevel *cobra.Command, o *options) {
	var (
		sortBy  string
		pending bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "print tasks without starting the interface",
		Example: `
todo list
todo list --sort priority --pending
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := tasks.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := tasks.New(s.store)
			if err != nil {
				return err
			}
			c.SetSort(key)
			items := c.Items()
			if pending {
				items = c.Uncompleted()
			}
			printTasks(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by due, name or priority")
	cmd.Flags().BoolVar(&pending, "pending", false, "only show uncompleted tasks")
	topLevel.AddCommand(cmd)
}

func addStats(topLevel *cobra.Command, o *options) {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "print task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := tasks.New(s.store)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), c.Stats())
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command, o *options) {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "print a single task",
		Example: `
todo show 3
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.store.Get(id)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("task %d not found", id)
			}
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

var priorityColors = map[int]*color.Color{
	0: color.New(),
	1: color.New(color.FgYellow),
	2: color.New(color.FgRed),
}

func printTasks(w io.Writer, items []storage.Task) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 50
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Done"), bold.Sprint("Title"), bold.Sprint("Due"), bold.Sprint("Description"))
	for _, t := range items {
		done := "[ ]"
		if t.Completed {
			done = "[x]"
		}
		c, ok := priorityColors[t.Priority]
		if !ok {
			c = priorityColors[0]
		}
		tbl.AddRow(t.ID, done, c.Sprint(t.Title), t.DueDate.Format(editor.DateLayout), t.Description)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
}

func printTask(w io.Writer, t storage.Task) {
	bold := color.New(color.Bold)
	c, ok := priorityColors[t.Priority]
	if !ok {
		c = priorityColors[0]
	}
	done := "[ ]"
	if t.Completed {
		done = "[x]"
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 80
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("ID:"), t.ID)
	tbl.AddRow(bold.Sprint("Title:"), c.Sprint(t.Title))
	tbl.AddRow(bold.Sprint("Description:"), t.Description)
	tbl.AddRow(bold.Sprint("Due:"), t.DueDate.Format(editor.DateLayout))
	tbl.AddRow(bold.Sprint("Priority:"), t.Priority)
	tbl.AddRow(bold.Sprint("Done:"), done)
	_, _ = fmt.Fprintln(w, tbl)
}

func printStats(w io.Writer, s tasks.Stats) {
	tbl := uitable.New()
	tbl.AddRow("Total tasks:", s.Total)
	tbl.AddRow("Uncompleted tasks:", s.Uncompleted)
	tbl.AddRow("Due next week:", s.DueNextWeek)
	tbl.AddRow("Late:", s.Overdue)
	_, _ = fmt.Fprintln(w, tbl)
}
