package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saharsh3008/task/internal/model"
	"github.com/saharsh3008/task/internal/task"
)

var errNotFound = errors.New("not found")

// resolveTaskID accepts a full id or a unique prefix of one.
func resolveTaskID(s *task.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if _, ok := s.GetTask(arg); ok {
		return arg, nil
	}
	var match string
	for _, t := range s.GetTasks(task.Filter{}) {
		if strings.HasPrefix(t.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("task id %q is ambiguous", arg)
			}
			match = t.ID
		}
	}
	if match == "" || arg == "" {
		return "", fmt.Errorf("task %q: %w", arg, errNotFound)
	}
	return match, nil
}

// resolveListID accepts an id, a unique id prefix or an exact name
// (case-insensitive).
func resolveListID(s *task.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if _, ok := s.GetList(arg); ok {
		return arg, nil
	}
	var match string
	for _, l := range s.GetLists() {
		if strings.EqualFold(l.Name, arg) || (arg != "" && strings.HasPrefix(l.ID, arg)) {
			if match != "" && match != l.ID {
				return "", fmt.Errorf("list %q is ambiguous", arg)
			}
			match = l.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("list %q: %w", arg, errNotFound)
	}
	return match, nil
}

type taskFlags struct {
	description string
	priority    string
	due         string
	reminder    string
	repeat      string
	list        string
	subtasks    []string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD or YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&f.reminder, "remind", "", "Reminder time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVarP(&f.repeat, "repeat", "r", "", "Repeat weekly on days, e.g. mon,wed or 1,3")
	cmd.Flags().StringVarP(&f.list, "list", "l", "", "List id or name")
}

func newAddCmd(a *app) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			loc := s.Now().Location()

			nt := task.NewTask{
				Title:       strings.Join(args, " "),
				Description: f.description,
			}
			if strings.TrimSpace(nt.Title) == "" {
				return errors.New("title must not be empty")
			}
			if f.priority != "" {
				if nt.Priority, err = task.ParsePriority(f.priority); err != nil {
					return err
				}
			}
			if nt.DueDate, err = parseOptionalDate(f.due, loc); err != nil {
				return fmt.Errorf("--due: %w", err)
			}
			if nt.Reminder, err = parseOptionalDate(f.reminder, loc); err != nil {
				return fmt.Errorf("--remind: %w", err)
			}
			if nt.RecurrenceDays, err = task.ParseWeekdays(f.repeat); err != nil {
				return err
			}
			if f.list != "" {
				if nt.ListID, err = resolveListID(s, f.list); err != nil {
					return err
				}
			}
			for _, title := range f.subtasks {
				nt.Subtasks = append(nt.Subtasks, model.Subtask{Title: strings.TrimSpace(title)})
			}

			t := s.AddTask(nt)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", shortID(t.ID), t.Title)
			return a.saveErr()
		},
	}
	f.register(cmd)
	cmd.Flags().StringArrayVarP(&f.subtasks, "sub", "s", nil, "Subtask title (repeatable)")
	return cmd
}

func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := task.ParseDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func newLsCmd(a *app) *cobra.Command {
	var (
		list   string
		view   string
		query  string
		sortBy string
		format string
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list-tasks"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			f := task.Filter{
				View:   task.ParseView(view),
				Search: query,
				Sort:   task.ParseSort(sortBy),
			}
			if list != "" {
				if f.ListID, err = resolveListID(s, list); err != nil {
					return err
				}
			}
			return writeTasks(cmd.OutOrStdout(), format, s.GetTasks(f), s.GetLists())
		},
	}
	cmd.Flags().StringVarP(&list, "list", "l", "", "Only tasks in this list (id or name)")
	cmd.Flags().StringVar(&view, "view", "", "today or upcoming")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search: text, priority:<p>, is:done or is:pending")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Secondary sort: priority or due")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTaskID(s, args[0])
			if err != nil {
				return err
			}
			t, _ := s.GetTask(id)
			if format != formatTable {
				return writeTasks(cmd.OutOrStdout(), format, []model.Task{t}, s.GetLists())
			}
			writeTaskDetail(cmd.OutOrStdout(), t, s.GetLists())
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Long: `Toggle a task between pending and done.

Completing a repeating task with a due date schedules its next occurrence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTaskID(s, args[0])
			if err != nil {
				return err
			}
			before := len(s.GetTasks(task.Filter{}))
			t, _ := s.ToggleTask(id)

			out := cmd.OutOrStdout()
			if t.Completed {
				fmt.Fprintf(out, "Completed %s\n", t.Title)
			} else {
				fmt.Fprintf(out, "Reopened %s\n", t.Title)
			}
			if len(s.GetTasks(task.Filter{})) > before {
				fmt.Fprintln(out, "Scheduled the next occurrence.")
			}
			return a.saveErr()
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var (
		f             taskFlags
		title         string
		clearDue      bool
		clearReminder bool
		noRepeat      bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTaskID(s, args[0])
			if err != nil {
				return err
			}
			loc := s.Now().Location()
			flags := cmd.Flags()

			var p task.Patch
			if flags.Changed("title") {
				if strings.TrimSpace(title) == "" {
					return errors.New("title must not be empty")
				}
				p.Title = &title
			}
			if flags.Changed("desc") {
				p.Description = &f.description
			}
			if flags.Changed("priority") {
				pr, err := task.ParsePriority(f.priority)
				if err != nil {
					return err
				}
				p.Priority = &pr
			}
			if flags.Changed("due") {
				if p.DueDate, err = parseOptionalDate(f.due, loc); err != nil {
					return fmt.Errorf("--due: %w", err)
				}
			}
			p.ClearDueDate = clearDue
			if flags.Changed("remind") {
				if p.Reminder, err = parseOptionalDate(f.reminder, loc); err != nil {
					return fmt.Errorf("--remind: %w", err)
				}
			}
			p.ClearReminder = clearReminder
			if flags.Changed("repeat") || noRepeat {
				days := model.Weekdays{}
				if !noRepeat {
					if days, err = task.ParseWeekdays(f.repeat); err != nil {
						return err
					}
				}
				p.RecurrenceDays = &days
			}
			if flags.Changed("list") {
				listID, err := resolveListID(s, f.list)
				if err != nil {
					return err
				}
				p.ListID = &listID
			}
			if p.IsEmpty() {
				return errors.New("nothing to change")
			}

			t, _ := s.UpdateTask(id, p)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", shortID(t.ID), t.Title)
			return a.saveErr()
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().BoolVar(&clearReminder, "clear-remind", false, "Remove the reminder")
	cmd.Flags().BoolVar(&noRepeat, "no-repeat", false, "Stop repeating")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTaskID(s, args[0])
			if err != nil {
				return err
			}
			t, _ := s.GetTask(id)
			s.DeleteTask(id)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", t.Title)
			return a.saveErr()
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search tasks",
		Long: `Search tasks. The query is one of:

  priority:low|medium|high   tasks with that priority
  is:done | is:pending       tasks by completion
  <text>                     case-insensitive match on title or description`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), format, s.Search(strings.Join(args, " ")), s.GetLists())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}
