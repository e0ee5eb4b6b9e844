package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saharsh3008/task/internal/model"
	"github.com/saharsh3008/task/internal/task"
)

func newSubCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage subtasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Add a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTaskID(s, args[0])
			if err != nil {
				return err
			}
			title := strings.Join(args[1:], " ")
			if strings.TrimSpace(title) == "" {
				return errors.New("title must not be empty")
			}
			st, _ := s.AddSubtask(id, title)
			fmt.Fprintf(cmd.OutOrStdout(), "Added subtask %s %s\n", shortID(st.ID), st.Title)
			return a.saveErr()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "done <task-id> <subtask-id>",
		Short: "Toggle a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, id, sid, err := a.resolveSubtask(cmd, args)
			if err != nil {
				return err
			}
			s.ToggleSubtask(id, sid)
			t, _ := s.GetTask(id)
			st := t.Subtasks[t.SubtaskIndex(sid)]
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkbox(st.Completed), st.Title)
			return a.saveErr()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <task-id> <subtask-id>",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, id, sid, err := a.resolveSubtask(cmd, args)
			if err != nil {
				return err
			}
			s.DeleteSubtask(id, sid)
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted subtask")
			return a.saveErr()
		},
	})
	return cmd
}

// resolveSubtask resolves a task id and a subtask id or unique prefix.
func (a *app) resolveSubtask(cmd *cobra.Command, args []string) (*task.Store, string, string, error) {
	s, err := a.openStore(cmd.Context())
	if err != nil {
		return nil, "", "", err
	}
	id, err := resolveTaskID(s, args[0])
	if err != nil {
		return nil, "", "", err
	}
	t, _ := s.GetTask(id)
	var match string
	for _, st := range t.Subtasks {
		if st.ID == args[1] {
			return s, id, st.ID, nil
		}
		if strings.HasPrefix(st.ID, args[1]) {
			if match != "" {
				return nil, "", "", fmt.Errorf("subtask id %q is ambiguous", args[1])
			}
			match = st.ID
		}
	}
	if match == "" {
		return nil, "", "", fmt.Errorf("subtask %q: %w", args[1], errNotFound)
	}
	return s, id, match, nil
}

func newListsCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show all lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			lists := s.GetLists()
			if format != formatTable {
				return writeStructured(cmd.OutOrStdout(), format, lists)
			}
			counts := map[string]int{}
			for _, t := range s.GetTasks(task.Filter{Search: "is:pending"}) {
				counts[t.ListID]++
			}
			return writeLists(cmd.OutOrStdout(), lists, counts)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage lists",
	}

	var addColor string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			if strings.TrimSpace(name) == "" {
				return errors.New("name must not be empty")
			}
			l := s.AddList(name, addColor)
			fmt.Fprintf(cmd.OutOrStdout(), "Created list %s %s\n", shortID(l.ID), l.Name)
			return a.saveErr()
		},
	}
	add.Flags().StringVar(&addColor, "color", "", "Display color, e.g. #22c55e")

	rm := &cobra.Command{
		Use:   "rm <id|name>",
		Short: "Delete a list and move its tasks to the default list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveListID(s, args[0])
			if err != nil {
				return err
			}
			if id == model.DefaultListID {
				return errors.New("the default list cannot be deleted")
			}
			s.DeleteList(id)
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted list")
			return a.saveErr()
		},
	}

	var renameColor string
	rename := &cobra.Command{
		Use:   "rename <id|name> <new-name>",
		Short: "Rename a list or change its color",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveListID(s, args[0])
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			if strings.TrimSpace(name) == "" && renameColor == "" {
				return errors.New("nothing to change")
			}
			l, _ := s.RenameList(id, name, renameColor)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated list %s %s\n", shortID(l.ID), l.Name)
			return a.saveErr()
		},
	}
	rename.Flags().StringVar(&renameColor, "color", "", "New display color")

	cmd.AddCommand(add, rm, rename)
	return cmd
}
