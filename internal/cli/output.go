package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saharsh3008/task/internal/model"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormat(f string) error {
	switch f {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", f)
	}
}

// writeStructured emits v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// yamlTask mirrors model.Task with yaml-friendly field names and dates.
type yamlTask struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Completed   bool     `yaml:"completed"`
	Priority    string   `yaml:"priority"`
	List        string   `yaml:"list"`
	Due         string   `yaml:"due,omitempty"`
	Reminder    string   `yaml:"reminder,omitempty"`
	Repeats     []string `yaml:"repeats,omitempty"`
	Subtasks    []string `yaml:"subtasks,omitempty"`
}

func toYAMLTasks(ts []model.Task) []yamlTask {
	out := make([]yamlTask, 0, len(ts))
	for _, t := range ts {
		yt := yamlTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Completed:   t.Completed,
			Priority:    string(t.Priority),
			List:        t.ListID,
			Due:         formatTime(t.DueDate),
			Reminder:    formatTime(t.Reminder),
			Repeats:     weekdayNamesOf(t.RecurrenceDays),
		}
		for _, st := range t.Subtasks {
			yt.Subtasks = append(yt.Subtasks, checkbox(st.Completed)+" "+st.Title)
		}
		out = append(out, yt)
	}
	return out
}

func writeTasks(w io.Writer, format string, ts []model.Task, lists []model.TaskList) error {
	switch format {
	case formatJSON:
		return writeStructured(w, format, ts)
	case formatYAML:
		return writeStructured(w, format, toYAMLTasks(ts))
	}

	if len(ts) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return nil
	}
	names := listNames(lists)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tTITLE\tDUE\tLIST\tREPEATS")
	for _, t := range ts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID),
			checkbox(t.Completed),
			t.Priority,
			t.Title,
			formatTime(t.DueDate),
			names[t.ListID],
			strings.Join(weekdayNamesOf(t.RecurrenceDays), ","),
		)
	}
	return tw.Flush()
}

func writeTaskDetail(w io.Writer, t model.Task, lists []model.TaskList) {
	names := listNames(lists)
	fmt.Fprintf(w, "%s %s\n", checkbox(t.Completed), t.Title)
	fmt.Fprintf(w, "  id:        %s\n", t.ID)
	fmt.Fprintf(w, "  priority:  %s\n", t.Priority)
	fmt.Fprintf(w, "  list:      %s\n", names[t.ListID])
	if t.Description != "" {
		fmt.Fprintf(w, "  notes:     %s\n", t.Description)
	}
	if t.DueDate != nil {
		fmt.Fprintf(w, "  due:       %s\n", formatTime(t.DueDate))
	}
	if t.Reminder != nil {
		fmt.Fprintf(w, "  reminder:  %s\n", formatTime(t.Reminder))
	}
	if t.IsRecurring() {
		fmt.Fprintf(w, "  repeats:   %s\n", strings.Join(weekdayNamesOf(t.RecurrenceDays), ", "))
	}
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "  completed: %s\n", formatTime(t.CompletedAt))
	}
	for _, st := range t.Subtasks {
		fmt.Fprintf(w, "    %s %s (%s)\n", checkbox(st.Completed), st.Title, shortID(st.ID))
	}
}

func writeLists(w io.Writer, lists []model.TaskList, counts map[string]int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tTASKS")
	for _, l := range lists {
		name := l.Name
		if l.IsSystem {
			name += " (system)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", shortID(l.ID), name, l.Color, counts[l.ID])
	}
	return tw.Flush()
}

func listNames(lists []model.TaskList) map[string]string {
	out := make(map[string]string, len(lists))
	for _, l := range lists {
		out[l.ID] = l.Name
	}
	return out
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// shortID trims UUIDs to their first block; ids are resolved by prefix.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i >= 8 {
		return id[:i]
	}
	return id
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

func weekdayNamesOf(days model.Weekdays) []string {
	if len(days) == 0 {
		return nil
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, strings.ToLower(d.String()[:3]))
	}
	return out
}
