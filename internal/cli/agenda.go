package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saharsh3008/task/internal/clock"
	"github.com/saharsh3008/task/internal/model"
	"github.com/saharsh3008/task/internal/reminder"
	"github.com/saharsh3008/task/internal/task"
)

func newAgendaCmd(a *app) *cobra.Command {
	var (
		date   string
		days   int
		format string
	)
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Show what is active on a day, or activity over a range",
		Long: `Show the tasks active on a day: repeating tasks scheduled for that weekday,
tasks due that day and tasks completed that day.

With --days N, print per-day activity counts for N days starting at --date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			day := clock.StartOfDay(s.Now())
			if date != "" {
				d, err := task.ParseDate(date, day.Location())
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				day = clock.StartOfDay(d)
			}

			out := cmd.OutOrStdout()
			if days > 1 {
				counts := s.ActivityBetween(day, day.AddDate(0, 0, days-1))
				if format != formatTable {
					return writeStructured(out, format, counts)
				}
				keys := make([]string, 0, len(counts))
				for k := range counts {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "%s  %d\n", k, counts[k])
				}
				return nil
			}

			if format == formatTable {
				fmt.Fprintln(out, day.Format("Monday, January 2 2006"))
			}
			return writeTasks(out, format, s.ActiveOn(day), s.GetLists())
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to show (default today)")
	cmd.Flags().IntVar(&days, "days", 1, "Number of days to summarize")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "Output format: table, json or yaml")
	return cmd
}

func newExportICSCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export-ics <id>",
		Short: "Export a dated task as an iCalendar event",
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
			t, _ := s.GetTask(id)
			ics, err := task.BuildTaskCalendarICS(t, s.Now())
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), ics)
				return err
			}
			if err := os.WriteFile(outPath, []byte(ics), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "O", "", "Write to a file instead of stdout")
	return cmd
}

func newRemindCmd(a *app) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Print reminders as they come due",
		Long: `Poll the store and print each pending task whose reminder time has passed
within the configured window. Runs until interrupted unless --once is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			tasks := task.NewHandler(s)
			notifier := reminder.NotifierFunc(func(_ context.Context, t model.Task) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Reminder: %s (%s)\n", t.Title, t.Priority)
				return nil
			})
			p := reminder.NewPoller(tasks, notifier, reminder.Options{
				Interval: a.cfg.Reminders.Interval,
				Window:   a.cfg.Reminders.Window,
				Clock:    storeClock{s},
				Logger:   a.logger,
			})

			if once {
				if p.Tick(cmd.Context()) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No reminders due.")
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			p.Run(ctx)
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Check once and exit")
	return cmd
}

// storeClock reads time through the store so reminders and views agree.
type storeClock struct{ s *task.Store }

func (c storeClock) Now() time.Time { return c.s.Now() }
