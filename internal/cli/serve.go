package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saharsh3008/task/internal/reminder"
	"github.com/saharsh3008/task/internal/serverapp"
	"github.com/saharsh3008/task/internal/task"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr       string
		noReminder bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API, agenda page and reminder poller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			tasks := task.NewHandler(s)
			history := reminder.NewHistory(storeClock{s}, 100)
			handler, err := serverapp.NewHandler(serverapp.Options{
				Config:    a.cfg,
				Tasks:     tasks,
				Health:    a.adapter,
				Reminders: history,
				Version:   cmd.Root().Version,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var wg sync.WaitGroup
			if !noReminder {
				poller := reminder.NewPoller(tasks, reminder.Fanout{
					reminder.LogNotifier{Logger: a.logger},
					history,
				}, reminder.Options{
					Interval: a.cfg.Reminders.Interval,
					Window:   a.cfg.Reminders.Window,
					Clock:    storeClock{s},
					Logger:   a.logger,
				})
				wg.Add(1)
				go func() {
					defer wg.Done()
					poller.Run(ctx)
				}()
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Printf("listening on http://localhost%s", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				stop()
				wg.Wait()
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Printf("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = srv.Shutdown(shutdownCtx)
			wg.Wait()
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")
	cmd.Flags().BoolVar(&noReminder, "no-reminders", false, "Do not start the reminder poller")
	return cmd
}
