package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/saharsh3008/task/internal/config"
	"github.com/saharsh3008/task/internal/storage"
	"github.com/saharsh3008/task/internal/task"
)

// app carries global flags and the lazily opened store for one invocation.
type app struct {
	configPath string
	dataDir    string
	backend    string
	verbose    bool

	out    io.Writer
	errOut io.Writer
	logger *log.Logger

	cfg     *config.Config
	storage storage.Backend
	adapter *storage.Adapter
	store   *task.Store

	// storeOptions is extended by tests (fake clock, fixed ids).
	storeOptions []task.Option
}

func newRootCmd(a *app, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskdeck",
		Short: "taskdeck - a personal task store",
		Long: `taskdeck keeps tasks, lists, subtasks and weekly recurrences in one store.

Use it from the command line, or run "taskdeck serve" for the JSON API and agenda page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.Version = version

	// Global flags
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Path to the config file")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Override storage.data_dir")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "Override storage.backend (file, sqlite, postgres, memory)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		newAddCmd(a),
		newLsCmd(a),
		newShowCmd(a),
		newDoneCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newSearchCmd(a),
		newSubCmd(a),
		newListsCmd(a),
		newListCmd(a),
		newAgendaCmd(a),
		newExportICSCmd(a),
		newRemindCmd(a),
		newServeCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newDrillCmd(a),
		newInitCmd(a),
		newVersionCmd(version),
	)
	return root
}

// Execute runs the root command
func Execute(version string) error {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	defer a.close()
	if err := newRootCmd(a, version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		if cfg.Storage.SQLitePath == filepath.Join(cfg.Storage.DataDir, "taskdeck.db") {
			cfg.Storage.SQLitePath = filepath.Join(a.dataDir, "taskdeck.db")
		}
		cfg.Storage.DataDir = a.dataDir
	}
	if a.backend != "" {
		cfg.Storage.Backend = a.backend
	}
	a.cfg = cfg

	flags := 0
	if a.verbose {
		flags = log.LstdFlags
	}
	a.logger = log.New(a.errOut, "", flags)
	a.debugf("config %s: backend=%s data_dir=%s", a.configPath, cfg.Storage.Backend, cfg.Storage.DataDir)
	return nil
}

// openStore opens the configured backend and loads the store once.
func (a *app) openStore(ctx context.Context) (*task.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := a.openBackend(ctx); err != nil {
		return nil, err
	}
	opts := []task.Option{
		task.WithLogger(a.logger),
		task.WithDefaultList(a.cfg.Lists.DefaultName, a.cfg.Lists.DefaultColor),
		task.WithNewListColor(a.cfg.Lists.NewListColor),
	}
	opts = append(opts, a.storeOptions...)
	a.store = task.NewStore(a.adapter, opts...)
	return a.store, nil
}

func (a *app) openBackend(ctx context.Context) error {
	if a.storage != nil {
		return nil
	}
	b, err := storage.Open(ctx, a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.storage = b
	a.adapter = storage.NewAdapter(b, storage.AdapterOptions{
		Logger:    a.logger,
		KeyPrefix: a.cfg.Storage.KeyPrefix,
		Timeout:   a.cfg.Storage.Timeout,
	})
	return nil
}

// saveErr surfaces a swallowed persistence failure as a CLI error.
func (a *app) saveErr() error {
	if a.adapter == nil {
		return nil
	}
	if err := a.adapter.LastError(); err != nil {
		return fmt.Errorf("changes were not saved: %w", err)
	}
	return nil
}

func (a *app) close() error {
	if a.storage == nil {
		return nil
	}
	err := a.storage.Close()
	a.storage, a.adapter, a.store = nil, nil, nil
	return err
}

func (a *app) debugf(format string, args ...any) {
	if a.verbose && a.logger != nil {
		a.logger.Printf(format, args...)
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the taskdeck version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskdeck %s\n", version)
		},
	}
}
