package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/saharsh3008/task/internal/config"
	"github.com/saharsh3008/task/internal/ops"
)

func (a *app) storeKeys() []string {
	prefix := a.cfg.Storage.KeyPrefix
	return []string{prefix + "tasks", prefix + "lists"}
}

func newBackupCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the store to a .tar.gz file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openBackend(cmd.Context()); err != nil {
				return err
			}
			if out == "" {
				ts := time.Now().UTC().Format("20060102T150405Z")
				out = filepath.Join("backups", "taskdeck-"+ts+".tar.gz")
			}
			keys, err := ops.Backup(cmd.Context(), a.storage, a.storeKeys(), out)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			a.debugf("archived keys %v", keys)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output archive path (.tar.gz)")
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	var archive string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the store from a backup archive",
		Long: `Restore the store from a backup archive into the configured backend.
Existing tasks and lists are replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive == "" {
				return fmt.Errorf("--archive is required")
			}
			if err := a.openBackend(cmd.Context()); err != nil {
				return err
			}
			keys, err := ops.Restore(cmd.Context(), archive, a.storage)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d keys\n", len(keys))
			return nil
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "Input backup archive (.tar.gz)")
	return cmd
}

func newDrillCmd(a *app) *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Back up, restore to scratch storage and verify the digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openBackend(cmd.Context()); err != nil {
				return err
			}
			report, err := ops.Drill(cmd.Context(), a.storage, a.storeKeys(), workDir, time.Now())
			if err != nil {
				return fmt.Errorf("drill failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "backup:", report.Archive)
			fmt.Fprintln(out, "keys:", len(report.Keys))
			fmt.Fprintln(out, "digest:", report.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "Temporary workspace for drill artifacts")
	return cmd
}

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
