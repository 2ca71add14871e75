// ABOUTME: CLI command for migrating data between storage backends.
// ABOUTME: Copies programs, supplements, days, and notes from one backend into an empty one.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/config"
	"github.com/harperreed/dojo/internal/storage"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate --to <backend>",
	Short: "Migrate data between storage backends",
	Long: `Copy all dojo data from one storage backend to another.

BACKENDS:

  sqlite   ~/.local/share/dojo/dojo.db (default)
  badger   ~/.local/share/dojo/badger
  charm    Charm KV, synced through Charm Cloud

The destination must be empty unless --force is given. The source is
left untouched. Afterwards, point "backend" in ~/.config/dojo/config.json
at the destination.

USAGE:

  dojo migrate --to charm --dry-run   # Preview what would be migrated
  dojo migrate --to charm             # Copy sqlite data into charm
  dojo migrate --from charm --to sqlite`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		from := migrateFrom
		if from == "" {
			from = cfg.GetBackend()
		}
		if migrateTo == "" {
			return fmt.Errorf("--to is required")
		}
		if from == migrateTo {
			return fmt.Errorf("source and destination are both %s", from)
		}

		if migrateTo == config.BackendBadger && !migrateForce && !migrateDryRun {
			nonEmpty, err := storage.IsDirNonEmpty(filepath.Join(cfg.GetDataDir(), "badger"))
			if err != nil {
				return err
			}
			if nonEmpty {
				return fmt.Errorf("badger directory already has data (use --force to merge)")
			}
		}

		src, err := cfg.OpenBackend(from, logger)
		if err != nil {
			return err
		}

		if migrateDryRun {
			defer src.Close()
			data, err := src.GetAllData()
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Fprintf(cmd.OutOrStdout(), "Would copy from %s to %s:\n", from, migrateTo)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d programs\n  %d supplements\n  %d days\n  %d notes\n",
				len(data.Programs), len(data.Supplements), len(data.Days), len(data.Notes))
			return nil
		}

		dst, err := cfg.OpenBackend(migrateTo, logger)
		if err != nil {
			src.Close()
			return err
		}
		if !migrateForce {
			existing, err := dst.GetAllData()
			if err == nil && len(existing.Programs)+len(existing.Supplements)+len(existing.Days)+len(existing.Notes) > 0 {
				src.Close()
				dst.Close()
				return fmt.Errorf("%s already has data (use --force to merge)", migrateTo)
			}
		}

		summary, err := storage.MigrateAndClose(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %s → %s", from, migrateTo)
		fmt.Fprintf(cmd.OutOrStdout(), "  %d programs\n  %d supplements\n  %d days (%d sessions)\n  %d notes\n",
			summary.Programs, summary.Supplements, summary.Days, summary.Sessions, summary.Notes)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source backend (default: configured backend)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend (sqlite, badger, charm)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "migrate into a destination that already has data")
	rootCmd.AddCommand(migrateCmd)
}
