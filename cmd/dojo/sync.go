// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, now, repair, reset, and wipe operations.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/dojo/internal/charm"
	"github.com/harperreed/dojo/internal/config"
	"github.com/harperreed/dojo/internal/sync"
)

var (
	syncYes         bool
	syncRepairForce bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync dojo data across devices",
	Long: `Sync dojo data across devices using Charm Cloud.

Your data is E2E encrypted with your SSH key before upload.
Sync applies to the charm backend; set "backend": "charm" in
~/.config/dojo/config.json or migrate with 'dojo migrate --to charm'.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     dojo sync link

  2. On other devices, link with the same Charm account:
     dojo sync link

  3. Check sync status:
     dojo sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  now         Sync immediately
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

With auto_sync on (the default), data syncs after each change.`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.
If you already have an account, you'll be prompted to link via charm.sh.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		charmCmd := exec.Command("charm", "link")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr
		charmCmd.Env = append(os.Environ(), "CHARM_HOST="+cfg.GetCharmHost())

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		syncer, client, err := openSyncer()
		if err != nil {
			return err
		}
		defer client.Close()

		id, err := syncer.Link(cmd.Context())
		if id == "" {
			return err
		}
		color.Green("\n✓ Device linked to Charm")
		fmt.Fprintf(cmd.OutOrStdout(), "  Charm ID: %s\n", id)
		if err != nil {
			color.Yellow("⚠ Initial sync failed: %v", err)
		} else {
			color.Green("✓ Initial sync complete")
		}
		if cfg.GetBackend() != config.BackendCharm {
			color.Yellow("⚠ Your backend is %s; run 'dojo migrate --to charm' to sync your data.", cfg.GetBackend())
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local dojo data.
You can link again later with 'dojo sync link'.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		charmCmd := exec.Command("charm", "unlink")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		syncCfg, err := sync.LoadConfig()
		if err != nil {
			return err
		}
		syncer := sync.NewSyncer(syncCfg, nil, cfg.GetCharmHost(), logger)
		if err := syncer.Unlink(); err != nil {
			return fmt.Errorf("failed to update sync config: %w", err)
		}

		color.Green("✓ Device unlinked from Charm")
		fmt.Fprintln(cmd.OutOrStdout(), "Your local dojo data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show sync status",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		syncCfg, err := sync.LoadConfig()
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Backend: %s\n", cfg.GetBackend())
		fmt.Fprintf(out, "Server: %s\n", cfg.GetCharmHost())
		fmt.Fprintf(out, "Device: %s\n", syncCfg.DeviceID)
		fmt.Fprintln(out)

		if !syncCfg.IsConfigured() {
			color.Yellow("Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'dojo sync link' to connect to Charm.")
			return nil
		}

		color.Green("✓ Linked to Charm")
		fmt.Fprintf(out, "  Charm ID: %s\n", syncCfg.UserID)
		fmt.Fprintf(out, "  Linked: %s\n", syncCfg.LinkedAt.Format("2006-01-02 15:04"))
		if syncCfg.LastSync.IsZero() {
			fmt.Fprintln(out, "  Last sync: never")
		} else {
			fmt.Fprintf(out, "  Last sync: %s (%d total)\n", syncCfg.LastSync.Format("2006-01-02 15:04"), syncCfg.SyncCount)
		}
		if syncCfg.LastError != "" {
			color.Red("  Last error: %s", syncCfg.LastError)
		}
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:         "now",
	Short:       "Sync immediately",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		syncer, client, err := openSyncer()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := syncer.Sync(cmd.Context()); err != nil {
			return err
		}
		color.Green("✓ Sync complete")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	Long: `Delete all cloud backups and local charm data.

This is a DESTRUCTIVE operation. ALL synced data will be permanently deleted.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !syncYes {
			fmt.Fprintln(cmd.OutOrStdout(), "This will PERMANENTLY DELETE all cloud backups and local dojo data.")
			if !confirm(cmd.InOrStdin(), os.Stderr, "Type 'wipe' to confirm: ", "wipe") {
				fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
				return nil
			}
		}

		result, err := kv.Wipe(charm.DefaultDBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		color.Green("✓ Data wiped successfully")
		fmt.Fprintf(cmd.OutOrStdout(), "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(cmd.OutOrStdout(), "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "Repairing dojo database...")
		result, err := kv.Repair(charm.DefaultDBName, syncRepairForce)

		if result.WalCheckpointed {
			color.Green("  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			color.Green("  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			color.Green("  ✓ Integrity check passed")
		} else {
			color.Red("  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			color.Green("  ✓ Database vacuumed")
		}

		if err != nil {
			if !syncRepairForce {
				color.Yellow("\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		color.Green("\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	Long: `Delete all local charm data and restore from Charm Cloud.

Use this to fix sync conflicts or reset a device to the cloud state.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !syncYes {
			fmt.Fprintln(cmd.OutOrStdout(), "This will DELETE all local dojo data and restore from cloud.")
			if !confirm(cmd.InOrStdin(), os.Stderr, "Continue? [y/N]: ", "y", "yes") {
				fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
				return nil
			}
		}

		syncer, client, err := openSyncer()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := syncer.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		color.Green("✓ Local data reset and restored from cloud")
		return nil
	},
}

// openSyncer opens the charm database without auto sync and wraps it in a Syncer.
// The caller closes the client.
func openSyncer() (*sync.Syncer, *charm.Client, error) {
	syncCfg, err := sync.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := charm.Open(charm.Options{
		Host:   cfg.GetCharmHost(),
		Logger: logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open charm: %w", err)
	}
	return sync.NewSyncer(syncCfg, client, cfg.GetCharmHost(), logger), client, nil
}

func init() {
	syncRepairCmd.Flags().BoolVar(&syncRepairForce, "force", false, "attempt recovery even if integrity checks fail")
	syncWipeCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "skip confirmation")
	syncResetCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "skip confirmation")

	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
