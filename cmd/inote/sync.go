// ABOUTME: Sync subcommand for Charm cloud integration.
// ABOUTME: Provides status, link, unlink, repair, reset and wipe for the charm backend.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	charmkv "github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harper/inote/internal/charm"
	"github.com/harper/inote/internal/config"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manage Charm cloud sync",
	Long: `Sync your notes to the Charm cloud (backend: charm).

Charm uses SSH key authentication - no passwords needed.
With charm.auto_sync enabled, data syncs after each change.

Commands:
  status  - Show sync configuration and connection status
  link    - Connect this device to Charm cloud
  unlink  - Disconnect from Charm cloud
  repair  - Repair database corruption issues
  reset   - Reset local sync data (keeps cloud data)
  wipe    - Delete all synced data and start fresh

Examples:
  inote sync status
  inote sync link
  inote sync link --host charm.example.com
  inote sync repair
  inote sync reset`,
}

// syncClient returns the open charm backend, or a client built from config
// when another backend is active.
func syncClient() (*charm.Client, error) {
	if conn != nil && conn.Charm != nil {
		return conn.Charm, nil
	}
	return charm.NewClient(cfg.Charm, charm.WithLogger(logger))
}

// confirm reads one line and compares it to want, case-insensitively.
func confirm(in io.Reader, want ...string) bool {
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	for _, w := range want {
		if response == w {
			return true
		}
	}
	return false
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long:  `Display Charm sync configuration and connection status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Charm Sync Status")
		fmt.Fprintln(out, strings.Repeat("-", 40))

		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		fmt.Fprintf(out, "Config:    %s\n", path)
		fmt.Fprintf(out, "Backend:   %s\n", cfg.Backend)
		fmt.Fprintf(out, "Host:      %s\n", valueOrNone(cfg.Charm.Host))

		if cfg.Charm.AutoSync {
			fmt.Fprintf(out, "Auto-sync: %s\n", color.GreenString("enabled"))
		} else {
			fmt.Fprintf(out, "Auto-sync: %s\n", color.YellowString("disabled"))
		}
		if cfg.Charm.StaleThreshold > 0 {
			fmt.Fprintf(out, "Stale:     pull when older than %s\n", cfg.Charm.StaleThreshold)
		}

		if cfg.Backend != config.BackendCharm {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Status:    %s\n", color.YellowString("inactive (backend is %s)", cfg.Backend))
			return nil
		}

		client, err := syncClient()
		if err != nil {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Status:    %s\n", color.RedString("client not initialized"))
			return nil
		}

		user, err := client.User()
		fmt.Fprintln(out)
		if err != nil || user == nil {
			fmt.Fprintf(out, "Status:    %s\n", color.YellowString("not linked"))
			fmt.Fprintln(out, "\nRun 'inote sync link' to connect to Charm cloud.")
			return nil
		}
		fmt.Fprintf(out, "User ID:   %s\n", user.CharmID)
		fmt.Fprintf(out, "Name:      %s\n", valueOrNone(user.Name))
		fmt.Fprintf(out, "Status:    %s\n", color.GreenString("connected"))
		if last := client.LastSyncTime(); !last.IsZero() {
			fmt.Fprintf(out, "Last sync: %s\n", last.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Connect to Charm cloud",
	Long: `Link this device to Charm cloud for sync.

Charm uses SSH key authentication. On first link, you'll see
a code to verify on another device, or you can create a new account.

Your SSH keys are used automatically - no passwords needed.
--host is saved to the config file before linking.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		if host != "" && host != cfg.Charm.Host {
			cfg.Charm.Host = host
			if err := config.Save(cfg, cfgFile); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
		}

		client, err := charm.NewClient(cfg.Charm, charm.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}

		// Link will prompt for authentication if needed
		if err := client.Link(); err != nil {
			return fmt.Errorf("link failed: %w", err)
		}

		user, err := client.User()
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("\n✓ Linked to Charm cloud"))
		fmt.Fprintf(out, "  User ID: %s\n", user.CharmID)
		if user.Name != "" {
			fmt.Fprintf(out, "  Name:    %s\n", user.Name)
		}
		if cfg.Backend != config.BackendCharm {
			fmt.Fprintf(out, "\nSet backend: charm in %s to store notes in the cloud.\n", config.DefaultPath())
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm cloud",
	Long: `Unlink this device from Charm cloud.

This removes your SSH key association but keeps local data.
You can re-link anytime with 'inote sync link'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will disconnect this device from Charm cloud.")
		fmt.Fprintln(out, "Your local notes will be preserved.")
		fmt.Fprint(out, "\nType 'unlink' to confirm: ")

		if !confirm(cmd.InOrStdin(), "unlink") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		client, err := syncClient()
		if err != nil {
			return err
		}
		if err := client.Unlink(); err != nil {
			return fmt.Errorf("unlink failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("\n✓ Unlinked from Charm cloud"))
		fmt.Fprintln(out, "Run 'inote sync link' to reconnect.")
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption issues",
	Long: `Repair the local KV database if it's corrupted.

This command:
- Checkpoints the WAL (write-ahead log)
- Removes shared memory files
- Runs integrity checks
- Vacuums the database if needed

Use --force to attempt repair even if integrity check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()

		client, err := syncClient()
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Repairing database...")
		result, err := charmkv.Repair(client.DBName(), force)
		if err != nil {
			return fmt.Errorf("repair failed: %w", err)
		}

		fmt.Fprintln(out, "\nRepair Results:")
		if result.WalCheckpointed {
			fmt.Fprintln(out, "  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			fmt.Fprintln(out, "  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			fmt.Fprintln(out, color.GreenString("  ✓ Integrity check passed"))
		} else {
			fmt.Fprintln(out, color.RedString("  ✗ Integrity check failed"))
		}
		if result.Vacuumed {
			fmt.Fprintln(out, "  ✓ Database vacuumed")
		}

		if result.IntegrityOK {
			fmt.Fprintln(out, color.GreenString("\n✓ Database repaired successfully"))
		} else {
			fmt.Fprintln(out, color.YellowString("\n⚠ Repair completed but integrity issues remain"))
			fmt.Fprintln(out, "Consider running 'inote sync reset' or 'inote sync wipe'")
		}
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local sync data",
	Long: `Reset the local KV database while keeping cloud data intact.

This removes all local sync state and forces a fresh sync from the cloud.
Your cloud data is preserved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will reset local sync data.")
		fmt.Fprintln(out, "Cloud data will be preserved and re-synced.")
		fmt.Fprint(out, "\nContinue? [y/N]: ")

		if !confirm(cmd.InOrStdin(), "y", "yes") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		fmt.Fprintln(out, "\nResetting local data...")
		client, err := syncClient()
		if err != nil {
			return err
		}
		if err := client.ResetLocal(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("✓ Local sync data reset"))
		fmt.Fprintln(out, "\nRun any inote command to re-sync from cloud.")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Wipe all sync data and start fresh",
	Long: `Delete all synced data from Charm cloud and local KV store.

This deletes BOTH cloud backups and local files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE all sync data:")
		fmt.Fprintln(out, "  - All notes in Charm cloud")
		fmt.Fprintln(out, "  - Local KV database")
		fmt.Fprintln(out)
		fmt.Fprintln(out, color.YellowString("This cannot be undone!"))
		fmt.Fprint(out, "\nType 'wipe' to confirm: ")

		if !confirm(cmd.InOrStdin(), "wipe") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		client, err := syncClient()
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "\nWiping data...")
		result, err := charmkv.Wipe(client.DBName())
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		fmt.Fprintln(out, "\nWipe Results:")
		if result.CloudBackupsDeleted > 0 {
			fmt.Fprintf(out, "  ✓ Deleted %d cloud backups\n", result.CloudBackupsDeleted)
		}
		if result.LocalFilesDeleted > 0 {
			fmt.Fprintf(out, "  ✓ Deleted %d local files\n", result.LocalFilesDeleted)
		}

		fmt.Fprintln(out, color.GreenString("\n✓ All sync data wiped"))
		return nil
	},
}

func init() {
	syncLinkCmd.Flags().String("host", "", "Charm server host (saved to config)")
	syncRepairCmd.Flags().Bool("force", false, "Force repair even if integrity check fails")

	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	rootCmd.AddCommand(syncCmd)
}

// valueOrNone returns "(not set)" if the string is empty.
func valueOrNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
