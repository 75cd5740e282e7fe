// ABOUTME: Backup commands for Charm cloud snapshots of the plan
// ABOUTME: Push the current plan, list snapshots, and pull one back (optionally re-importing it)
package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/charm"
	"github.com/harper/questos/internal/config"
	"github.com/harper/questos/internal/csvplan"
	"github.com/harper/questos/internal/models"
)

// openBackup connects to charm; tests replace it with an in-memory store
var openBackup = func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*charm.Client, error) {
	return charm.NewClient(ctx, &charm.Config{
		Host:       cfg.CharmHost,
		DBName:     cfg.CharmDBName,
		AutoSync:   cfg.AutoSync,
		MaxRetries: 2,
		RetryDelay: cfg.RetryDelay,
	}, logger.Named("charm"))
}

var (
	backupPullKey    string
	backupPullImport bool
)

// NewBackupCmd creates the backup command group
func NewBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the plan to Charm cloud",
		Long: `Back up the plan to Charm cloud.

Each push stores the plan as CSV under a timestamped key and as the
latest backup. Charm authenticates with your SSH keys and syncs the
backups across linked devices.`,
	}

	cmd.AddCommand(newBackupStatusCmd())
	cmd.AddCommand(newBackupPushCmd())
	cmd.AddCommand(newBackupPullCmd())
	cmd.AddCommand(newBackupListCmd())
	cmd.AddCommand(newBackupKeysCmd())

	return cmd
}

// withBackup opens the local store and the charm client for fn
func withBackup(cmd *cobra.Command, fn func(ctx context.Context, a *app, client *charm.Client) error) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		client, err := openBackup(ctx, a.cfg, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to Charm: %w", err)
		}
		defer func() { _ = client.Close() }()

		return fn(ctx, a, client)
	})
}

func newBackupStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Charm connection and backup info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackup(cmd, func(ctx context.Context, a *app, client *charm.Client) error {
				out := cmd.OutOrStdout()

				keys, err := client.List(ctx)
				if err != nil {
					return err
				}

				id, err := client.ID()
				if err != nil {
					fmt.Fprintln(out, "Status: Not connected")
					fmt.Fprintln(out, "Run 'questos backup keys' to check your SSH keys")
				} else {
					fmt.Fprintln(out, "Status: Connected")
					fmt.Fprintf(out, "User ID: %s\n", id)
				}
				fmt.Fprintf(out, "Host: %s\n", client.Host())
				fmt.Fprintf(out, "Snapshots: %d\n", len(keys))
				if len(keys) > 0 {
					fmt.Fprintf(out, "Latest: %s\n", keys[0])
				}
				return nil
			})
		},
	}
}

func newBackupPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Back up the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackup(cmd, func(ctx context.Context, a *app, client *charm.Client) error {
				rows, err := a.store.PlanRows(ctx)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					return fmt.Errorf("nothing to back up: no quests scheduled")
				}

				snap, err := client.Push(ctx, csvplan.Format(rows), len(rows))
				if err != nil && snap == nil {
					return fmt.Errorf("backup failed: %w", err)
				}
				if err != nil {
					a.logger.Warn("backup not synced", zap.Error(err))
				}

				if !quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "✓ Backed up %d quest(s) as %s\n", snap.Rows, snap.Key)
				}
				return nil
			})
		},
	}
}

func newBackupPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Print or restore a backup",
		Long: `Print the latest backup as CSV, or re-import it with --import.

Examples:
  questos backup pull > plan.csv
  questos backup pull --key plan:20260301T080000.000000000Z
  questos backup pull --import`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackup(cmd, func(ctx context.Context, a *app, client *charm.Client) error {
				key := charm.LatestKey
				if backupPullKey != "" {
					key = backupPullKey
				}

				snap, err := client.Get(ctx, key)
				if errors.Is(err, charm.ErrNoBackup) {
					return fmt.Errorf("no backup found under %s; run 'questos backup push' first", key)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !backupPullImport {
					_, err := fmt.Fprintln(out, snap.CSV)
					return err
				}

				result := csvplan.Parse(snap.CSV)
				if !result.Valid() {
					printValidationErrors(out, result, a.cfg.ErrorLimit)
					return fmt.Errorf("backup %s has %d validation error(s)", snap.Key, len(result.Errors))
				}
				imported, err := a.store.ImportPlanRowsFrom(ctx, models.ImportSourceCharm, result.Rows)
				if err != nil {
					return fmt.Errorf("restoring backup: %w", err)
				}
				if !quiet {
					fmt.Fprintf(out, "✓ Restored %d quest(s) from %s (%d goal(s))\n",
						imported.ScheduleCreated, snap.Key, imported.GoalsCreated)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&backupPullKey, "key", "", "Snapshot key to pull (default: latest)")
	cmd.Flags().BoolVar(&backupPullImport, "import", false, "Import the backup into the local store")

	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backup snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackup(cmd, func(ctx context.Context, a *app, client *charm.Client) error {
				keys, err := client.List(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if resolveFormat(out) == "json" {
					return printJSON(out, keys)
				}
				if len(keys) == 0 {
					if !quiet {
						fmt.Fprintln(out, "No backups found")
					}
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "KEY\tTAKEN\n")
				fmt.Fprintf(w, "---\t-----\n")
				for _, k := range keys {
					fmt.Fprintf(w, "%s\t%s\n", k, snapshotTime(k))
				}
				return w.Flush()
			})
		},
	}
}

func newBackupKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List authorized SSH keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackup(cmd, func(ctx context.Context, a *app, client *charm.Client) error {
				keys, err := client.AuthorizedKeys()
				if err != nil {
					return fmt.Errorf("failed to get authorized keys: %w", err)
				}

				out := cmd.OutOrStdout()
				if keys == "" {
					fmt.Fprintln(out, "No authorized keys found")
					return nil
				}
				fmt.Fprintln(out, "Authorized SSH keys:")
				fmt.Fprintln(out, keys)
				return nil
			})
		},
	}
}

// snapshotTime renders the timestamp embedded in a snapshot key
func snapshotTime(key string) string {
	t, ok := charm.SnapshotTime(key)
	if !ok {
		return "-"
	}
	return formatTime(t)
}
