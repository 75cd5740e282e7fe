// ABOUTME: CLI command to wipe all local plan data
// ABOUTME: Requires --confirm; the schema and file stay in place
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	resetConfirm bool
)

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all local data",
		Long: `Delete every goal, quest, debt entry, event, import, profile and
setting from the local database.

Examples:
  questos reset --confirm`,
		Args: cobra.NoArgs,
		RunE: runReset,
	}

	cmd.Flags().BoolVar(&resetConfirm, "confirm", false, "Confirm deleting all data")

	return cmd
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetConfirm {
		return fmt.Errorf("refusing to delete all data without --confirm")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.store.ResetAllData(ctx); err != nil {
			return fmt.Errorf("resetting data: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ All data deleted from %s\n", a.cfg.DBPath)
		}
		return nil
	})
}
