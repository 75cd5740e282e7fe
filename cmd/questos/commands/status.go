// ABOUTME: CLI commands to complete or skip a scheduled quest
// ABOUTME: done and skip share one constructor and differ only in the target status
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/questos/internal/models"
)

// NewStatusCmd creates the done or skip command
func NewStatusCmd(verb string) *cobra.Command {
	status := models.StatusDone
	past := "Completed"
	if verb == "skip" {
		status = models.StatusSkipped
		past = "Skipped"
	}

	cmd := &cobra.Command{
		Use:   verb + " <schedule-id>",
		Short: fmt.Sprintf("Mark a quest as %s", status),
		Long: fmt.Sprintf(`Mark a scheduled quest as %s.

Find schedule IDs with "questos today".

Examples:
  questos %s sch_0f3c...`, status, verb),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.store.UpdateScheduleStatus(ctx, id, string(status)); err != nil {
					return fmt.Errorf("updating quest: %w", err)
				}

				out := cmd.OutOrStdout()
				if resolveFormat(out) == "json" {
					return printJSON(out, map[string]string{"schedule_id": id, "status": string(status)})
				}
				if !quiet {
					fmt.Fprintf(out, "✓ %s quest %s\n", past, id)
				}
				return nil
			})
		},
	}

	return cmd
}
