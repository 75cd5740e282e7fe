// ABOUTME: CLI command to list imported goals
// ABOUTME: Goals are created once per unique title in each import
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewGoalsCmd creates the goals command
func NewGoalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List imported goals",
		Long: `List imported goals in creation order.

Examples:
  questos goals
  questos goals --format json`,
		Args: cobra.NoArgs,
		RunE: runGoals,
	}

	return cmd
}

func runGoals(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		goals, err := a.store.ListGoals(ctx)
		if err != nil {
			return fmt.Errorf("listing goals: %w", err)
		}

		out := cmd.OutOrStdout()
		if resolveFormat(out) == "json" {
			return printJSON(out, goals)
		}

		if len(goals) == 0 {
			if !quiet {
				fmt.Fprintln(out, "No goals found. Import a plan with: questos import plan.csv")
			}
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "GOAL\tSTATUS\tPRIORITY\tCREATED\n")
		fmt.Fprintf(w, "----\t------\t--------\t-------\n")
		for _, g := range goals {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", truncate(g.Title, 40), g.Status, g.Priority, formatTime(g.CreatedAt))
		}
		return w.Flush()
	})
}
