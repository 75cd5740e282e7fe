// ABOUTME: CLI command to show the quests scheduled for a day
// ABOUTME: Core quests first, then optional, then recovery
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	todayDate string
)

// NewTodayCmd creates the today command
func NewTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's quests",
		Long: `Show the quests scheduled for the current quest day.

The quest day rolls over at the configured rollover hour (default 04:00),
so late-night check-ins still count for the previous day.

Examples:
  questos today
  questos today --date 2026-03-01
  questos today --format json`,
		Args: cobra.NoArgs,
		RunE: runToday,
	}

	cmd.Flags().StringVar(&todayDate, "date", "", "Day to show (YYYY-MM-DD)")

	return cmd
}

func runToday(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		date, err := a.questDay(ctx, todayDate)
		if err != nil {
			return err
		}

		quests, err := a.store.TodaySchedule(ctx, date)
		if err != nil {
			return fmt.Errorf("getting schedule: %w", err)
		}

		out := cmd.OutOrStdout()
		if resolveFormat(out) == "json" {
			return printJSON(out, map[string]interface{}{
				"date":   date,
				"quests": quests,
			})
		}

		if len(quests) == 0 {
			if !quiet {
				fmt.Fprintf(out, "No quests scheduled for %s\n", date)
			}
			return nil
		}

		fmt.Fprintf(out, "Quests for %s\n\n", date)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "KIND\tSTATUS\tQUEST\tSTAT\tMIN\tXP\tID\n")
		fmt.Fprintf(w, "----\t------\t-----\t----\t---\t--\t--\n")
		for _, q := range quests {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				q.Kind, q.Status, truncate(q.Title, 40), q.Stat,
				formatNumber(q.DurationMin), formatNumber(q.XP), q.ScheduleID)
		}
		return w.Flush()
	})
}
