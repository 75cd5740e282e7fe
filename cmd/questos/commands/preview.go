// ABOUTME: CLI command to summarize the imported plan
// ABOUTME: Shows quest counts per kind for a day, milestones and action totals
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	previewDate string
)

// NewPreviewCmd creates the preview command
func NewPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Summarize the imported plan",
		Long: `Summarize the imported plan.

Shows how many core, optional and recovery quests fall on the day,
the next milestones, and how many easy, medium and hard actions exist
with their total XP.

Examples:
  questos preview
  questos preview --date 2026-03-01`,
		Args: cobra.NoArgs,
		RunE: runPreview,
	}

	cmd.Flags().StringVar(&previewDate, "date", "", "Day to count quests for (YYYY-MM-DD)")

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		date, err := a.questDay(ctx, previewDate)
		if err != nil {
			return err
		}

		preview, err := a.store.PlanPreview(ctx, date)
		if err != nil {
			return fmt.Errorf("building preview: %w", err)
		}

		out := cmd.OutOrStdout()
		if resolveFormat(out) == "json" {
			return printJSON(out, map[string]interface{}{
				"date":    date,
				"preview": preview,
			})
		}

		c := preview.TodayCounts
		fmt.Fprintf(out, "Quests on %s: %d (core %d, optional %d, recovery %d)\n",
			date, c.Total(), c.Core, c.Optional, c.Recovery)

		s := preview.ActionStats
		fmt.Fprintf(out, "Actions: easy %d, medium %d, hard %d (total XP %s)\n\n",
			s.Easy, s.Medium, s.Hard, formatNumber(s.TotalXP))

		if len(preview.Milestones) == 0 {
			fmt.Fprintln(out, "No milestones yet. Import a plan with: questos import plan.csv")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "MILESTONE\tTARGET\tSTATUS\n")
		fmt.Fprintf(w, "---------\t------\t------\n")
		for _, m := range preview.Milestones {
			target := m.TargetDate
			if target == "" {
				target = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(m.Title, 40), target, m.Status)
		}
		return w.Flush()
	})
}
