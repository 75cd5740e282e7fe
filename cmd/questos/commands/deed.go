// ABOUTME: CLI command to log a wrong deed as XP debt
// ABOUTME: Also lists the debt ledger and per-stat totals
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/questos/internal/models"
)

var (
	deedStat      string
	deedIntensity string
	deedTrigger   string
	deedXP        int
)

// NewDeedCmd creates the deed command
func NewDeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deed",
		Short: "Log a wrong deed as XP debt",
		Long: `Log a wrong deed. The XP is recorded as debt against the stat.

Examples:
  questos deed --stat focus --intensity medium --trigger "doomscrolling" --xp 15
  questos deed list`,
		Args: cobra.NoArgs,
		RunE: runDeed,
	}

	cmd.Flags().StringVar(&deedStat, "stat", "", "Stat to charge: body, mind, career, focus")
	cmd.Flags().StringVar(&deedIntensity, "intensity", "medium", "Intensity: light, medium, heavy")
	cmd.Flags().StringVar(&deedTrigger, "trigger", "", "What happened")
	cmd.Flags().IntVar(&deedXP, "xp", 10, "XP debt to record")
	_ = cmd.MarkFlagRequired("stat")
	_ = cmd.MarkFlagRequired("trigger")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the debt ledger",
		Args:  cobra.NoArgs,
		RunE:  runDeedList,
	})

	return cmd
}

func runDeed(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		entry, err := a.store.LogWrongDeed(ctx, models.WrongDeed{
			Stat:      models.Stat(deedStat),
			Intensity: models.Intensity(deedIntensity),
			Trigger:   deedTrigger,
			DebtXP:    deedXP,
		})
		if err != nil {
			return fmt.Errorf("logging wrong deed: %w", err)
		}

		out := cmd.OutOrStdout()
		if resolveFormat(out) == "json" {
			return printJSON(out, entry)
		}
		if !quiet {
			fmt.Fprintf(out, "✓ Logged %d XP debt against %s (%s)\n", entry.DeltaXP, entry.Stat, entry.Reason)
		}
		return nil
	})
}

func runDeedList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		entries, err := a.store.ListDebt(ctx)
		if err != nil {
			return fmt.Errorf("listing debt: %w", err)
		}
		totals, err := a.store.DebtTotals(ctx)
		if err != nil {
			return fmt.Errorf("summing debt: %w", err)
		}

		out := cmd.OutOrStdout()
		if resolveFormat(out) == "json" {
			return printJSON(out, map[string]interface{}{
				"totals":  totals,
				"entries": entries,
			})
		}

		if len(entries) == 0 {
			if !quiet {
				fmt.Fprintln(out, "No debt logged")
			}
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "STAT\tENTRIES\tTOTAL XP\n")
		fmt.Fprintf(w, "----\t-------\t--------\n")
		for _, t := range totals {
			fmt.Fprintf(w, "%s\t%d\t%d\n", t.Stat, t.Entries, t.TotalXP)
		}
		fmt.Fprintf(w, "\t\t\n")
		fmt.Fprintf(w, "WHEN\tSTAT\tXP\tREASON\n")
		fmt.Fprintf(w, "----\t----\t--\t------\n")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", formatTime(e.CreatedAt), e.Stat, e.DeltaXP, truncate(e.Reason, 50))
		}
		return w.Flush()
	})
}
