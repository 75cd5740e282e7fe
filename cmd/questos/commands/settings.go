// ABOUTME: CLI command to view and change planner settings
// ABOUTME: Strictness, rollover hour and notifications live in app_settings
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	settingsStrictness    string
	settingsRolloverHour  int
	settingsNotifications bool
)

// NewSettingsCmd creates the settings command
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change planner settings",
		Long: `View and change planner settings.

Examples:
  questos settings
  questos settings set --strictness hardcore
  questos settings set --rollover-hour 5 --notifications`,
		RunE: runSettingsShow,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsShow,
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsSet,
	}

	setCmd.Flags().StringVar(&settingsStrictness, "strictness", "", "Strictness: easy, balanced, hardcore")
	setCmd.Flags().IntVar(&settingsRolloverHour, "rollover-hour", 4, "Hour (0-23) at which the quest day starts")
	setCmd.Flags().BoolVar(&settingsNotifications, "notifications", false, "Enable notifications")

	cmd.AddCommand(showCmd, setCmd)

	return cmd
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		settings, err := a.store.GetAppSettings(ctx)
		if err != nil {
			return fmt.Errorf("getting settings: %w", err)
		}

		out := cmd.OutOrStdout()
		if resolveFormat(out) == "json" {
			return printJSON(out, settings)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SETTING\tVALUE\n")
		fmt.Fprintf(w, "-------\t-----\n")
		fmt.Fprintf(w, "Strictness\t%s\n", settings.Strictness.Label())
		fmt.Fprintf(w, "Rollover hour\t%02d:00\n", settings.RolloverHour)
		fmt.Fprintf(w, "Notifications\t%t\n", settings.NotificationsEnabled)
		return w.Flush()
	})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if !flags.Changed("strictness") && !flags.Changed("rollover-hour") && !flags.Changed("notifications") {
		return fmt.Errorf("nothing to set: use --strictness, --rollover-hour or --notifications")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if flags.Changed("strictness") {
			if err := a.store.SetStrictness(ctx, settingsStrictness); err != nil {
				return fmt.Errorf("setting strictness: %w", err)
			}
		}
		if flags.Changed("rollover-hour") {
			if err := a.store.SetRolloverHour(ctx, settingsRolloverHour); err != nil {
				return fmt.Errorf("setting rollover hour: %w", err)
			}
		}
		if flags.Changed("notifications") {
			if err := a.store.SetNotificationsEnabled(ctx, settingsNotifications); err != nil {
				return fmt.Errorf("setting notifications: %w", err)
			}
		}

		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Settings updated")
		}
		return nil
	})
}
