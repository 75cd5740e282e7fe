// ABOUTME: CLI command to view and set the player profile
// ABOUTME: The profile is a single record of name, age and gender
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/questos/internal/models"
)

var (
	profileName   string
	profileAge    int
	profileGender string
)

// NewProfileCmd creates profile command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage the player profile",
		Long: `View and manage the player profile.

Examples:
  questos profile
  questos profile show --format json
  questos profile set --name "Doctor Biz" --age 41 --gender male`,
		RunE: runProfileShow,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		Args:  cobra.NoArgs,
		RunE:  runProfileShow,
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the profile",
		Long: `Create or update the profile. Fields left out keep their current value.

Examples:
  questos profile set --name "Doctor Biz" --age 41 --gender male
  questos profile set --age 42`,
		Args: cobra.NoArgs,
		RunE: runProfileSet,
	}

	setCmd.Flags().StringVar(&profileName, "name", "", "Player name")
	setCmd.Flags().IntVar(&profileAge, "age", 0, "Age (1-120)")
	setCmd.Flags().StringVar(&profileGender, "gender", "", "Gender: male, female, other")

	cmd.AddCommand(showCmd, setCmd)

	return cmd
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		profile, err := a.store.GetUserProfile(ctx)
		if err != nil {
			return fmt.Errorf("getting profile: %w", err)
		}

		out := cmd.OutOrStdout()
		if profile == nil {
			if !quiet {
				fmt.Fprintf(out, "No profile found. Create one with: questos profile set --name \"Your Name\" --age 30 --gender other\n")
			}
			return nil
		}

		if resolveFormat(out) == "json" {
			return printJSON(out, profile)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "FIELD\tVALUE\n")
		fmt.Fprintf(w, "-----\t-----\n")
		fmt.Fprintf(w, "Name\t%s\n", profile.Name)
		fmt.Fprintf(w, "Age\t%d\n", profile.Age)
		fmt.Fprintf(w, "Gender\t%s\n", profile.Gender)
		fmt.Fprintf(w, "Last Updated\t%s\n", formatTime(profile.UpdatedAt))
		return w.Flush()
	})
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		current, err := a.store.GetUserProfile(ctx)
		if err != nil {
			return fmt.Errorf("getting profile: %w", err)
		}

		input := models.ProfileInput{
			Name:   profileName,
			Age:    profileAge,
			Gender: models.Gender(profileGender),
		}
		if current != nil {
			if !cmd.Flags().Changed("name") {
				input.Name = current.Name
			}
			if !cmd.Flags().Changed("age") {
				input.Age = current.Age
			}
			if !cmd.Flags().Changed("gender") {
				input.Gender = current.Gender
			}
		}

		profile, err := a.store.SaveUserProfile(ctx, input)
		if err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}

		out := cmd.OutOrStdout()
		if resolveFormat(out) == "json" {
			return printJSON(out, profile)
		}
		if !quiet {
			fmt.Fprintf(out, "✓ Profile saved for %s\n", profile.Name)
		}
		return nil
	})
}
