// ABOUTME: Root command and global flags for the QuestOS CLI
// ABOUTME: Wires every subcommand and the shared verbose/quiet/format/db flags
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbPath       string
)

const banner = `
 ██████  ██    ██ ███████ ███████ ████████  ██████  ███████
██    ██ ██    ██ ██      ██         ██    ██    ██ ██
██    ██ ██    ██ █████   ███████    ██    ██    ██ ███████
██ ▄▄ ██ ██    ██ ██           ██    ██    ██    ██      ██
 ██████   ██████  ███████ ███████    ██     ██████  ███████
    ▀▀
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questos",
		Short: "Turn a CSV plan into daily quests",
		Long: banner + `
QuestOS imports a goal plan written as CSV (often by an LLM), stores it
locally in SQLite and turns it into a daily schedule of quests.

Validate and import a plan, check off today's quests, log wrong deeds
as XP debt, export the plan, and back it up to Charm.

Examples:
  questos validate plan.csv
  questos import plan.csv
  questos today
  questos done sch_1234
  questos export --format yaml --output plan.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet cannot be used together")
			}
			switch outputFormat {
			case "auto", "json", "table":
				return nil
			default:
				return fmt.Errorf("--format must be auto, json or table, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json, table")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: $XDG_DATA_HOME/questos/questos.db)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewValidateCmd(),
		NewImportCmd(),
		NewTodayCmd(),
		NewStatusCmd("done"),
		NewStatusCmd("skip"),
		NewPreviewCmd(),
		NewExportCmd(),
		NewDeedCmd(),
		NewGoalsCmd(),
		NewProfileCmd(),
		NewSettingsCmd(),
		NewResetCmd(),
		NewDraftCmd(),
		NewBackupCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
