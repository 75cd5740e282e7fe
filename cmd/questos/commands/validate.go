// ABOUTME: CLI command to validate a plan CSV without importing it
// ABOUTME: Prints the valid row count or the first validation errors
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/questos/internal/csvplan"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a plan CSV",
		Long: `Validate a plan CSV without touching the database.

Reads the file argument, or stdin when it is omitted or "-". The header
must contain date, goal, action, stat, durationMin, difficulty and xp;
kind is optional. Errors are listed as L<line> <field>: <message>.

Examples:
  questos validate plan.csv
  pbpaste | questos validate
  questos validate plan.csv --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	input, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	result := csvplan.Parse(input)
	out := cmd.OutOrStdout()

	if resolveFormat(out) == "json" {
		if err := printJSON(out, map[string]interface{}{
			"valid":       result.Valid(),
			"valid_rows":  len(result.Rows),
			"error_count": len(result.Errors),
			"errors":      result.Display(cfg.ErrorLimit),
		}); err != nil {
			return err
		}
	} else if result.Valid() {
		if !quiet {
			fmt.Fprintf(out, "✓ %d valid row(s)\n", len(result.Rows))
		}
	} else {
		printValidationErrors(out, result, cfg.ErrorLimit)
	}

	if !result.Valid() {
		return fmt.Errorf("plan has %d validation error(s)", len(result.Errors))
	}
	return nil
}
