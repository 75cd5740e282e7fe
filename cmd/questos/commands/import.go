// ABOUTME: CLI command to import a plan CSV into the local store
// ABOUTME: All rows are written in one transaction, and only if every row is valid
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/csvplan"
	"github.com/harper/questos/internal/models"
)

var (
	importSource string
)

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a plan CSV",
		Long: `Validate and import a plan CSV.

Each unique goal title becomes a goal, each row becomes an action and a
quest scheduled on its date. Nothing is written if any row is invalid.

Examples:
  questos import plan.csv
  pbpaste | questos import
  questos import plan.csv --source csv_file`,
		Args: cobra.MaximumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringVar(&importSource, "source", "", "Import source recorded in the manifest (default: QUESTOS_IMPORT_SOURCE or csv_paste)")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	input, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()

		result := csvplan.Parse(input)
		if !result.Valid() {
			printValidationErrors(out, result, a.cfg.ErrorLimit)
			return fmt.Errorf("nothing imported: plan has %d validation error(s)", len(result.Errors))
		}

		source := importSource
		if source == "" {
			source = a.cfg.ImportSource
		}
		if path != "" && path != "-" && importSource == "" && source == models.ImportSourcePaste {
			source = models.ImportSourceFile
		}

		imported, err := a.store.ImportPlanRowsFrom(ctx, source, result.Rows)
		if err != nil {
			return fmt.Errorf("importing plan: %w", err)
		}
		a.logger.Debug("import finished", zap.String("import_id", imported.ImportID))

		if resolveFormat(out) == "json" {
			return printJSON(out, imported)
		}
		if !quiet {
			fmt.Fprintf(out, "✓ Imported %d row(s): %d goal(s), %d action(s), %d quest(s)\n",
				len(result.Rows), imported.GoalsCreated, imported.ActionsCreated, imported.ScheduleCreated)
			fmt.Fprintf(out, "  Import ID: %s\n", imported.ImportID)
		}
		return nil
	})
}
