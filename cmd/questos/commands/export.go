// ABOUTME: CLI command to export the plan as CSV or a full YAML/Markdown snapshot
// ABOUTME: Writes to stdout unless --output is given
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportFormats = []string{"csv", "yaml", "markdown"}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the plan",
		Long: `Export the plan.

csv writes every scheduled quest as goal,action,stat,duration_min,
difficulty,xp,kind,date. yaml and markdown write a full snapshot with
the profile, settings, goals, quests, debt and import history.

Examples:
  questos export > plan.csv
  questos export --format yaml --output backup.yaml
  questos export --format markdown --output plan.md`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format: csv, yaml, markdown")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	if !containsString(exportFormats, exportFormat) {
		return fmt.Errorf("--format must be csv, yaml or markdown, got %q", exportFormat)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if exportOutput != "" {
			if err := writeExport(ctx, a, exportOutput); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %s to %s\n", exportFormat, exportOutput)
			}
			return nil
		}

		out := cmd.OutOrStdout()
		switch exportFormat {
		case "yaml":
			return a.store.WriteYAML(ctx, out)
		case "markdown":
			return a.store.WriteMarkdown(ctx, out)
		default:
			csv, err := a.store.ExportPlanCSV(ctx)
			if err != nil {
				return fmt.Errorf("exporting plan: %w", err)
			}
			_, err = fmt.Fprintln(out, csv)
			return err
		}
	})
}

func writeExport(ctx context.Context, a *app, path string) error {
	switch exportFormat {
	case "yaml":
		return a.store.ExportToYAML(ctx, path)
	case "markdown":
		return a.store.ExportToMarkdown(ctx, path)
	default:
		csv, err := a.store.ExportPlanCSV(ctx)
		if err != nil {
			return fmt.Errorf("exporting plan: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		return os.WriteFile(path, []byte(csv+"\n"), 0644) // #nosec G306
	}
}
