// ABOUTME: CLI command to draft a plan CSV with OpenAI
// ABOUTME: Prints the prompt, the drafted CSV, or imports the draft when it validates
package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/config"
	"github.com/harper/questos/internal/core"
	"github.com/harper/questos/internal/llm"
	"github.com/harper/questos/internal/models"
)

// newCompleter builds the LLM client; tests replace it with a fake
var newCompleter = func(cfg *config.Config, logger *zap.Logger) (core.Completer, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set; use --prompt-only and paste the prompt into your LLM")
	}
	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:      cfg.OpenAIKey,
		ChatModel:   cfg.ChatModel,
		Timeout:     cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, err
	}
	client.SetLogger(logger.Named("llm"))
	return client, nil
}

var (
	draftGoals      []string
	draftDays       int
	draftStart      string
	draftNotes      string
	draftOutput     string
	draftImport     bool
	draftPromptOnly bool
)

// NewDraftCmd creates the draft command
func NewDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft a plan CSV with an LLM",
		Long: `Draft a plan CSV for your goals.

With OPENAI_API_KEY set, the prompt is sent to OpenAI and the reply is
validated. Without a key, use --prompt-only to print the prompt and
paste it into any LLM, then import the CSV it gives back.

Examples:
  questos draft --goal "Get fit" --goal "Read more" --days 14
  questos draft --goal "Ship the side project" --output plan.csv
  questos draft --goal "Get fit" --import
  questos draft --goal "Get fit" --prompt-only`,
		Args: cobra.NoArgs,
		RunE: runDraft,
	}

	cmd.Flags().StringArrayVar(&draftGoals, "goal", nil, "Goal to plan for (can be repeated)")
	cmd.Flags().IntVar(&draftDays, "days", core.DefaultPlanDays, "Number of days to plan")
	cmd.Flags().StringVar(&draftStart, "start", "", "First day (YYYY-MM-DD, default: current quest day)")
	cmd.Flags().StringVar(&draftNotes, "notes", "", "Extra constraints for the planner")
	cmd.Flags().StringVarP(&draftOutput, "output", "o", "", "Write the drafted CSV to a file")
	cmd.Flags().BoolVar(&draftImport, "import", false, "Import the draft if it validates")
	cmd.Flags().BoolVar(&draftPromptOnly, "prompt-only", false, "Print the prompt instead of calling the LLM")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

func runDraft(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		day, err := a.questDay(ctx, draftStart)
		if err != nil {
			return err
		}
		start, _ := time.Parse(models.DateLayout, day)

		profile, err := a.store.GetUserProfile(ctx)
		if err != nil {
			return fmt.Errorf("getting profile: %w", err)
		}

		input := core.PromptInput{
			Profile:   profile,
			Goals:     draftGoals,
			StartDate: start,
			Days:      draftDays,
			Notes:     draftNotes,
		}

		out := cmd.OutOrStdout()
		if draftPromptOnly {
			input, err := input.Normalize(start)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, core.BuildPlanPrompt(input))
			return err
		}

		completer, err := newCompleter(a.cfg, a.logger)
		if err != nil {
			return err
		}

		draft, err := core.NewDrafter(completer, a.logger.Named("drafter")).Draft(ctx, input)
		if err != nil {
			return err
		}

		if draftOutput != "" {
			if err := os.WriteFile(draftOutput, []byte(draft.CSV+"\n"), 0644); err != nil { // #nosec G306
				return fmt.Errorf("writing draft: %w", err)
			}
		}

		if !draft.Valid() {
			if draftOutput == "" {
				fmt.Fprintln(out, draft.CSV)
				fmt.Fprintln(out)
			}
			printValidationErrors(out, draft.Result, a.cfg.ErrorLimit)
			return fmt.Errorf("draft has %d validation error(s); fix it and run 'questos import'", len(draft.Result.Errors))
		}

		if draftImport {
			imported, err := a.store.ImportPlanRowsFrom(ctx, models.ImportSourceLLM, draft.Result.Rows)
			if err != nil {
				return fmt.Errorf("importing draft: %w", err)
			}
			if !quiet {
				fmt.Fprintf(out, "✓ Drafted and imported %d quest(s) across %d goal(s)\n",
					imported.ScheduleCreated, imported.GoalsCreated)
			}
			return nil
		}

		if draftOutput != "" {
			if !quiet {
				fmt.Fprintf(out, "✓ Drafted %d row(s) to %s\n", draft.Rows, draftOutput)
			}
			return nil
		}

		_, err = fmt.Fprintln(out, draft.CSV)
		return err
	})
}
