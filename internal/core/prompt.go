// ABOUTME: Renders the plan-generation prompt handed to an LLM
// ABOUTME: Lists the CSV columns and allowed values the importer accepts
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/harper/questos/internal/csvplan"
	"github.com/harper/questos/internal/models"
)

// DefaultPlanDays is how many days a drafted plan covers when unspecified
const DefaultPlanDays = 7

// MaxPlanDays bounds a single drafted plan
const MaxPlanDays = 90

// PromptInput describes the plan the user wants drafted
type PromptInput struct {
	Profile   *models.UserProfile
	Goals     []string
	StartDate time.Time
	Days      int
	Notes     string
}

// Normalize trims goals and fills in the start date and day count
func (in PromptInput) Normalize(now time.Time) (PromptInput, error) {
	goals := make([]string, 0, len(in.Goals))
	for _, g := range in.Goals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	if len(goals) == 0 {
		return in, fmt.Errorf("at least one goal is required")
	}
	in.Goals = goals

	if in.StartDate.IsZero() {
		in.StartDate = now
	}
	if in.Days == 0 {
		in.Days = DefaultPlanDays
	}
	if in.Days < 1 || in.Days > MaxPlanDays {
		return in, fmt.Errorf("days must be between 1 and %d, got %d", MaxPlanDays, in.Days)
	}
	in.Notes = strings.TrimSpace(in.Notes)
	return in, nil
}

// SystemPrompt instructs the model to answer with CSV only
const SystemPrompt = `You are a planning assistant for a gamified habit tracker.
You turn goals into small daily quests and answer with CSV only: no prose, no markdown.`

// BuildPlanPrompt renders the user prompt for a normalized input
func BuildPlanPrompt(in PromptInput) string {
	var b strings.Builder

	end := in.StartDate.AddDate(0, 0, in.Days-1)
	fmt.Fprintf(&b, "Create a daily quest plan from %s to %s (%d days).\n\n",
		in.StartDate.Format(models.DateLayout), end.Format(models.DateLayout), in.Days)

	if p := in.Profile; p != nil {
		b.WriteString("About me:\n")
		fmt.Fprintf(&b, "- Name: %s\n", p.Name)
		fmt.Fprintf(&b, "- Age: %d\n", p.Age)
		fmt.Fprintf(&b, "- Gender: %s\n\n", p.Gender)
	}

	b.WriteString("My goals:\n")
	for _, g := range in.Goals {
		fmt.Fprintf(&b, "- %s\n", g)
	}
	b.WriteString("\n")

	if in.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n\n", in.Notes)
	}

	fmt.Fprintf(&b, "Output a CSV with this exact header row:\n%s\n\n", strings.Join(csvplan.Header, ","))
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- %s: YYYY-MM-DD, within the range above\n", csvplan.ColDate)
	fmt.Fprintf(&b, "- %s: one of the goals above, spelled exactly the same on every row\n", csvplan.ColGoal)
	fmt.Fprintf(&b, "- %s: a short concrete task\n", csvplan.ColAction)
	fmt.Fprintf(&b, "- %s: one of %s\n", csvplan.ColStat, joinValues(models.Stats))
	fmt.Fprintf(&b, "- %s: minutes, a number\n", csvplan.ColDurationMin)
	fmt.Fprintf(&b, "- %s: one of %s\n", csvplan.ColDifficulty, joinValues(models.Difficulties))
	fmt.Fprintf(&b, "- %s: experience points, a number\n", csvplan.ColXP)
	fmt.Fprintf(&b, "- %s: one of %s (core is the default)\n", csvplan.ColKind, joinValues(models.Kinds))
	b.WriteString("- Quote any field that contains a comma\n")
	b.WriteString("- Every day needs at least one core quest\n")

	return b.String()
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
