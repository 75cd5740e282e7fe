// ABOUTME: Drafts a CSV plan with an LLM and validates the reply
// ABOUTME: Drafts are returned for review and never imported automatically
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harper/questos/internal/csvplan"
)

// Completer is the chat completion capability the drafter needs
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Draft is a drafted plan and its validation result
type Draft struct {
	CSV    string         `json:"csv"`
	Result csvplan.Result `json:"-"`
	Errors []string       `json:"errors,omitempty"`
	Rows   int            `json:"rows"`
}

// Valid reports whether the draft can be imported as is
func (d *Draft) Valid() bool {
	return d.Result.Valid()
}

// Drafter turns goals into a validated CSV plan
type Drafter struct {
	llm    Completer
	logger *zap.Logger
	now    func() time.Time
}

// NewDrafter creates a drafter backed by the given completer
func NewDrafter(llm Completer, logger *zap.Logger) *Drafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Drafter{llm: llm, logger: logger, now: time.Now}
}

// Draft prompts the model and validates the CSV it returns
func (d *Drafter) Draft(ctx context.Context, input PromptInput) (*Draft, error) {
	if d.llm == nil {
		return nil, fmt.Errorf("drafting requires an LLM client")
	}

	input, err := input.Normalize(d.now())
	if err != nil {
		return nil, err
	}

	reply, err := d.llm.Complete(ctx, SystemPrompt, BuildPlanPrompt(input))
	if err != nil {
		return nil, fmt.Errorf("failed to draft plan: %w", err)
	}

	csv := ExtractCSV(reply)
	if csv == "" {
		return nil, fmt.Errorf("model reply contained no CSV")
	}

	result := csvplan.Parse(csv)
	draft := &Draft{
		CSV:    csv,
		Result: result,
		Errors: result.Display(csvplan.DefaultDisplayLimit),
		Rows:   len(result.Rows),
	}

	d.logger.Info("plan drafted",
		zap.Int("rows", draft.Rows),
		zap.Int("errors", len(result.Errors)),
		zap.Int("days", input.Days))

	return draft, nil
}

// ExtractCSV pulls the CSV body out of a model reply.
// A fenced code block wins; otherwise prose before the header line is dropped.
func ExtractCSV(reply string) string {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")

	if start := strings.Index(reply, "```"); start >= 0 {
		body := reply[start+3:]
		if nl := strings.Index(body, "\n"); nl >= 0 {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}

	lines := strings.Split(reply, "\n")
	for i, line := range lines {
		if looksLikeHeader(line) {
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}
	return strings.TrimSpace(reply)
}

func looksLikeHeader(line string) bool {
	line = strings.ToLower(line)
	for _, col := range csvplan.RequiredHeaders {
		if !strings.Contains(line, strings.ToLower(col)) {
			return false
		}
	}
	return strings.Contains(line, ",")
}
