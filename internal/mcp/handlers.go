// ABOUTME: MCP tool handler implementations for the QuestOS plan server
// ABOUTME: Failures are returned as error tool results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/core"
	"github.com/harper/questos/internal/csvplan"
	"github.com/harper/questos/internal/models"
	"github.com/harper/questos/internal/storage/sqlite"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	storage    *sqlite.Storage
	drafter    *core.Drafter
	logger     *zap.Logger
	errorLimit int
	now        func() time.Time
}

// Options configure optional handler dependencies
type Options struct {
	Drafter    *core.Drafter
	Logger     *zap.Logger
	ErrorLimit int
}

// NewHandlers creates handlers over store. opts may be nil.
func NewHandlers(store *sqlite.Storage, opts *Options) *Handlers {
	h := &Handlers{
		storage:    store,
		logger:     zap.NewNop(),
		errorLimit: csvplan.DefaultDisplayLimit,
		now:        time.Now,
	}
	if opts != nil {
		h.drafter = opts.Drafter
		if opts.Logger != nil {
			h.logger = opts.Logger
		}
		if opts.ErrorLimit > 0 {
			h.errorLimit = opts.ErrorLimit
		}
	}
	return h
}

// ValidatePlanCSV handles the validate_plan_csv tool
func (h *Handlers) ValidatePlanCSV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("csv")
	if err != nil {
		return mcp.NewToolResultError("csv argument is required and must be a string"), nil
	}

	result := csvplan.Parse(text)
	return jsonResult(map[string]interface{}{
		"valid":       result.Valid(),
		"valid_rows":  len(result.Rows),
		"error_count": len(result.Errors),
		"errors":      result.Display(h.errorLimit),
	})
}

// ImportPlanCSV handles the import_plan_csv tool
func (h *Handlers) ImportPlanCSV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("csv")
	if err != nil {
		return mcp.NewToolResultError("csv argument is required and must be a string"), nil
	}
	source := request.GetString("source", models.ImportSourceMCP)

	result := csvplan.Parse(text)
	if !result.Valid() {
		return mcp.NewToolResultError(h.validationMessage(result)), nil
	}

	imported, err := h.storage.ImportPlanRowsFrom(ctx, source, result.Rows)
	if err != nil {
		h.logger.Error("import failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"import_id":        imported.ImportID,
		"goals_created":    imported.GoalsCreated,
		"actions_created":  imported.ActionsCreated,
		"schedule_created": imported.ScheduleCreated,
	})
}

// GetTodaySchedule handles the get_today_schedule tool
func (h *Handlers) GetTodaySchedule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, errResult := h.dateArg(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	quests, err := h.storage.TodaySchedule(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load schedule: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"date":   date,
		"count":  len(quests),
		"quests": quests,
	})
}

// UpdateQuestStatus handles the update_quest_status tool
func (h *Handlers) UpdateQuestStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("schedule_id")
	if err != nil {
		return mcp.NewToolResultError("schedule_id argument is required and must be a string"), nil
	}
	status, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("status argument is required and must be a string"), nil
	}

	if err := h.storage.UpdateScheduleStatus(ctx, id, status); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update quest: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"schedule_id": id,
		"status":      strings.ToLower(strings.TrimSpace(status)),
	})
}

// GetPlanPreview handles the get_plan_preview tool
func (h *Handlers) GetPlanPreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, errResult := h.dateArg(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	preview, err := h.storage.PlanPreview(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build preview: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"date":    date,
		"preview": preview,
	})
}

// ExportPlanCSV handles the export_plan_csv tool
func (h *Handlers) ExportPlanCSV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := h.storage.ExportPlanCSV(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to export plan: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// LogWrongDeed handles the log_wrong_deed tool
func (h *Handlers) LogWrongDeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stat, err := request.RequireString("stat")
	if err != nil {
		return mcp.NewToolResultError("stat argument is required and must be a string"), nil
	}
	intensity, err := request.RequireString("intensity")
	if err != nil {
		return mcp.NewToolResultError("intensity argument is required and must be a string"), nil
	}
	trigger, err := request.RequireString("trigger")
	if err != nil {
		return mcp.NewToolResultError("trigger argument is required and must be a string"), nil
	}
	debtXP, err := request.RequireFloat("debt_xp")
	if err != nil {
		return mcp.NewToolResultError("debt_xp argument is required and must be a number"), nil
	}

	entry, err := h.storage.LogWrongDeed(ctx, models.WrongDeed{
		Stat:      models.Stat(stat),
		Intensity: models.Intensity(intensity),
		Trigger:   trigger,
		DebtXP:    int(debtXP),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log wrong deed: %v", err)), nil
	}

	return jsonResult(entry)
}

// GetSettings handles the get_settings tool
func (h *Handlers) GetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings, err := h.storage.GetAppSettings(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load settings: %v", err)), nil
	}
	profile, err := h.storage.GetUserProfile(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load profile: %v", err)), nil
	}

	response := map[string]interface{}{
		"settings":    settings,
		"quest_day":   models.QuestDay(h.now(), settings.RolloverHour),
		"has_profile": profile != nil,
	}
	if profile != nil {
		response["profile"] = profile
	}
	return jsonResult(response)
}

// DraftPlan handles the draft_plan tool
func (h *Handlers) DraftPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.drafter == nil {
		return mcp.NewToolResultError("plan drafting is not configured (set OPENAI_API_KEY)"), nil
	}

	goals := request.GetStringSlice("goals", nil)
	if len(goals) == 0 {
		return mcp.NewToolResultError("goals argument is required and must be a list of strings"), nil
	}

	input := core.PromptInput{
		Goals: goals,
		Days:  request.GetInt("days", core.DefaultPlanDays),
		Notes: request.GetString("notes", ""),
	}

	if start := request.GetString("start_date", ""); start != "" {
		if !csvplan.IsISODate(start) {
			return mcp.NewToolResultError("start_date must be YYYY-MM-DD"), nil
		}
		input.StartDate, _ = time.Parse(models.DateLayout, start)
	} else {
		day, errResult := h.dateArg(ctx, request)
		if errResult != nil {
			return errResult, nil
		}
		input.StartDate, _ = time.Parse(models.DateLayout, day)
	}

	profile, err := h.storage.GetUserProfile(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load profile: %v", err)), nil
	}
	input.Profile = profile

	draft, err := h.drafter.Draft(ctx, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("drafting failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"csv":         draft.CSV,
		"valid":       draft.Valid(),
		"valid_rows":  draft.Rows,
		"error_count": len(draft.Result.Errors),
		"errors":      draft.Result.Display(h.errorLimit),
	})
}

// dateArg returns the date argument, or the current quest day when absent
func (h *Handlers) dateArg(ctx context.Context, request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	if date := strings.TrimSpace(request.GetString("date", "")); date != "" {
		if !csvplan.IsISODate(date) {
			return "", mcp.NewToolResultError("date must be YYYY-MM-DD")
		}
		return date, nil
	}

	settings, err := h.storage.GetAppSettings(ctx)
	if err != nil {
		return "", mcp.NewToolResultError(fmt.Sprintf("failed to load settings: %v", err))
	}
	return models.QuestDay(h.now(), settings.RolloverHour), nil
}

func (h *Handlers) validationMessage(result csvplan.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CSV has %d error(s); nothing was imported:", len(result.Errors))
	for _, line := range result.Display(h.errorLimit) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if extra := len(result.Errors) - h.errorLimit; extra > 0 {
		fmt.Fprintf(&b, "\n...and %d more", extra)
	}
	return b.String()
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
