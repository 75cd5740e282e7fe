// ABOUTME: MCP tool definitions and registration for the QuestOS plan server
// ABOUTME: Exposes validation, import, schedule, preview, export, debt and drafting tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, handlers *Handlers) {
	server.AddTools(handlers.Tools()...)
}

// Tools returns the tool set served by h. draft_plan is only offered when a drafter is configured.
func (h *Handlers) Tools() []mcpserver.ServerTool {
	tools := []mcpserver.ServerTool{
		{
			Tool: mcp.Tool{
				Name:        "validate_plan_csv",
				Description: "Validate a plan CSV without importing it. Returns the number of valid rows and the first errors as L<line> <field>: <message>.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"csv": map[string]interface{}{
							"type":        "string",
							"description": "CSV text with a header row: date, goal, action, stat, durationMin, difficulty, xp and optional kind",
						},
					},
					Required: []string{"csv"},
				},
			},
			Handler: h.ValidatePlanCSV,
		},
		{
			Tool: mcp.Tool{
				Name:        "import_plan_csv",
				Description: "Validate and import a plan CSV. Nothing is written unless every row is valid.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"csv": map[string]interface{}{
							"type":        "string",
							"description": "CSV text to import",
						},
						"source": map[string]interface{}{
							"type":        "string",
							"description": "Import source recorded in the manifest (default: mcp)",
						},
					},
					Required: []string{"csv"},
				},
			},
			Handler: h.ImportPlanCSV,
		},
		{
			Tool: mcp.Tool{
				Name:        "get_today_schedule",
				Description: "List the quests scheduled for a day, core first. Defaults to the current quest day.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"date": map[string]interface{}{
							"type":        "string",
							"description": "Day as YYYY-MM-DD",
						},
					},
				},
			},
			Handler: h.GetTodaySchedule,
		},
		{
			Tool: mcp.Tool{
				Name:        "update_quest_status",
				Description: "Mark a scheduled quest as done or skipped.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"schedule_id": map[string]interface{}{
							"type":        "string",
							"description": "Schedule entry ID from get_today_schedule",
						},
						"status": map[string]interface{}{
							"type":        "string",
							"enum":        []string{"done", "skipped"},
							"description": "New status",
						},
					},
					Required: []string{"schedule_id", "status"},
				},
			},
			Handler: h.UpdateQuestStatus,
		},
		{
			Tool: mcp.Tool{
				Name:        "get_plan_preview",
				Description: "Summarize the imported plan: quests per kind for a day, upcoming milestones and action totals.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"date": map[string]interface{}{
							"type":        "string",
							"description": "Day to count quests for, YYYY-MM-DD (default: current quest day)",
						},
					},
				},
			},
			Handler: h.GetPlanPreview,
		},
		{
			Tool: mcp.Tool{
				Name:        "export_plan_csv",
				Description: "Export every scheduled quest as CSV.",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]interface{}{},
				},
			},
			Handler: h.ExportPlanCSV,
		},
		{
			Tool: mcp.Tool{
				Name:        "log_wrong_deed",
				Description: "Log a wrong deed and record its XP debt against a stat.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"stat": map[string]interface{}{
							"type": "string",
							"enum": []string{"body", "mind", "career", "focus"},
						},
						"intensity": map[string]interface{}{
							"type": "string",
							"enum": []string{"light", "medium", "heavy"},
						},
						"trigger": map[string]interface{}{
							"type":        "string",
							"description": "What happened",
						},
						"debt_xp": map[string]interface{}{
							"type":        "number",
							"description": "XP debt to record (non-negative)",
						},
					},
					Required: []string{"stat", "intensity", "trigger", "debt_xp"},
				},
			},
			Handler: h.LogWrongDeed,
		},
		{
			Tool: mcp.Tool{
				Name:        "get_settings",
				Description: "Get the planner settings and the player profile.",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]interface{}{},
				},
			},
			Handler: h.GetSettings,
		},
	}

	if h.drafter != nil {
		tools = append(tools, mcpserver.ServerTool{
			Tool: mcp.Tool{
				Name:        "draft_plan",
				Description: "Draft a plan CSV for the given goals with an LLM. The draft is validated but not imported.",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]interface{}{
						"goals": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "Goals to plan for",
						},
						"days": map[string]interface{}{
							"type":        "number",
							"description": "Number of days to plan (default: 7)",
							"default":     7,
						},
						"start_date": map[string]interface{}{
							"type":        "string",
							"description": "First day, YYYY-MM-DD (default: current quest day)",
						},
						"notes": map[string]interface{}{
							"type":        "string",
							"description": "Extra constraints for the planner",
						},
					},
					Required: []string{"goals"},
				},
			},
			Handler: h.DraftPlan,
		})
	}

	return tools
}

// NewServer creates an MCP server with every tool registered
func NewServer(handlers *Handlers, version string) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(
		"QuestOS Plan Store",
		version,
		mcpserver.WithToolCapabilities(false),
	)
	RegisterTools(server, handlers)
	return server
}
