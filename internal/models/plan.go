// ABOUTME: Plan domain records: goals, actions, schedule entries and import manifests
// ABOUTME: Also holds the read-side projections consumed by the CLI and MCP tools
package models

import "time"

// Goal is a user goal, created once per unique title within an import
type Goal struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category,omitempty"`
	TargetDate    string    `json:"target_date,omitempty"`
	Priority      int       `json:"priority"`
	SuccessMetric string    `json:"success_metric,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Default goal values applied on import
const (
	DefaultGoalPriority = 3
	GoalStatusActive    = "active"
)

// Action is a repeatable quest template. GoalID is empty when unlinked.
type Action struct {
	ID          string     `json:"id"`
	GoalID      string     `json:"goal_id,omitempty"`
	Title       string     `json:"title"`
	Stat        Stat       `json:"stat"`
	DurationMin float64    `json:"duration_min"`
	Difficulty  Difficulty `json:"difficulty"`
	XP          float64    `json:"xp"`
	Frequency   string     `json:"frequency"`
	Kind        Kind       `json:"kind"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FrequencyDaily is the frequency assigned to imported actions
const FrequencyDaily = "daily"

// ScheduleEntry is one action scheduled on one calendar day (a quest)
type ScheduleEntry struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"`
	ActionID  string         `json:"action_id"`
	Kind      Kind           `json:"kind"`
	Status    ScheduleStatus `json:"status"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Schedule entry sources
const (
	SourceImport = "import"
	SourcePlan   = "plan"
)

// ImportManifest summarizes one completed import batch
type ImportManifest struct {
	ID            string    `json:"id" yaml:"id"`
	Source        string    `json:"source" yaml:"source"`
	RawRowCount   int       `json:"raw_row_count" yaml:"raw_row_count"`
	ValidRowCount int       `json:"valid_row_count" yaml:"valid_row_count"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// Import manifest sources
const (
	ImportSourcePaste = "csv_paste"
	ImportSourceFile  = "csv_file"
	ImportSourceLLM   = "llm_draft"
	ImportSourceMCP   = "mcp"
	ImportSourceCharm = "charm_backup"
)

// ImportResult is returned to the caller after an import commits
type ImportResult struct {
	ImportID        string `json:"import_id"`
	GoalsCreated    int    `json:"goals_created"`
	ActionsCreated  int    `json:"actions_created"`
	ScheduleCreated int    `json:"schedule_created"`
}

// TodayQuest is a schedule entry joined with its action, as shown on the today screen
type TodayQuest struct {
	ScheduleID  string         `json:"schedule_id"`
	ActionID    string         `json:"action_id"`
	Date        string         `json:"date"`
	Status      ScheduleStatus `json:"status"`
	Kind        Kind           `json:"kind"`
	Title       string         `json:"title"`
	Stat        Stat           `json:"stat"`
	XP          float64        `json:"xp"`
	DurationMin float64        `json:"duration_min"`
	Difficulty  Difficulty     `json:"difficulty"`
}

// PlanPreview aggregates what an import produced
type PlanPreview struct {
	TodayCounts TodayCounts `json:"today_counts"`
	Milestones  []Milestone `json:"milestones"`
	ActionStats ActionStats `json:"action_stats"`
}

// TodayCounts counts the quests of one day per kind
type TodayCounts struct {
	Core     int `json:"core"`
	Optional int `json:"optional"`
	Recovery int `json:"recovery"`
}

// Add increments the counter for kind by n
func (c *TodayCounts) Add(kind Kind, n int) {
	switch kind {
	case KindCore:
		c.Core += n
	case KindOptional:
		c.Optional += n
	case KindRecovery:
		c.Recovery += n
	}
}

// Total returns the number of quests across all kinds
func (c TodayCounts) Total() int {
	return c.Core + c.Optional + c.Recovery
}

// Milestone is a goal as listed on the preview screen
type Milestone struct {
	Title      string `json:"title"`
	TargetDate string `json:"target_date,omitempty"`
	Status     string `json:"status"`
}

// ActionStats counts all actions per difficulty and sums their XP
type ActionStats struct {
	Easy    int     `json:"easy"`
	Medium  int     `json:"medium"`
	Hard    int     `json:"hard"`
	TotalXP float64 `json:"total_xp"`
}

// Add records n actions of the given difficulty worth xp in total
func (s *ActionStats) Add(difficulty Difficulty, n int, xp float64) {
	switch difficulty {
	case DifficultyEasy:
		s.Easy += n
	case DifficultyMedium:
		s.Medium += n
	case DifficultyHard:
		s.Hard += n
	}
	s.TotalXP += xp
}
