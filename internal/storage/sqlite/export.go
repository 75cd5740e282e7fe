// ABOUTME: Snapshot export of the whole plan store
// ABOUTME: Supports YAML and Markdown export formats
package sqlite

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/questos/internal/models"
)

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version    string                  `yaml:"version" json:"version"`
	ExportedAt string                  `yaml:"exported_at" json:"exported_at"`
	Tool       string                  `yaml:"tool" json:"tool"`
	Profile    *ExportProfile          `yaml:"profile,omitempty" json:"profile,omitempty"`
	Settings   models.AppSettings      `yaml:"settings" json:"settings"`
	Goals      []ExportGoal            `yaml:"goals" json:"goals"`
	Quests     []PlanLine              `yaml:"quests" json:"quests"`
	Debt       []ExportDebt            `yaml:"debt,omitempty" json:"debt,omitempty"`
	Imports    []models.ImportManifest `yaml:"imports,omitempty" json:"imports,omitempty"`
}

// ExportProfile represents the user profile for export
type ExportProfile struct {
	Name   string `yaml:"name" json:"name"`
	Age    int    `yaml:"age" json:"age"`
	Gender string `yaml:"gender" json:"gender"`
}

// ExportGoal represents a goal for export
type ExportGoal struct {
	Title      string `yaml:"title" json:"title"`
	Status     string `yaml:"status" json:"status"`
	Priority   int    `yaml:"priority" json:"priority"`
	TargetDate string `yaml:"target_date,omitempty" json:"target_date,omitempty"`
	CreatedAt  string `yaml:"created_at" json:"created_at"`
}

// ExportDebt represents a debt ledger entry for export
type ExportDebt struct {
	Stat      string `yaml:"stat" json:"stat"`
	DeltaXP   int    `yaml:"delta_xp" json:"delta_xp"`
	Reason    string `yaml:"reason" json:"reason"`
	CreatedAt string `yaml:"created_at" json:"created_at"`
}

// Export collects all plan data from storage
func (s *Storage) Export(ctx context.Context) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: s.timestamp().Format(time.RFC3339),
		Tool:       "questos",
		Goals:      []ExportGoal{},
		Quests:     []PlanLine{},
	}

	profile, err := s.GetUserProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile != nil {
		data.Profile = &ExportProfile{
			Name:   profile.Name,
			Age:    profile.Age,
			Gender: string(profile.Gender),
		}
	}

	data.Settings, err = s.GetAppSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	goals, err := s.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	for _, g := range goals {
		data.Goals = append(data.Goals, ExportGoal{
			Title:      g.Title,
			Status:     g.Status,
			Priority:   g.Priority,
			TargetDate: g.TargetDate,
			CreatedAt:  g.CreatedAt.Format(time.RFC3339),
		})
	}

	quests, err := NewScheduleStore(s.db.conn).PlanLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	data.Quests = append(data.Quests, quests...)

	debt, err := s.ListDebt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list debt: %w", err)
	}
	for _, d := range debt {
		data.Debt = append(data.Debt, ExportDebt{
			Stat:      string(d.Stat),
			DeltaXP:   d.DeltaXP,
			Reason:    d.Reason,
			CreatedAt: d.CreatedAt.Format(time.RFC3339),
		})
	}

	data.Imports, err = s.ListImports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}

	return data, nil
}

// WriteYAML encodes the snapshot as YAML to w
func (s *Storage) WriteYAML(ctx context.Context, w io.Writer) error {
	data, err := s.Export(ctx)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteMarkdown renders the snapshot as Markdown to w
func (s *Storage) WriteMarkdown(ctx context.Context, w io.Writer) error {
	data, err := s.Export(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "# QuestOS Export - %s\n\n", s.timestamp().Format(models.DateLayout))
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)

	if data.Profile != nil {
		_, _ = fmt.Fprintln(w, "## Profile")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "- **Name:** %s\n", data.Profile.Name)
		_, _ = fmt.Fprintf(w, "- **Age:** %d\n", data.Profile.Age)
		_, _ = fmt.Fprintf(w, "- **Gender:** %s\n", data.Profile.Gender)
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, "## Settings")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "- **Strictness:** %s\n", data.Settings.Strictness.Label())
	_, _ = fmt.Fprintf(w, "- **Rollover hour:** %d\n", data.Settings.RolloverHour)
	_, _ = fmt.Fprintf(w, "- **Notifications:** %t\n", data.Settings.NotificationsEnabled)
	_, _ = fmt.Fprintln(w)

	if len(data.Goals) > 0 {
		_, _ = fmt.Fprintln(w, "## Goals")
		_, _ = fmt.Fprintln(w)
		for _, g := range data.Goals {
			_, _ = fmt.Fprintf(w, "- %s (%s)\n", g.Title, g.Status)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Quests) > 0 {
		_, _ = fmt.Fprintln(w, "## Quests")
		currentDate := ""
		for _, q := range data.Quests {
			if q.Date != currentDate {
				currentDate = q.Date
				_, _ = fmt.Fprintf(w, "\n### %s\n\n", currentDate)
				_, _ = fmt.Fprintln(w, "| Action | Goal | Stat | Kind | Difficulty | XP | Status |")
				_, _ = fmt.Fprintln(w, "|--------|------|------|------|------------|----|--------|")
			}
			_, _ = fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
				markdownCell(q.Action), markdownCell(q.Goal), q.Stat, q.Kind, q.Difficulty,
				formatNumber(q.XP), q.Status)
		}
		_, _ = fmt.Fprintln(w)
	}

	if len(data.Debt) > 0 {
		_, _ = fmt.Fprintln(w, "## Debt")
		_, _ = fmt.Fprintln(w)
		for _, d := range data.Debt {
			_, _ = fmt.Fprintf(w, "- %s +%d (%s)\n", d.Stat, d.DeltaXP, d.Reason)
		}
		_, _ = fmt.Fprintln(w)
	}

	return nil
}

// ExportToYAML exports data to a YAML file
func (s *Storage) ExportToYAML(ctx context.Context, outputPath string) error {
	return writeExportFile(outputPath, func(w io.Writer) error {
		return s.WriteYAML(ctx, w)
	})
}

// ExportToMarkdown exports data to a Markdown file
func (s *Storage) ExportToMarkdown(ctx context.Context, outputPath string) error {
	return writeExportFile(outputPath, func(w io.Writer) error {
		return s.WriteMarkdown(ctx, w)
	})
}

func writeExportFile(outputPath string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return write(file)
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
