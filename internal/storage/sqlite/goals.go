// ABOUTME: Goal storage operations for SQLite
// ABOUTME: Inserts imported goals and serves goal lists and preview milestones
package sqlite

import (
	"context"
	"database/sql"

	"github.com/harper/questos/internal/models"
)

// GoalStore handles goal persistence
type GoalStore struct {
	q Querier
}

// NewGoalStore creates a new GoalStore on a connection or transaction
func NewGoalStore(q Querier) *GoalStore {
	return &GoalStore{q: q}
}

// Insert saves a new goal
func (s *GoalStore) Insert(ctx context.Context, goal *models.Goal) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO goals (id, title, category, target_date, priority, success_metric, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, goal.ID, goal.Title, nullString(goal.Category), nullString(goal.TargetDate),
		goal.Priority, nullString(goal.SuccessMetric), goal.Status, formatTime(goal.CreatedAt))
	return err
}

// List returns all goals in creation order
func (s *GoalStore) List(ctx context.Context) ([]models.Goal, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, title, category, target_date, priority, success_metric, status, created_at
		FROM goals
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var goals []models.Goal
	for rows.Next() {
		var (
			g             models.Goal
			category      sql.NullString
			targetDate    sql.NullString
			priority      sql.NullInt64
			successMetric sql.NullString
			createdAt     string
		)
		if err := rows.Scan(&g.ID, &g.Title, &category, &targetDate, &priority,
			&successMetric, &g.Status, &createdAt); err != nil {
			return nil, err
		}
		g.Category = category.String
		g.TargetDate = targetDate.String
		g.Priority = int(priority.Int64)
		g.SuccessMetric = successMetric.String
		g.CreatedAt = parseTime(createdAt)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Milestones returns up to limit goals: dated goals first by target date, then newest first
func (s *GoalStore) Milestones(ctx context.Context, limit int) ([]models.Milestone, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT title, target_date, status
		FROM goals
		ORDER BY CASE WHEN target_date IS NULL THEN 1 ELSE 0 END,
			target_date ASC,
			created_at DESC,
			rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	milestones := []models.Milestone{}
	for rows.Next() {
		var (
			m          models.Milestone
			targetDate sql.NullString
		)
		if err := rows.Scan(&m.Title, &targetDate, &m.Status); err != nil {
			return nil, err
		}
		m.TargetDate = targetDate.String
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// Exists reports whether at least one goal is stored
func (s *GoalStore) Exists(ctx context.Context) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM (SELECT 1 FROM goals LIMIT 1)`).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
