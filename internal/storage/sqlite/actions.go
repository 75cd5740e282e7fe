// ABOUTME: Action storage operations for SQLite
// ABOUTME: Inserts imported actions and aggregates them per difficulty
package sqlite

import (
	"context"

	"github.com/harper/questos/internal/models"
)

// ActionStore handles action persistence
type ActionStore struct {
	q Querier
}

// NewActionStore creates a new ActionStore on a connection or transaction
func NewActionStore(q Querier) *ActionStore {
	return &ActionStore{q: q}
}

// Insert saves a new action
func (s *ActionStore) Insert(ctx context.Context, action *models.Action) error {
	active := 0
	if action.Active {
		active = 1
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO actions (id, goal_id, title, stat, duration_min, difficulty, xp, frequency, kind, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, action.ID, nullString(action.GoalID), action.Title, string(action.Stat), action.DurationMin,
		string(action.Difficulty), action.XP, nullString(action.Frequency), string(action.Kind),
		active, formatTime(action.CreatedAt))
	return err
}

// Stats counts all actions per difficulty and sums their XP
func (s *ActionStore) Stats(ctx context.Context) (models.ActionStats, error) {
	var stats models.ActionStats

	rows, err := s.q.QueryContext(ctx, `
		SELECT difficulty, COUNT(*), COALESCE(SUM(xp), 0)
		FROM actions
		GROUP BY difficulty
	`)
	if err != nil {
		return stats, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			difficulty string
			count      int
			xp         float64
		)
		if err := rows.Scan(&difficulty, &count, &xp); err != nil {
			return stats, err
		}
		stats.Add(models.Difficulty(difficulty), count, xp)
	}
	return stats, rows.Err()
}
