// ABOUTME: Daily schedule storage operations for SQLite
// ABOUTME: Quest inserts, the today projection, status updates and the CSV export query
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/harper/questos/internal/models"
)

// ScheduleStore handles daily_schedule persistence
type ScheduleStore struct {
	q Querier
}

// NewScheduleStore creates a new ScheduleStore on a connection or transaction
func NewScheduleStore(q Querier) *ScheduleStore {
	return &ScheduleStore{q: q}
}

// Insert saves a new schedule entry
func (s *ScheduleStore) Insert(ctx context.Context, entry *models.ScheduleEntry) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO daily_schedule (id, date, action_id, kind, status, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Date, entry.ActionID, string(entry.Kind), string(entry.Status),
		entry.Source, formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt))
	return err
}

// ForDate returns the quests of one day: core, then optional, then recovery, each in creation order
func (s *ScheduleStore) ForDate(ctx context.Context, date string) ([]models.TodayQuest, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT ds.id, ds.action_id, ds.date, ds.status, ds.kind,
			a.title, a.stat, a.xp, a.duration_min, a.difficulty
		FROM daily_schedule ds
		JOIN actions a ON a.id = ds.action_id
		WHERE ds.date = ?
		ORDER BY CASE ds.kind WHEN 'core' THEN 1 WHEN 'optional' THEN 2 ELSE 3 END,
			ds.created_at ASC,
			ds.rowid ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	quests := []models.TodayQuest{}
	for rows.Next() {
		var (
			q                              models.TodayQuest
			status, kind, stat, difficulty string
		)
		if err := rows.Scan(&q.ScheduleID, &q.ActionID, &q.Date, &status, &kind,
			&q.Title, &stat, &q.XP, &q.DurationMin, &difficulty); err != nil {
			return nil, err
		}
		q.Status = models.ScheduleStatus(status)
		q.Kind = models.Kind(kind)
		q.Stat = models.Stat(stat)
		q.Difficulty = models.Difficulty(difficulty)
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

// CountsByKind counts the entries of one day per kind
func (s *ScheduleStore) CountsByKind(ctx context.Context, date string) (models.TodayCounts, error) {
	var counts models.TodayCounts

	rows, err := s.q.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM daily_schedule
		WHERE date = ?
		GROUP BY kind
	`, date)
	if err != nil {
		return counts, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return counts, err
		}
		counts.Add(models.Kind(kind), n)
	}
	return counts, rows.Err()
}

// UpdateStatus sets the status of one entry and refreshes updated_at.
// Returns ErrNotFound when no entry has the id.
func (s *ScheduleStore) UpdateStatus(ctx context.Context, id string, status models.ScheduleStatus, at time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE daily_schedule SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), formatTime(at), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retrieves a schedule entry by id, returning nil if not found
func (s *ScheduleStore) Get(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	var (
		e                    models.ScheduleEntry
		kind, status         string
		createdAt, updatedAt string
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, date, action_id, kind, status, source, created_at, updated_at
		FROM daily_schedule
		WHERE id = ?
	`, id).Scan(&e.ID, &e.Date, &e.ActionID, &kind, &status, &e.Source, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Kind = models.Kind(kind)
	e.Status = models.ScheduleStatus(status)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

// PlanLine is one scheduled quest with its action and goal, as exported
type PlanLine struct {
	Goal        string            `yaml:"goal" json:"goal"`
	Action      string            `yaml:"action" json:"action"`
	Stat        models.Stat       `yaml:"stat" json:"stat"`
	DurationMin float64           `yaml:"duration_min" json:"duration_min"`
	Difficulty  models.Difficulty `yaml:"difficulty" json:"difficulty"`
	XP          float64           `yaml:"xp" json:"xp"`
	Kind        models.Kind       `yaml:"kind" json:"kind"`
	Date        string            `yaml:"date" json:"date"`
	Status      string            `yaml:"status" json:"status"`
}

// PlanLines returns every scheduled quest ordered by date, then by action creation
func (s *ScheduleStore) PlanLines(ctx context.Context) ([]PlanLine, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT COALESCE(g.title, ''), a.title, a.stat, a.duration_min, a.difficulty, a.xp,
			ds.kind, ds.date, ds.status
		FROM daily_schedule ds
		JOIN actions a ON a.id = ds.action_id
		LEFT JOIN goals g ON g.id = a.goal_id
		ORDER BY ds.date ASC, a.created_at ASC, a.rowid ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var lines []PlanLine
	for rows.Next() {
		var (
			l                      PlanLine
			stat, difficulty, kind string
		)
		if err := rows.Scan(&l.Goal, &l.Action, &stat, &l.DurationMin, &difficulty, &l.XP,
			&kind, &l.Date, &l.Status); err != nil {
			return nil, err
		}
		l.Stat = models.Stat(stat)
		l.Difficulty = models.Difficulty(difficulty)
		l.Kind = models.Kind(kind)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
