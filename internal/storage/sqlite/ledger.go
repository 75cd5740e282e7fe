// ABOUTME: Append-only debt ledger and event log storage for SQLite
// ABOUTME: Rows are only ever inserted, listed or wiped by a full reset
package sqlite

import (
	"context"
	"database/sql"

	"github.com/harper/questos/internal/models"
)

// EventStore handles event_log persistence
type EventStore struct {
	q Querier
}

// NewEventStore creates a new EventStore on a connection or transaction
func NewEventStore(q Querier) *EventStore {
	return &EventStore{q: q}
}

// Insert appends an event
func (s *EventStore) Insert(ctx context.Context, e *models.EventLogEntry) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO event_log (id, event_type, entity_type, entity_id, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.EventType, e.EntityType, nullString(e.EntityID), e.PayloadJSON, formatTime(e.CreatedAt))
	return err
}

// List returns the newest events first. limit <= 0 returns all.
func (s *EventStore) List(ctx context.Context, limit int) ([]models.EventLogEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, event_type, entity_type, entity_id, payload_json, created_at
		FROM event_log
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []models.EventLogEntry
	for rows.Next() {
		var (
			e         models.EventLogEntry
			entityID  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.EventType, &e.EntityType, &entityID, &e.PayloadJSON, &createdAt); err != nil {
			return nil, err
		}
		e.EntityID = entityID.String
		e.CreatedAt = parseTime(createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

// DebtStore handles debt_ledger persistence
type DebtStore struct {
	q Querier
}

// NewDebtStore creates a new DebtStore on a connection or transaction
func NewDebtStore(q Querier) *DebtStore {
	return &DebtStore{q: q}
}

// Insert appends a debt entry
func (s *DebtStore) Insert(ctx context.Context, d *models.DebtLedgerEntry) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO debt_ledger (id, stat, delta_xp, reason, source_event_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, string(d.Stat), d.DeltaXP, d.Reason, nullString(d.SourceEventID), formatTime(d.CreatedAt))
	return err
}

// List returns all debt entries, newest first
func (s *DebtStore) List(ctx context.Context) ([]models.DebtLedgerEntry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, stat, delta_xp, reason, source_event_id, created_at
		FROM debt_ledger
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []models.DebtLedgerEntry
	for rows.Next() {
		var (
			d         models.DebtLedgerEntry
			stat      string
			sourceID  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&d.ID, &stat, &d.DeltaXP, &d.Reason, &sourceID, &createdAt); err != nil {
			return nil, err
		}
		d.Stat = models.Stat(stat)
		d.SourceEventID = sourceID.String
		d.CreatedAt = parseTime(createdAt)
		entries = append(entries, d)
	}
	return entries, rows.Err()
}

// Totals sums debt per stat, in stat order
func (s *DebtStore) Totals(ctx context.Context) ([]models.DebtTotal, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT stat, COUNT(*), COALESCE(SUM(delta_xp), 0)
		FROM debt_ledger
		GROUP BY stat
		ORDER BY CASE stat WHEN 'body' THEN 1 WHEN 'mind' THEN 2 WHEN 'career' THEN 3 WHEN 'focus' THEN 4 ELSE 5 END, stat
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	totals := []models.DebtTotal{}
	for rows.Next() {
		var (
			t    models.DebtTotal
			stat string
		)
		if err := rows.Scan(&stat, &t.Entries, &t.TotalXP); err != nil {
			return nil, err
		}
		t.Stat = models.Stat(stat)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
