// ABOUTME: Import manifest storage for SQLite
// ABOUTME: One row per committed import batch
package sqlite

import (
	"context"

	"github.com/harper/questos/internal/models"
)

// ImportStore handles imports persistence
type ImportStore struct {
	q Querier
}

// NewImportStore creates a new ImportStore on a connection or transaction
func NewImportStore(q Querier) *ImportStore {
	return &ImportStore{q: q}
}

// Insert saves an import manifest
func (s *ImportStore) Insert(ctx context.Context, m *models.ImportManifest) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO imports (id, source, raw_row_count, valid_row_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.Source, m.RawRowCount, m.ValidRowCount, formatTime(m.CreatedAt))
	return err
}

// List returns all manifests, newest first
func (s *ImportStore) List(ctx context.Context) ([]models.ImportManifest, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, source, raw_row_count, valid_row_count, created_at
		FROM imports
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var manifests []models.ImportManifest
	for rows.Next() {
		var (
			m         models.ImportManifest
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.Source, &m.RawRowCount, &m.ValidRowCount, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(createdAt)
		manifests = append(manifests, m)
	}
	return manifests, rows.Err()
}
