// ABOUTME: User profile and app settings storage operations for SQLite
// ABOUTME: Single-row profile upsert and key/value settings upsert
package sqlite

import (
	"context"
	"database/sql"

	"github.com/harper/questos/internal/models"
)

// ProfileStore handles user profile persistence
type ProfileStore struct {
	q Querier
}

// NewProfileStore creates a new ProfileStore on a connection or transaction
func NewProfileStore(q Querier) *ProfileStore {
	return &ProfileStore{q: q}
}

// Get retrieves the user profile, returning nil if not found
func (s *ProfileStore) Get(ctx context.Context) (*models.UserProfile, error) {
	var (
		p                    models.UserProfile
		gender               string
		createdAt, updatedAt string
	)

	err := s.q.QueryRowContext(ctx, `
		SELECT id, name, age, gender, created_at, updated_at
		FROM user_profile
		ORDER BY created_at ASC
		LIMIT 1
	`).Scan(&p.ID, &p.Name, &p.Age, &gender, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Gender = models.Gender(gender)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// Save saves or updates the user profile (upsert on id)
func (s *ProfileStore) Save(ctx context.Context, p *models.UserProfile) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO user_profile (id, name, age, gender, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			gender = excluded.gender,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.Age, string(p.Gender), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

// SettingsStore handles app_settings persistence
type SettingsStore struct {
	q Querier
}

// NewSettingsStore creates a new SettingsStore on a connection or transaction
func NewSettingsStore(q Querier) *SettingsStore {
	return &SettingsStore{q: q}
}

// Get returns the value of key and whether it was set
func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.q.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts a setting
func (s *SettingsStore) Set(ctx context.Context, key, value, updatedAt string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, updatedAt)
	return err
}
