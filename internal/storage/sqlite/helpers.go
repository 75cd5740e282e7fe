// ABOUTME: Shared helpers for the SQLite stores
// ABOUTME: ID generation, fixed-width timestamps and nullable column conversion
package sqlite

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed width so stored timestamps sort lexically in time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// nullString converts empty strings to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
