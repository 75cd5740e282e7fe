// ABOUTME: Append-only records: XP debt ledger and audit event log
// ABOUTME: Every mutating storage operation writes an EventLogEntry
package models

import (
	"fmt"
	"time"
)

// DebtLedgerEntry records an XP penalty against a stat
type DebtLedgerEntry struct {
	ID            string    `json:"id"`
	Stat          Stat      `json:"stat"`
	DeltaXP       int       `json:"delta_xp"`
	Reason        string    `json:"reason"`
	SourceEventID string    `json:"source_event_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventLogEntry is one audit trail record. PayloadJSON is the raw JSON payload.
type EventLogEntry struct {
	ID          string    `json:"id"`
	EventType   string    `json:"event_type"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id,omitempty"`
	PayloadJSON string    `json:"payload_json"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event types written to the audit log
const (
	EventDBInitialized         = "db_initialized"
	EventPlanImported          = "plan_imported"
	EventScheduleStatusUpdated = "schedule_status_updated"
	EventWrongDeedLogged       = "wrong_deed_logged"
	EventProfileSaved          = "profile_saved"
	EventSettingsUpdated       = "settings_updated"
)

// WrongDeed is a logged negative behavior that turns into XP debt
type WrongDeed struct {
	Stat      Stat      `json:"stat"`
	Intensity Intensity `json:"intensity"`
	Trigger   string    `json:"trigger"`
	DebtXP    int       `json:"debtXp"`
}

// Reason renders the ledger reason for the deed
func (d WrongDeed) Reason() string {
	return fmt.Sprintf("wrong_deed:%s:%s", d.Intensity, d.Trigger)
}

// DebtTotal sums the debt of a single stat
type DebtTotal struct {
	Stat    Stat `json:"stat"`
	Entries int  `json:"entries"`
	TotalXP int  `json:"total_xp"`
}
