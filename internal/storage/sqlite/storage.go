// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Runs the plan import transaction and serves the schedule read side
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harper/questos/internal/csvplan"
	"github.com/harper/questos/internal/models"
)

// MilestoneLimit is how many goals the plan preview lists
const MilestoneLimit = 6

// ExportHeader is the column order of ExportPlanCSV
var ExportHeader = []string{"goal", "action", "stat", "duration_min", "difficulty", "xp", "kind", "date"}

// Tables lists every table owned by the store, children before parents
var Tables = []string{
	"daily_schedule",
	"actions",
	"goals",
	"debt_ledger",
	"event_log",
	"imports",
	"user_profile",
	"app_settings",
}

// Storage manages all persistent plan data using SQLite
type Storage struct {
	db     *DB
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewStorage wraps an open database
func NewStorage(db *DB) *Storage {
	return &Storage{
		db:     db,
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// NewStorageWithPath opens (and migrates) the database at dbPath
func NewStorageWithPath(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory(ctx context.Context) (*Storage, error) {
	db, err := OpenInMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return NewStorage(db), nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database handle
func (s *Storage) DB() *DB {
	return s.db
}

// SetLogger replaces the no-op logger
func (s *Storage) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// SetClock overrides the time source used for timestamps
func (s *Storage) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Storage) timestamp() time.Time {
	return s.now().UTC()
}

// withTx runs fn inside one transaction and commits only if fn succeeds
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Storage) newEvent(eventType, entityType, entityID string, payload any) (*models.EventLogEntry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return &models.EventLogEntry{
		ID:          newID("evt"),
		EventType:   eventType,
		EntityType:  entityType,
		EntityID:    entityID,
		PayloadJSON: string(data),
		CreatedAt:   s.timestamp(),
	}, nil
}

// --- Import ---

// ImportPlanRows imports validated rows as a csv_paste batch
func (s *Storage) ImportPlanRows(ctx context.Context, rows []csvplan.Row) (models.ImportResult, error) {
	return s.ImportPlanRowsFrom(ctx, models.ImportSourcePaste, rows)
}

// ImportPlanRowsFrom creates goals, actions, schedule entries, the manifest and the
// plan_imported event for rows in one transaction. Nothing is written unless all of it is.
func (s *Storage) ImportPlanRowsFrom(ctx context.Context, source string, rows []csvplan.Row) (models.ImportResult, error) {
	if source == "" {
		source = models.ImportSourcePaste
	}

	normalized := make([]csvplan.Row, len(rows))
	for i, r := range rows {
		row, errs := r.Normalize()
		if len(errs) > 0 {
			return models.ImportResult{}, fmt.Errorf("%w: row %d %s: %s", ErrInvalidRow, i+1, errs[0].Field, errs[0].Message)
		}
		normalized[i] = row
	}

	now := s.timestamp()
	result := models.ImportResult{ImportID: newID("imp")}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		goals := NewGoalStore(tx)
		actions := NewActionStore(tx)
		schedule := NewScheduleStore(tx)

		goalIDs := make(map[string]string)
		for _, row := range normalized {
			if _, ok := goalIDs[row.Goal]; ok {
				continue
			}
			goal := &models.Goal{
				ID:        newID("goal"),
				Title:     row.Goal,
				Priority:  models.DefaultGoalPriority,
				Status:    models.GoalStatusActive,
				CreatedAt: now,
			}
			if err := goals.Insert(ctx, goal); err != nil {
				return fmt.Errorf("failed to insert goal %q: %w", row.Goal, err)
			}
			goalIDs[row.Goal] = goal.ID
			result.GoalsCreated++
		}

		for _, row := range normalized {
			action := &models.Action{
				ID:          newID("act"),
				GoalID:      goalIDs[row.Goal],
				Title:       row.Action,
				Stat:        row.Stat,
				DurationMin: row.DurationMin,
				Difficulty:  row.Difficulty,
				XP:          row.XP,
				Frequency:   models.FrequencyDaily,
				Kind:        row.Kind,
				Active:      true,
				CreatedAt:   now,
			}
			if err := actions.Insert(ctx, action); err != nil {
				return fmt.Errorf("failed to insert action %q: %w", row.Action, err)
			}
			result.ActionsCreated++

			entry := &models.ScheduleEntry{
				ID:        newID("sch"),
				Date:      row.Date,
				ActionID:  action.ID,
				Kind:      row.Kind,
				Status:    models.StatusPending,
				Source:    models.SourceImport,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := schedule.Insert(ctx, entry); err != nil {
				return fmt.Errorf("failed to insert schedule entry for %s: %w", row.Date, err)
			}
			result.ScheduleCreated++
		}

		manifest := &models.ImportManifest{
			ID:            result.ImportID,
			Source:        source,
			RawRowCount:   len(normalized),
			ValidRowCount: len(normalized),
			CreatedAt:     now,
		}
		if err := NewImportStore(tx).Insert(ctx, manifest); err != nil {
			return fmt.Errorf("failed to insert import manifest: %w", err)
		}

		event, err := s.newEvent(models.EventPlanImported, "import", result.ImportID, map[string]int{
			"rows":         len(normalized),
			"goalsCreated": result.GoalsCreated,
		})
		if err != nil {
			return err
		}
		if err := NewEventStore(tx).Insert(ctx, event); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("plan import rolled back", zap.Int("rows", len(rows)), zap.Error(err))
		return models.ImportResult{}, err
	}

	s.logger.Info("plan imported",
		zap.String("import_id", result.ImportID),
		zap.String("source", source),
		zap.Int("rows", len(normalized)),
		zap.Int("goals_created", result.GoalsCreated))

	return result, nil
}

// --- Schedule ---

// TodaySchedule returns the quests scheduled on date
func (s *Storage) TodaySchedule(ctx context.Context, date string) ([]models.TodayQuest, error) {
	quests, err := NewScheduleStore(s.db.conn).ForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule for %s: %w", date, err)
	}
	return quests, nil
}

// UpdateScheduleStatus marks a schedule entry done or skipped
func (s *Storage) UpdateScheduleStatus(ctx context.Context, id, status string) error {
	next, err := models.ParseTransition(status)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := NewScheduleStore(tx).UpdateStatus(ctx, id, next, s.timestamp()); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("schedule entry %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to update schedule entry: %w", err)
		}
		event, err := s.newEvent(models.EventScheduleStatusUpdated, "daily_schedule", id, map[string]string{
			"status": string(next),
		})
		if err != nil {
			return err
		}
		return NewEventStore(tx).Insert(ctx, event)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("schedule status updated", zap.String("id", id), zap.String("status", string(next)))
	return nil
}

// GetScheduleEntry returns a schedule entry or ErrNotFound
func (s *Storage) GetScheduleEntry(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	entry, err := NewScheduleStore(s.db.conn).Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule entry: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("schedule entry %s: %w", id, ErrNotFound)
	}
	return entry, nil
}

// PlanPreview aggregates the day's counts, milestones and action stats concurrently
func (s *Storage) PlanPreview(ctx context.Context, date string) (*models.PlanPreview, error) {
	preview := &models.PlanPreview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := NewScheduleStore(s.db.conn).CountsByKind(gctx, date)
		if err != nil {
			return fmt.Errorf("failed to count schedule: %w", err)
		}
		preview.TodayCounts = counts
		return nil
	})
	g.Go(func() error {
		milestones, err := NewGoalStore(s.db.conn).Milestones(gctx, MilestoneLimit)
		if err != nil {
			return fmt.Errorf("failed to load milestones: %w", err)
		}
		preview.Milestones = milestones
		return nil
	})
	g.Go(func() error {
		stats, err := NewActionStore(s.db.conn).Stats(gctx)
		if err != nil {
			return fmt.Errorf("failed to aggregate actions: %w", err)
		}
		preview.ActionStats = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return preview, nil
}

// ExportPlanCSV renders every scheduled quest as CSV, header first
func (s *Storage) ExportPlanCSV(ctx context.Context) (string, error) {
	lines, err := NewScheduleStore(s.db.conn).PlanLines(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load plan: %w", err)
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, strings.Join(ExportHeader, ","))
	for _, l := range lines {
		out = append(out, csvplan.JoinRecord([]string{
			l.Goal,
			l.Action,
			string(l.Stat),
			formatNumber(l.DurationMin),
			string(l.Difficulty),
			formatNumber(l.XP),
			string(l.Kind),
			l.Date,
		}))
	}
	return strings.Join(out, "\n"), nil
}

// PlanRows returns every scheduled quest in import format, so Format then Parse restores the plan
func (s *Storage) PlanRows(ctx context.Context) ([]csvplan.Row, error) {
	lines, err := NewScheduleStore(s.db.conn).PlanLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	rows := make([]csvplan.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, csvplan.Row{
			Date:        l.Date,
			Goal:        l.Goal,
			Action:      l.Action,
			Stat:        l.Stat,
			DurationMin: l.DurationMin,
			Difficulty:  l.Difficulty,
			XP:          l.XP,
			Kind:        l.Kind,
		})
	}
	return rows, nil
}

// --- Debt ---

// LogWrongDeed records a wrong_deed_logged event and the debt entry pointing at it
func (s *Storage) LogWrongDeed(ctx context.Context, deed models.WrongDeed) (*models.DebtLedgerEntry, error) {
	stat, err := models.ParseStat(string(deed.Stat))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	intensity, err := models.ParseIntensity(string(deed.Intensity))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	deed.Stat = stat
	deed.Intensity = intensity
	deed.Trigger = strings.TrimSpace(deed.Trigger)
	if deed.Trigger == "" {
		return nil, fmt.Errorf("%w: trigger is required", ErrInvalidInput)
	}
	if deed.DebtXP < 0 {
		return nil, fmt.Errorf("%w: debt xp must be non-negative, got %d", ErrInvalidInput, deed.DebtXP)
	}

	var entry *models.DebtLedgerEntry
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		event, err := s.newEvent(models.EventWrongDeedLogged, "debt", "", deed)
		if err != nil {
			return err
		}
		if err := NewEventStore(tx).Insert(ctx, event); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		entry = &models.DebtLedgerEntry{
			ID:            newID("debt"),
			Stat:          deed.Stat,
			DeltaXP:       deed.DebtXP,
			Reason:        deed.Reason(),
			SourceEventID: event.ID,
			CreatedAt:     event.CreatedAt,
		}
		if err := NewDebtStore(tx).Insert(ctx, entry); err != nil {
			return fmt.Errorf("failed to insert debt entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wrong deed logged",
		zap.String("stat", string(deed.Stat)),
		zap.String("intensity", string(deed.Intensity)),
		zap.Int("debt_xp", deed.DebtXP))
	return entry, nil
}

// ListDebt returns the debt ledger, newest first
func (s *Storage) ListDebt(ctx context.Context) ([]models.DebtLedgerEntry, error) {
	return NewDebtStore(s.db.conn).List(ctx)
}

// DebtTotals sums the ledger per stat
func (s *Storage) DebtTotals(ctx context.Context) ([]models.DebtTotal, error) {
	return NewDebtStore(s.db.conn).Totals(ctx)
}

// --- Goals, imports, events ---

// HasImportedGoals reports whether any goal exists
func (s *Storage) HasImportedGoals(ctx context.Context) (bool, error) {
	return NewGoalStore(s.db.conn).Exists(ctx)
}

// ListGoals returns all goals in creation order
func (s *Storage) ListGoals(ctx context.Context) ([]models.Goal, error) {
	return NewGoalStore(s.db.conn).List(ctx)
}

// ListImports returns import manifests, newest first
func (s *Storage) ListImports(ctx context.Context) ([]models.ImportManifest, error) {
	return NewImportStore(s.db.conn).List(ctx)
}

// ListEvents returns up to limit events, newest first
func (s *Storage) ListEvents(ctx context.Context, limit int) ([]models.EventLogEntry, error) {
	return NewEventStore(s.db.conn).List(ctx, limit)
}

// --- Profile operations ---

// GetUserProfile loads the user profile, nil when onboarding has not happened
func (s *Storage) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	return NewProfileStore(s.db.conn).Get(ctx)
}

// SaveUserProfile creates or updates the single profile row
func (s *Storage) SaveUserProfile(ctx context.Context, input models.ProfileInput) (*models.UserProfile, error) {
	in, err := input.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var profile *models.UserProfile
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		store := NewProfileStore(tx)
		existing, err := store.Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		now := s.timestamp()
		profile = &models.UserProfile{ID: newID("usr"), CreatedAt: now}
		if existing != nil {
			profile.ID = existing.ID
			profile.CreatedAt = existing.CreatedAt
		}
		profile.Name = in.Name
		profile.Age = in.Age
		profile.Gender = in.Gender
		profile.UpdatedAt = now

		if err := store.Save(ctx, profile); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		event, err := s.newEvent(models.EventProfileSaved, "user_profile", profile.ID, map[string]any{
			"name":   profile.Name,
			"age":    profile.Age,
			"gender": profile.Gender,
		})
		if err != nil {
			return err
		}
		return NewEventStore(tx).Insert(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// --- Reset ---

// ResetAllData deletes every row of every table in one transaction. The schema stays.
func (s *Storage) ResetAllData(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range Tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Warn("all data reset")
	return nil
}
