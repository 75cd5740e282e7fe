// ABOUTME: Parses and validates plan CSV text into typed rows or line/field errors
// ABOUTME: Structural problems abort the parse; row problems drop only the offending row
package csvplan

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harper/questos/internal/models"
)

// Column names of the plan CSV
const (
	ColDate        = "date"
	ColGoal        = "goal"
	ColAction      = "action"
	ColStat        = "stat"
	ColDurationMin = "durationMin"
	ColDifficulty  = "difficulty"
	ColXP          = "xp"
	ColKind        = "kind"
)

// RequiredHeaders must all be present in the header row, in any order
var RequiredHeaders = []string{ColDate, ColGoal, ColAction, ColStat, ColDurationMin, ColDifficulty, ColXP}

// Messages for structural and field errors
const (
	MsgEmpty         = "CSV content is empty."
	MsgNoDataRows    = "CSV requires a header row and at least one data row."
	MsgBadDate       = "Date must be YYYY-MM-DD."
	MsgGoalRequired  = "Goal is required."
	MsgActionMissing = "Action is required."
	MsgBadStat       = "Stat must be one of: body, mind, career, focus."
	MsgBadDifficulty = "Difficulty must be one of: easy, medium, hard."
	MsgBadKind       = "Kind must be one of: core, optional, recovery."
	MsgBadDuration   = "durationMin must be a positive number."
	MsgBadXP         = "xp must be a non-negative number."
)

// DefaultDisplayLimit is how many errors the import screens show
const DefaultDisplayLimit = 8

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Row is a fully validated plan line. Enums are lower-cased, numbers finite.
type Row struct {
	Date        string            `json:"date"`
	Goal        string            `json:"goal"`
	Action      string            `json:"action"`
	Stat        models.Stat       `json:"stat"`
	DurationMin float64           `json:"durationMin"`
	Difficulty  models.Difficulty `json:"difficulty"`
	XP          float64           `json:"xp"`
	Kind        models.Kind       `json:"kind"`
}

// ValidationError locates a problem by line and, for row checks, by field
type ValidationError struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error formats the error the way the import screen lists it: L<line> <field>: <message>
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("L%d %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("L%d: %s", e.Line, e.Message)
}

// Result partitions the input into valid rows and errors
type Result struct {
	Rows   []Row             `json:"rows"`
	Errors []ValidationError `json:"errors"`
}

// Valid reports whether the parse produced no errors at all
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Display returns up to limit formatted errors. limit <= 0 returns all of them.
func (r Result) Display(limit int) []string {
	n := len(r.Errors)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, 0, n)
	for _, e := range r.Errors[:n] {
		out = append(out, e.Error())
	}
	return out
}

// Parse tokenizes and validates plan CSV text
func Parse(input string) Result {
	text := normalize(input)
	if text == "" {
		return Result{Rows: []Row{}, Errors: []ValidationError{{Line: 1, Message: MsgEmpty}}}
	}

	records := splitRecords(text)
	if len(records) < 2 {
		return Result{Rows: []Row{}, Errors: []ValidationError{{Line: 1, Message: MsgNoDataRows}}}
	}

	headers := splitFields(records[0])
	if missing := missingHeaders(headers); len(missing) > 0 {
		return Result{
			Rows:   []Row{},
			Errors: []ValidationError{{Line: 1, Message: "Missing header(s): " + strings.Join(missing, ", ")}},
		}
	}

	result := Result{Rows: []Row{}, Errors: []ValidationError{}}
	for i, record := range records[1:] {
		line := i + 2
		values := splitFields(record)
		if len(values) != len(headers) {
			result.Errors = append(result.Errors, ValidationError{
				Line:    line,
				Message: fmt.Sprintf("Expected %d column(s), got %d.", len(headers), len(values)),
			})
			continue
		}

		fields := make(map[string]string, len(headers))
		for idx, h := range headers {
			fields[h] = values[idx]
		}

		row, errs := validateRecord(line, fields)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

func missingHeaders(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, required := range RequiredHeaders {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	return missing
}

// validateRecord runs every field check independently and builds the row only if all pass
func validateRecord(line int, fields map[string]string) (Row, []ValidationError) {
	var errs []ValidationError
	fail := func(field, msg string) {
		errs = append(errs, ValidationError{Line: line, Field: field, Message: msg})
	}

	date := fields[ColDate]
	if !IsISODate(date) {
		fail(ColDate, MsgBadDate)
	}
	goal := fields[ColGoal]
	if goal == "" {
		fail(ColGoal, MsgGoalRequired)
	}
	action := fields[ColAction]
	if action == "" {
		fail(ColAction, MsgActionMissing)
	}
	stat, err := models.ParseStat(fields[ColStat])
	if err != nil {
		fail(ColStat, MsgBadStat)
	}
	difficulty, err := models.ParseDifficulty(fields[ColDifficulty])
	if err != nil {
		fail(ColDifficulty, MsgBadDifficulty)
	}
	kind, err := models.ParseKind(fields[ColKind])
	if err != nil {
		fail(ColKind, MsgBadKind)
	}
	duration, ok := parseNumber(fields[ColDurationMin])
	if !ok || duration <= 0 {
		fail(ColDurationMin, MsgBadDuration)
	}
	xp, ok := parseNumber(fields[ColXP])
	if !ok || xp < 0 {
		fail(ColXP, MsgBadXP)
	}

	if len(errs) > 0 {
		return Row{}, errs
	}
	return Row{
		Date:        date,
		Goal:        goal,
		Action:      action,
		Stat:        stat,
		DurationMin: duration,
		Difficulty:  difficulty,
		XP:          xp,
		Kind:        kind,
	}, nil
}

// Normalize re-checks a row built outside Parse and returns it with trimmed text and
// lower-cased enums. Line numbers in the errors are 0.
func (r Row) Normalize() (Row, []ValidationError) {
	return validateRecord(0, map[string]string{
		ColDate:        strings.TrimSpace(r.Date),
		ColGoal:        strings.TrimSpace(r.Goal),
		ColAction:      strings.TrimSpace(r.Action),
		ColStat:        string(r.Stat),
		ColDurationMin: formatNumber(r.DurationMin),
		ColDifficulty:  string(r.Difficulty),
		ColXP:          formatNumber(r.XP),
		ColKind:        string(r.Kind),
	})
}

// Validate re-checks a row built outside Parse
func (r Row) Validate() []ValidationError {
	_, errs := r.Normalize()
	return errs
}

// IsISODate reports whether s is YYYY-MM-DD and a real calendar date
func IsISODate(s string) bool {
	if !isoDate.MatchString(s) {
		return false
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Header is the column order Format writes
var Header = []string{ColDate, ColGoal, ColAction, ColStat, ColDurationMin, ColDifficulty, ColXP, ColKind}

// Format serializes rows back to plan CSV. Parse(Format(rows)).Rows equals rows.
func Format(rows []Row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(Header, ","))
	for _, r := range rows {
		lines = append(lines, JoinRecord([]string{
			r.Date,
			r.Goal,
			r.Action,
			string(r.Stat),
			formatNumber(r.DurationMin),
			string(r.Difficulty),
			formatNumber(r.XP),
			string(r.Kind),
		}))
	}
	return strings.Join(lines, "\n")
}
