// ABOUTME: Closed enum types shared by the plan pipeline (stat, difficulty, kind, status)
// ABOUTME: Parsing is case-insensitive membership in a fixed lower-case set, never coercion
package models

import (
	"fmt"
	"strings"
)

// Stat is one of the four tracked life dimensions an action contributes to
type Stat string

const (
	StatBody   Stat = "body"
	StatMind   Stat = "mind"
	StatCareer Stat = "career"
	StatFocus  Stat = "focus"
)

// Stats lists every valid stat in display order
var Stats = []Stat{StatBody, StatMind, StatCareer, StatFocus}

// ParseStat parses a stat case-insensitively
func ParseStat(s string) (Stat, error) {
	v := Stat(normalize(s))
	for _, candidate := range Stats {
		if v == candidate {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid stat %q", s)
}

// Difficulty grades how hard an action is
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every valid difficulty from easiest to hardest
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty parses a difficulty case-insensitively
func ParseDifficulty(s string) (Difficulty, error) {
	v := Difficulty(normalize(s))
	for _, candidate := range Difficulties {
		if v == candidate {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid difficulty %q", s)
}

// Kind classifies a quest as primary, bonus or remedial
type Kind string

const (
	KindCore     Kind = "core"
	KindOptional Kind = "optional"
	KindRecovery Kind = "recovery"
)

// Kinds lists every valid kind in schedule priority order
var Kinds = []Kind{KindCore, KindOptional, KindRecovery}

// ParseKind parses a kind case-insensitively. Blank input is the default kind (core).
func ParseKind(s string) (Kind, error) {
	v := Kind(normalize(s))
	if v == "" {
		return KindCore, nil
	}
	for _, candidate := range Kinds {
		if v == candidate {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid kind %q", s)
}

// Priority orders kinds on the daily schedule: core first, recovery last
func (k Kind) Priority() int {
	switch k {
	case KindCore:
		return 1
	case KindOptional:
		return 2
	default:
		return 3
	}
}

// ScheduleStatus is the lifecycle state of a schedule entry
type ScheduleStatus string

const (
	StatusPending ScheduleStatus = "pending"
	StatusDone    ScheduleStatus = "done"
	StatusSkipped ScheduleStatus = "skipped"
)

// ParseTransition parses a status a pending entry may move to (done or skipped)
func ParseTransition(s string) (ScheduleStatus, error) {
	switch v := ScheduleStatus(normalize(s)); v {
	case StatusDone, StatusSkipped:
		return v, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be done or skipped", s)
	}
}

// Intensity grades a logged wrong deed
type Intensity string

const (
	IntensityLight  Intensity = "light"
	IntensityMedium Intensity = "medium"
	IntensityHeavy  Intensity = "heavy"
)

// ParseIntensity parses a wrong-deed intensity case-insensitively
func ParseIntensity(s string) (Intensity, error) {
	switch v := Intensity(normalize(s)); v {
	case IntensityLight, IntensityMedium, IntensityHeavy:
		return v, nil
	default:
		return "", fmt.Errorf("invalid intensity %q", s)
	}
}

// Strictness controls how forgiving the planner is
type Strictness string

const (
	StrictnessEasy     Strictness = "easy"
	StrictnessBalanced Strictness = "balanced"
	StrictnessHardcore Strictness = "hardcore"
)

// ParseStrictness parses a strictness value case-insensitively
func ParseStrictness(s string) (Strictness, error) {
	switch v := Strictness(normalize(s)); v {
	case StrictnessEasy, StrictnessBalanced, StrictnessHardcore:
		return v, nil
	default:
		return "", fmt.Errorf("invalid strictness %q", s)
	}
}

// Label returns the human-readable name of a strictness level
func (s Strictness) Label() string {
	switch s {
	case StrictnessEasy:
		return "Easy"
	case StrictnessHardcore:
		return "Hardcore"
	default:
		return "Balanced"
	}
}

// Gender is the profile gender choice
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender parses a gender value case-insensitively
func ParseGender(s string) (Gender, error) {
	switch v := Gender(normalize(s)); v {
	case GenderMale, GenderFemale, GenderOther:
		return v, nil
	default:
		return "", fmt.Errorf("invalid gender %q", s)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
