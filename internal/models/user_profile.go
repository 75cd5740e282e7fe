// ABOUTME: UserProfile and AppSettings represent the single player and their preferences
// ABOUTME: QuestDay maps wall-clock time to the quest day using the rollover hour
package models

import (
	"fmt"
	"strings"
	"time"
)

// UserProfile is the single local player
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileInput is what onboarding collects
type ProfileInput struct {
	Name   string
	Age    int
	Gender Gender
}

// Normalize trims the name, lower-cases the gender and checks the onboarding constraints
func (in ProfileInput) Normalize() (ProfileInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("name is required")
	}
	if in.Age < 1 || in.Age > 120 {
		return in, fmt.Errorf("age must be between 1 and 120, got %d", in.Age)
	}
	gender, err := ParseGender(string(in.Gender))
	if err != nil {
		return in, err
	}
	in.Gender = gender
	return in, nil
}

// AppSettings are the planner preferences stored in app_settings
type AppSettings struct {
	Strictness           Strictness `json:"strictness" yaml:"strictness"`
	RolloverHour         int        `json:"rollover_hour" yaml:"rollover_hour"`
	NotificationsEnabled bool       `json:"notifications_enabled" yaml:"notifications_enabled"`
}

// DefaultSettings is used for any key that is missing or invalid
var DefaultSettings = AppSettings{
	Strictness:           StrictnessBalanced,
	RolloverHour:         4,
	NotificationsEnabled: false,
}

// ClampHour keeps an hour within 0..23
func ClampHour(hour int) int {
	if hour < 0 {
		return 0
	}
	if hour > 23 {
		return 23
	}
	return hour
}

// DateLayout is the calendar date format used for schedule entries
const DateLayout = "2006-01-02"

// QuestDay returns the quest day for now. Before rolloverHour the previous day is still active.
func QuestDay(now time.Time, rolloverHour int) string {
	return now.Add(-time.Duration(ClampHour(rolloverHour)) * time.Hour).Format(DateLayout)
}
