// ABOUTME: Tests for plan prompt rendering and input normalization
// ABOUTME: Checks date range, goals, profile and allowed values
package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/questos/internal/models"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestPromptInput_Normalize(t *testing.T) {
	in, err := PromptInput{Goals: []string{"  Get fit ", "", "Read more"}}.Normalize(testNow)
	require.NoError(t, err)

	assert.Equal(t, []string{"Get fit", "Read more"}, in.Goals)
	assert.Equal(t, testNow, in.StartDate)
	assert.Equal(t, DefaultPlanDays, in.Days)
}

func TestPromptInput_NormalizeErrors(t *testing.T) {
	_, err := PromptInput{Goals: []string{" ", ""}}.Normalize(testNow)
	assert.ErrorContains(t, err, "at least one goal")

	_, err = PromptInput{Goals: []string{"Get fit"}, Days: MaxPlanDays + 1}.Normalize(testNow)
	assert.ErrorContains(t, err, "days must be between")

	_, err = PromptInput{Goals: []string{"Get fit"}, Days: -2}.Normalize(testNow)
	assert.Error(t, err)
}

func TestBuildPlanPrompt(t *testing.T) {
	prompt := BuildPlanPrompt(PromptInput{
		Profile:   &models.UserProfile{Name: "Doctor Biz", Age: 41, Gender: models.Gender("male")},
		Goals:     []string{"Get fit", "Ship the side project"},
		StartDate: testNow,
		Days:      3,
		Notes:     "mornings only",
	})

	for _, want := range []string{
		"from 2026-03-01 to 2026-03-03 (3 days)",
		"- Name: Doctor Biz",
		"- Age: 41",
		"- Get fit\n",
		"- Ship the side project\n",
		"Notes: mornings only",
		"date,goal,action,stat,durationMin,difficulty,xp,kind",
		"body, mind, career, focus",
		"easy, medium, hard",
		"core, optional, recovery",
	} {
		assert.Contains(t, prompt, want)
	}
}

func TestBuildPlanPrompt_NoProfile(t *testing.T) {
	prompt := BuildPlanPrompt(PromptInput{Goals: []string{"Read"}, StartDate: testNow, Days: 1})

	assert.NotContains(t, prompt, "About me")
	assert.NotContains(t, prompt, "Notes:")
	assert.True(t, strings.HasPrefix(prompt, "Create a daily quest plan from 2026-03-01 to 2026-03-01 (1 days)."))
}
