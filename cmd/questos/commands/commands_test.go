// ABOUTME: End-to-end tests for the data commands against a temporary database
// ABOUTME: The LLM and Charm backends are swapped for in-memory fakes

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/harper/questos/internal/charm"
	"github.com/harper/questos/internal/config"
	"github.com/harper/questos/internal/core"
	"github.com/harper/questos/internal/models"
)

const testPlan = `date,goal,action,stat,durationMin,difficulty,xp,kind
2026-03-01,Get fit,Run 5k,body,30,medium,20,core
2026-03-01,Get fit,Stretch,body,10,easy,5,recovery
2026-03-02,Read more,Read 20 pages,mind,25,easy,10,`

// setupCLI points the commands at a fresh database and a fixed clock
func setupCLI(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("QUESTOS_LOG_LEVEL", "error")
	t.Setenv("OPENAI_API_KEY", "")

	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	return filepath.Join(dir, "questos.db")
}

// runCLI executes one command line and returns its combined output
func runCLI(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", db}, args...))

	err := cmd.Execute()
	return output.String(), err
}

func mustRun(t *testing.T, db, stdin string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, db, stdin, args...)
	if err != nil {
		t.Fatalf("%v error = %v\noutput:\n%s", args, err, out)
	}
	return out
}

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateCmd(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, testPlan, "validate")
	if !strings.Contains(out, "✓ 3 valid row(s)") {
		t.Errorf("validate output = %q", out)
	}

	bad := "date,goal,action,stat,durationMin,difficulty,xp\n2026-02-30,Get fit,Run,body,30,medium,20\n"
	out, err := runCLI(t, db, "", "validate", writePlan(t, bad))
	if err == nil {
		t.Fatal("validate should fail on an invalid date")
	}
	if !strings.Contains(out, "L2 date") {
		t.Errorf("validate output should name the failing line, got %q", out)
	}
}

func TestValidateCmd_JSON(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, testPlan, "--format", "json", "validate")

	var got struct {
		Valid     bool `json:"valid"`
		ValidRows int  `json:"valid_rows"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !got.Valid || got.ValidRows != 3 {
		t.Errorf("validate JSON = %+v", got)
	}
}

func TestImportAndToday(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, "", "import", writePlan(t, testPlan))
	if !strings.Contains(out, "✓ Imported 3 row(s): 2 goal(s), 3 action(s), 3 quest(s)") {
		t.Errorf("import output = %q", out)
	}

	out = mustRun(t, db, "", "today")
	for _, want := range []string{"Quests for 2026-03-01", "Run 5k", "Stretch"} {
		if !strings.Contains(out, want) {
			t.Errorf("today output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Read 20 pages") {
		t.Error("today should not show quests from other days")
	}

	out = mustRun(t, db, "", "today", "--date", "2026-03-05")
	if !strings.Contains(out, "No quests scheduled for 2026-03-05") {
		t.Errorf("today on empty day = %q", out)
	}

	if _, err := runCLI(t, db, "", "today", "--date", "March 1"); err == nil {
		t.Error("today should reject a malformed --date")
	}
}

func TestImportCmd_InvalidWritesNothing(t *testing.T) {
	db := setupCLI(t)

	bad := testPlan + "\n2026-03-03,Get fit,Plank,strength,5,easy,5,core"
	out, err := runCLI(t, db, bad, "import")
	if err == nil {
		t.Fatal("import should fail when a row is invalid")
	}
	if !strings.Contains(out, "1 error(s)") {
		t.Errorf("import output = %q", out)
	}

	out = mustRun(t, db, "", "goals")
	if !strings.Contains(out, "No goals found") {
		t.Errorf("goals after failed import = %q", out)
	}
}

func todayQuests(t *testing.T, db string) []models.TodayQuest {
	t.Helper()
	out := mustRun(t, db, "", "--format", "json", "today")

	var got struct {
		Date   string              `json:"date"`
		Quests []models.TodayQuest `json:"quests"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	return got.Quests
}

func TestDoneAndSkipCmds(t *testing.T) {
	db := setupCLI(t)
	mustRun(t, db, testPlan, "import")

	quests := todayQuests(t, db)
	if len(quests) != 2 {
		t.Fatalf("today quests = %d, want 2", len(quests))
	}

	out := mustRun(t, db, "", "done", quests[0].ScheduleID)
	if !strings.Contains(out, "✓ Completed quest "+quests[0].ScheduleID) {
		t.Errorf("done output = %q", out)
	}
	mustRun(t, db, "", "skip", quests[1].ScheduleID)

	statuses := map[string]models.ScheduleStatus{}
	for _, q := range todayQuests(t, db) {
		statuses[q.ScheduleID] = q.Status
	}
	if statuses[quests[0].ScheduleID] != models.StatusDone {
		t.Errorf("status = %q, want done", statuses[quests[0].ScheduleID])
	}
	if statuses[quests[1].ScheduleID] != models.StatusSkipped {
		t.Errorf("status = %q, want skipped", statuses[quests[1].ScheduleID])
	}

	if _, err := runCLI(t, db, "", "done", "sch_missing"); err == nil {
		t.Error("done should fail for an unknown schedule id")
	}
}

func TestPreviewCmd(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, "", "preview")
	if !strings.Contains(out, "No milestones yet") {
		t.Errorf("preview on empty store = %q", out)
	}

	mustRun(t, db, testPlan, "import")
	out = mustRun(t, db, "", "preview")
	for _, want := range []string{
		"Quests on 2026-03-01: 2 (core 1, optional 0, recovery 1)",
		"Actions: easy 2, medium 1, hard 0 (total XP 35)",
		"Get fit",
		"Read more",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("preview output missing %q:\n%s", want, out)
		}
	}
}

func TestExportCmd(t *testing.T) {
	db := setupCLI(t)
	mustRun(t, db, testPlan, "import")

	out := mustRun(t, db, "", "export")
	if !strings.HasPrefix(out, "goal,action,stat,duration_min,difficulty,xp,kind,date\n") {
		t.Errorf("export CSV header = %q", out)
	}
	if !strings.Contains(out, "Get fit,Run 5k,body,30,medium,20,core,2026-03-01") {
		t.Errorf("export CSV missing row:\n%s", out)
	}

	out = mustRun(t, db, "", "export", "--format", "yaml")
	if !strings.Contains(out, "tool: questos") {
		t.Errorf("export YAML = %q", out)
	}

	path := filepath.Join(t.TempDir(), "out", "plan.md")
	mustRun(t, db, "", "export", "--format", "markdown", "-o", path)
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(content), "### 2026-03-02") {
		t.Errorf("markdown export = %q", content)
	}

	if _, err := runCLI(t, db, "", "export", "--format", "pdf"); err == nil {
		t.Error("export should reject unknown formats")
	}
}

func TestDeedCmd(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, "", "deed", "list")
	if !strings.Contains(out, "No debt logged") {
		t.Errorf("deed list on empty store = %q", out)
	}

	out = mustRun(t, db, "", "deed", "--stat", "focus", "--intensity", "heavy", "--trigger", "doomscrolling", "--xp", "15")
	if !strings.Contains(out, "✓ Logged 15 XP debt against focus (wrong_deed:heavy:doomscrolling)") {
		t.Errorf("deed output = %q", out)
	}

	out = mustRun(t, db, "", "deed", "list")
	if !strings.Contains(out, "doomscrolling") || !strings.Contains(out, "focus") {
		t.Errorf("deed list = %q", out)
	}

	if _, err := runCLI(t, db, "", "deed", "--stat", "luck", "--trigger", "x"); err == nil {
		t.Error("deed should reject an unknown stat")
	}
}

func TestProfileCmd(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, "", "profile")
	if !strings.Contains(out, "No profile found") {
		t.Errorf("profile on empty store = %q", out)
	}

	out = mustRun(t, db, "", "profile", "set", "--name", "Doctor Biz", "--age", "41", "--gender", "male")
	if !strings.Contains(out, "✓ Profile saved for Doctor Biz") {
		t.Errorf("profile set output = %q", out)
	}

	mustRun(t, db, "", "profile", "set", "--age", "42")

	out = mustRun(t, db, "", "--format", "json", "profile", "show")
	var got models.UserProfile
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Name != "Doctor Biz" || got.Age != 42 || got.Gender != models.GenderMale {
		t.Errorf("profile = %+v", got)
	}

	if _, err := runCLI(t, db, "", "profile", "set", "--age", "500"); err == nil {
		t.Error("profile set should reject an out of range age")
	}
}

func TestSettingsCmd(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, "", "settings")
	if !strings.Contains(out, "Balanced") || !strings.Contains(out, "04:00") {
		t.Errorf("default settings = %q", out)
	}

	if _, err := runCLI(t, db, "", "settings", "set"); err == nil {
		t.Error("settings set without flags should fail")
	}

	mustRun(t, db, "", "settings", "set", "--strictness", "hardcore", "--rollover-hour", "6", "--notifications")

	out = mustRun(t, db, "", "settings", "show")
	for _, want := range []string{"Hardcore", "06:00", "true"} {
		if !strings.Contains(out, want) {
			t.Errorf("settings missing %q:\n%s", want, out)
		}
	}

	mustRun(t, db, "", "settings", "set", "--rollover-hour", "30")
	if out := mustRun(t, db, "", "settings"); !strings.Contains(out, "23:00") {
		t.Errorf("rollover hour should clamp to 23, got:\n%s", out)
	}

	if _, err := runCLI(t, db, "", "settings", "set", "--strictness", "brutal"); err == nil {
		t.Error("settings set should reject an unknown strictness")
	}
}

func TestResetCmd(t *testing.T) {
	db := setupCLI(t)
	mustRun(t, db, testPlan, "import")

	if _, err := runCLI(t, db, "", "reset"); err == nil {
		t.Error("reset without --confirm should fail")
	}
	if out := mustRun(t, db, "", "goals"); !strings.Contains(out, "Get fit") {
		t.Errorf("goals after refused reset = %q", out)
	}

	out := mustRun(t, db, "", "reset", "--confirm")
	if !strings.Contains(out, "✓ All data deleted") {
		t.Errorf("reset output = %q", out)
	}
	if out := mustRun(t, db, "", "goals"); !strings.Contains(out, "No goals found") {
		t.Errorf("goals after reset = %q", out)
	}
}

type fakeCompleter struct {
	reply  string
	system string
	user   string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	return f.reply, nil
}

func useCompleter(t *testing.T, c core.Completer) {
	t.Helper()
	prev := newCompleter
	newCompleter = func(cfg *config.Config, logger *zap.Logger) (core.Completer, error) {
		return c, nil
	}
	t.Cleanup(func() { newCompleter = prev })
}

func TestDraftCmd_PromptOnly(t *testing.T) {
	db := setupCLI(t)

	out := mustRun(t, db, "", "draft", "--goal", "Get fit", "--days", "3", "--prompt-only")
	for _, want := range []string{"Get fit", "2026-03-01", "2026-03-03"} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestDraftCmd_NoKey(t *testing.T) {
	db := setupCLI(t)

	_, err := runCLI(t, db, "", "draft", "--goal", "Get fit")
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("draft without key error = %v", err)
	}
}

func TestDraftCmd_Import(t *testing.T) {
	db := setupCLI(t)
	fake := &fakeCompleter{reply: "Here you go:\n```csv\n" + testPlan + "\n```"}
	useCompleter(t, fake)

	out := mustRun(t, db, "", "draft", "--goal", "Get fit", "--goal", "Read more", "--import")
	if !strings.Contains(out, "✓ Drafted and imported 3 quest(s) across 2 goal(s)") {
		t.Errorf("draft output = %q", out)
	}
	if !strings.Contains(fake.user, "Read more") {
		t.Errorf("prompt should list every goal, got %q", fake.user)
	}

	if got := len(todayQuests(t, db)); got != 2 {
		t.Errorf("today quests after draft = %d, want 2", got)
	}
}

func TestDraftCmd_InvalidDraft(t *testing.T) {
	db := setupCLI(t)
	useCompleter(t, &fakeCompleter{reply: "date,goal,action,stat,durationMin,difficulty,xp\n2026-03-01,Get fit,Run,luck,30,medium,20"})

	out, err := runCLI(t, db, "", "draft", "--goal", "Get fit", "--import")
	if err == nil {
		t.Fatal("draft should fail when the reply does not validate")
	}
	if !strings.Contains(out, "L2 stat") {
		t.Errorf("draft output = %q", out)
	}
	if out := mustRun(t, db, "", "goals"); !strings.Contains(out, "No goals found") {
		t.Errorf("invalid draft should not import, goals = %q", out)
	}
}

// memKV is an in-memory charm key-value store
type memKV struct {
	data map[string][]byte
}

func (m *memKV) Set(key, value []byte) error {
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Get(key []byte) ([]byte, error) {
	return m.data[string(key)], nil
}

func (m *memKV) Keys() ([][]byte, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

func (m *memKV) Sync() error  { return nil }
func (m *memKV) Close() error { return nil }

func TestBackupCmds(t *testing.T) {
	db := setupCLI(t)
	kv := &memKV{data: map[string][]byte{}}

	prev := openBackup
	openBackup = func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*charm.Client, error) {
		return charm.NewClientWithStore(kv, &charm.Config{Host: "charm.test", DBName: "questos"}, nil), nil
	}
	t.Cleanup(func() { openBackup = prev })

	if _, err := runCLI(t, db, "", "backup", "push"); err == nil {
		t.Error("backup push with no quests should fail")
	}
	if _, err := runCLI(t, db, "", "backup", "pull"); err == nil {
		t.Error("backup pull with no backups should fail")
	}

	mustRun(t, db, testPlan, "import")
	out := mustRun(t, db, "", "backup", "push")
	if !strings.Contains(out, "✓ Backed up 3 quest(s) as plan:") {
		t.Errorf("backup push output = %q", out)
	}

	out = mustRun(t, db, "", "--format", "json", "backup", "list")
	var keys []string
	if err := json.Unmarshal([]byte(out), &keys); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(keys) != 1 || !strings.HasPrefix(keys[0], charm.PlanPrefix) {
		t.Errorf("backup keys = %v", keys)
	}

	out = mustRun(t, db, "", "backup", "pull")
	if !strings.Contains(out, "2026-03-01,Get fit,Run 5k,body,30,medium,20,core") {
		t.Errorf("backup pull = %q", out)
	}

	mustRun(t, db, "", "reset", "--confirm")
	out = mustRun(t, db, "", "backup", "pull", "--key", keys[0], "--import")
	if !strings.Contains(out, "✓ Restored 3 quest(s)") {
		t.Errorf("backup restore output = %q", out)
	}
	if got := len(todayQuests(t, db)); got != 2 {
		t.Errorf("today quests after restore = %d, want 2", got)
	}
}
