package executor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aychen/folio/internal/audit"
	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/content"
	"github.com/aychen/folio/internal/store"
)

func newTestExecutor(t *testing.T) (*Executor, store.Store, *audit.Log) {
	t.Helper()
	st, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	log := audit.NewLog(st)
	return New(st, log), st, log
}

func run(t *testing.T, e *Executor, raw string) Result {
	t.Helper()
	cmd, err := command.Validate([]byte(raw))
	if err != nil {
		t.Fatalf("Validate(%s) failed: %v", raw, err)
	}
	res, err := e.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Execute(%s) failed: %v", raw, err)
	}
	return res
}

func runErr(t *testing.T, e *Executor, raw string) (Result, error) {
	t.Helper()
	cmd, err := command.Validate([]byte(raw))
	if err != nil {
		t.Fatalf("Validate(%s) failed: %v", raw, err)
	}
	res, execErr := e.Execute(context.Background(), cmd)
	if execErr == nil {
		t.Fatalf("Execute(%s) succeeded, want error", raw)
	}
	return res, execErr
}

func readProjects(t *testing.T, st store.Store) []content.Project {
	t.Helper()
	raw, err := st.Read(context.Background(), store.KeyProjects)
	if err != nil {
		t.Fatal(err)
	}
	var projects []content.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		t.Fatal(err)
	}
	return projects
}

func TestExecute_AddUpdateRemoveProject(t *testing.T) {
	e, st, _ := newTestExecutor(t)

	res := run(t, e, `{"type":"add_project","payload":{"title":"Chess Engine","description":"UCI engine","stack":["Go"],"year":2024,"featured":true}}`)
	if !res.Success || !strings.Contains(res.Message, "Chess Engine") {
		t.Errorf("result = %+v", res)
	}

	res = run(t, e, `{"type":"update_project","payload":{"matchTitle":"chess engine","patch":{"status":"in-progress","year":2025}}}`)
	if !strings.Contains(res.Message, "status, year") && !strings.Contains(res.Message, "year, status") {
		t.Errorf("message = %q, want patched fields listed", res.Message)
	}

	projects := readProjects(t, st)
	if len(projects) != 1 || projects[0].Status != content.StatusInProgress || projects[0].Year != 2025 {
		t.Errorf("stored projects = %+v", projects)
	}

	run(t, e, `{"type":"remove_project","payload":{"matchTitle":"Chess Engine"}}`)
	if got := readProjects(t, st); len(got) != 0 {
		t.Errorf("projects after remove = %+v", got)
	}
}

func TestExecute_AddProjectCollision(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	run(t, e, `{"type":"add_project","payload":{"title":"Chess Engine","description":"x","year":2024}}`)
	res, err := runErr(t, e, `{"type":"add_project","payload":{"title":"CHESS ENGINE","description":"y","year":2024}}`)

	var exists *AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("error = %T, want *AlreadyExistsError", err)
	}
	if res.Success {
		t.Error("result should report failure")
	}
	if res.Message != err.Error() {
		t.Errorf("result message %q should mirror the error", res.Message)
	}
}

func TestExecute_NotFoundListsAvailable(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	run(t, e, `{"type":"add_project","payload":{"title":"Chess Engine","description":"x","year":2024}}`)
	_, err := runErr(t, e, `{"type":"remove_project","payload":{"matchTitle":"Poker Bot"}}`)

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %T, want *NotFoundError", err)
	}
	if len(notFound.Available) != 1 || notFound.Available[0] != "Chess Engine" {
		t.Errorf("available = %v", notFound.Available)
	}
	if !strings.Contains(err.Error(), "available: Chess Engine") {
		t.Errorf("error = %q, want available list in message", err.Error())
	}
}

func TestExecute_SkillsFlow(t *testing.T) {
	e, st, _ := newTestExecutor(t)

	run(t, e, `{"type":"add_skill","payload":{"name":"Go","iconName":"SiGo","colorClass":"text-cyan-500","category":"Backend","level":80}}`)
	run(t, e, `{"type":"update_skill","payload":{"matchName":"go","patch":{"level":90}}}`)

	raw, _ := st.Read(context.Background(), store.KeySkills)
	var skills []content.Skill
	json.Unmarshal(raw, &skills)
	if len(skills) != 1 || skills[0].Level != 90 {
		t.Errorf("skills = %+v", skills)
	}

	run(t, e, `{"type":"remove_skill","payload":{"matchName":"Go"}}`)
	raw, _ = st.Read(context.Background(), store.KeySkills)
	json.Unmarshal(raw, &skills)
	if len(skills) != 0 {
		t.Errorf("skills after remove = %+v", skills)
	}
}

func TestExecute_AboutRoles(t *testing.T) {
	e, st, _ := newTestExecutor(t)

	run(t, e, `{"type":"update_about","payload":{"field":"name","value":"Ada"}}`)
	run(t, e, `{"type":"add_role","payload":{"role":"Builder"}}`)

	_, err := runErr(t, e, `{"type":"add_role","payload":{"role":"Builder"}}`)
	var exists *AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("duplicate role error = %T, want *AlreadyExistsError", err)
	}

	raw, _ := st.Read(context.Background(), store.KeyAbout)
	var about content.About
	json.Unmarshal(raw, &about)
	if about.Name != "Ada" || len(about.Roles) != 1 {
		t.Errorf("about = %+v", about)
	}

	run(t, e, `{"type":"remove_role","payload":{"role":"Builder"}}`)
	raw, _ = st.Read(context.Background(), store.KeyAbout)
	json.Unmarshal(raw, &about)
	if len(about.Roles) != 0 {
		t.Errorf("roles after remove = %v", about.Roles)
	}
}

func TestExecute_RemoveGoalSubstringShortTermFirst(t *testing.T) {
	e, st, _ := newTestExecutor(t)

	run(t, e, `{"type":"add_goal","payload":{"type":"shortTerm","goal":"Ship the portfolio site"}}`)
	run(t, e, `{"type":"add_goal","payload":{"type":"longTerm","goal":"Grow the portfolio of products"}}`)

	res := run(t, e, `{"type":"remove_goal","payload":{"matchGoal":"portfolio"}}`)
	if !strings.Contains(res.Message, "Ship the portfolio site") {
		t.Errorf("message = %q, want the short term goal removed first", res.Message)
	}

	raw, _ := st.Read(context.Background(), store.KeyGoals)
	var goals content.Goals
	json.Unmarshal(raw, &goals)
	if len(goals.ShortTerm) != 0 || len(goals.LongTerm) != 1 {
		t.Errorf("goals = %+v", goals)
	}
}

func TestExecute_RemoveGoalPrefersExactMatch(t *testing.T) {
	e, st, _ := newTestExecutor(t)
	ctx := context.Background()

	run(t, e, `{"type":"add_goal","payload":{"type":"shortTerm","goal":"Grow the company fast"}}`)
	run(t, e, `{"type":"add_goal","payload":{"type":"longTerm","goal":"company"}}`)

	// "company" is a substring of the short term goal, but the exact
	// long term match must win.
	res := run(t, e, `{"type":"remove_goal","payload":{"matchGoal":"company"}}`)
	if !strings.Contains(res.Message, `Removed goal "company"`) {
		t.Errorf("message = %q, want the exact match removed", res.Message)
	}

	raw, _ := st.Read(ctx, store.KeyGoals)
	var goals content.Goals
	json.Unmarshal(raw, &goals)
	if len(goals.ShortTerm) != 1 || goals.ShortTerm[0] != "Grow the company fast" {
		t.Errorf("short term goals = %v, want the substring match untouched", goals.ShortTerm)
	}
	if len(goals.LongTerm) != 0 {
		t.Errorf("long term goals = %v, want empty", goals.LongTerm)
	}
}

func TestExecute_UndoAddGoalRemovesTheAddedGoal(t *testing.T) {
	e, st, log := newTestExecutor(t)
	ctx := context.Background()

	run(t, e, `{"type":"add_goal","payload":{"type":"shortTerm","goal":"Grow the company fast"}}`)
	run(t, e, `{"type":"add_goal","payload":{"type":"longTerm","goal":"company"}}`)

	entries, _ := log.Query(ctx, 1, 0, audit.Filters{})
	run(t, e, `{"type":"undo_command","payload":{"auditLogId":"`+entries[0].ID+`"}}`)

	raw, _ := st.Read(ctx, store.KeyGoals)
	var goals content.Goals
	json.Unmarshal(raw, &goals)
	if len(goals.ShortTerm) != 1 || goals.ShortTerm[0] != "Grow the company fast" {
		t.Errorf("short term goals after undo = %v", goals.ShortTerm)
	}
	if len(goals.LongTerm) != 0 {
		t.Errorf("long term goals after undo = %v, want the added goal gone", goals.LongTerm)
	}
}

func TestExecute_JourneyFlow(t *testing.T) {
	e, st, _ := newTestExecutor(t)

	run(t, e, `{"type":"add_journey_item","payload":{"timeline":"student","year":"2021","title":"Internship","desc":"Summer"}}`)

	raw, _ := st.Read(context.Background(), store.KeyJourney)
	var journey content.Journey
	json.Unmarshal(raw, &journey)
	if len(journey.Student) != 1 {
		t.Fatalf("journey = %+v", journey)
	}
	item := journey.Student[0]
	if item.ID == "" {
		t.Error("inserted milestone should get a generated ID")
	}
	if item.Icon != content.DefaultJourneyIcon || item.IconColor != content.DefaultJourneyIconColor {
		t.Errorf("defaults not applied: %+v", item)
	}

	run(t, e, `{"type":"update_journey_item","payload":{"timeline":"student","itemId":"`+item.ID+`","patch":{"title":"First internship"}}}`)
	run(t, e, `{"type":"remove_journey_item","payload":{"timeline":"student","itemId":"`+item.ID+`"}}`)

	raw, _ = st.Read(context.Background(), store.KeyJourney)
	json.Unmarshal(raw, &journey)
	if len(journey.Student) != 0 {
		t.Errorf("student timeline after remove = %+v", journey.Student)
	}
}

func TestExecute_MutationsAreAudited(t *testing.T) {
	e, _, log := newTestExecutor(t)
	ctx := context.Background()

	run(t, e, `{"type":"add_skill","payload":{"name":"Go","iconName":"SiGo","colorClass":"text-cyan-500","category":"Backend","level":80}}`)

	entries, err := log.Query(ctx, 10, 0, audit.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit holds %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.CommandType() != command.TypeAddSkill {
		t.Errorf("logged type = %q", entry.CommandType())
	}
	if string(entry.Snapshot.Before) != "[]" {
		t.Errorf("before snapshot = %s, want []", entry.Snapshot.Before)
	}
	if !strings.Contains(string(entry.Snapshot.After), `"Go"`) {
		t.Errorf("after snapshot = %s", entry.Snapshot.After)
	}
	if entry.Snapshot.AffectedKey != store.KeySkills {
		t.Errorf("affectedKey = %q", entry.Snapshot.AffectedKey)
	}
}

func TestExecute_FailedMutationAuditedWithoutAfter(t *testing.T) {
	e, _, log := newTestExecutor(t)

	runErr(t, e, `{"type":"remove_project","payload":{"matchTitle":"Nope"}}`)

	entries, err := log.Query(context.Background(), 10, 0, audit.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit holds %d entries, want 1", len(entries))
	}
	if entries[0].Result.Success {
		t.Error("failed mutation should be logged as failed")
	}
	if entries[0].Snapshot.After != nil {
		t.Error("failed mutation must not carry an after snapshot")
	}
}

func TestExecute_ViewAndNoopNotAudited(t *testing.T) {
	e, _, log := newTestExecutor(t)

	run(t, e, `{"type":"noop","payload":{"reason":"Nothing to do"}}`)
	run(t, e, `{"type":"view_audit_logs","payload":{}}`)

	entries, err := log.Query(context.Background(), 10, 0, audit.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("audit holds %d entries, want 0", len(entries))
	}
}

func TestExecute_ViewAuditLogs(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	res := run(t, e, `{"type":"view_audit_logs","payload":{}}`)
	if res.Message != "No matching audit log entries" {
		t.Errorf("message = %q", res.Message)
	}

	run(t, e, `{"type":"add_role","payload":{"role":"Builder"}}`)
	res = run(t, e, `{"type":"view_audit_logs","payload":{"limit":5}}`)
	if !strings.HasPrefix(res.Message, "1 audit log entries:") {
		t.Errorf("message = %q", res.Message)
	}
	if !strings.Contains(res.Message, "OK About:") {
		t.Errorf("message = %q, want formatted entry line", res.Message)
	}
}

func TestExecute_ClearRequiresConfirmation(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	_, err := runErr(t, e, `{"type":"clear_audit_logs","payload":{}}`)
	var confirm *ConfirmationRequiredError
	if !errors.As(err, &confirm) {
		t.Fatalf("error = %T, want *ConfirmationRequiredError", err)
	}
	if confirm.Expected != audit.ConfirmationCode {
		t.Errorf("expected code = %q", confirm.Expected)
	}

	run(t, e, `{"type":"add_role","payload":{"role":"Builder"}}`)
	res := run(t, e, `{"type":"clear_audit_logs","payload":{"confirmationCode":"CONFIRM_CLEAR_LOGS"}}`)
	if res.Message != "Cleared 1 audit log entries" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestExecute_UndoAddProject(t *testing.T) {
	e, st, log := newTestExecutor(t)
	ctx := context.Background()

	run(t, e, `{"type":"add_project","payload":{"title":"Chess Engine","description":"x","year":2024}}`)

	entries, _ := log.Query(ctx, 1, 0, audit.Filters{})
	res := run(t, e, `{"type":"undo_command","payload":{"auditLogId":"`+entries[0].ID+`"}}`)
	if !strings.Contains(res.Message, "Undid add_project") {
		t.Errorf("message = %q", res.Message)
	}

	if got := readProjects(t, st); len(got) != 0 {
		t.Errorf("projects after undo = %+v", got)
	}

	// The synthesized inverse got its own audit entry.
	entries, _ = log.Query(ctx, 10, 0, audit.Filters{})
	if len(entries) != 2 {
		t.Fatalf("audit holds %d entries, want 2", len(entries))
	}
	if entries[0].CommandType() != command.TypeRemoveProject {
		t.Errorf("newest entry = %q, want remove_project", entries[0].CommandType())
	}
}

func TestExecute_UndoUpdateRestoresFields(t *testing.T) {
	e, st, log := newTestExecutor(t)
	ctx := context.Background()

	run(t, e, `{"type":"add_project","payload":{"title":"Chess Engine","description":"x","year":2024,"featured":true}}`)
	run(t, e, `{"type":"update_project","payload":{"matchTitle":"Chess Engine","patch":{"featured":false,"year":2025}}}`)

	entries, _ := log.Query(ctx, 1, 0, audit.Filters{CommandType: command.TypeUpdateProject})
	run(t, e, `{"type":"undo_command","payload":{"auditLogId":"`+entries[0].ID+`"}}`)

	projects := readProjects(t, st)
	if len(projects) != 1 || !projects[0].Featured || projects[0].Year != 2024 {
		t.Errorf("projects after undo = %+v", projects)
	}
}

func TestExecute_UndoUnknownEntry(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	_, err := runErr(t, e, `{"type":"undo_command","payload":{"auditLogId":"52a9eab2-9b8a-4dd8-9a3b-111111111111"}}`)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %T, want *NotFoundError", err)
	}
}

func TestExecute_Noop(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	res := run(t, e, `{"type":"noop","payload":{}}`)
	if res.Message != "No action needed" {
		t.Errorf("message = %q", res.Message)
	}
	res = run(t, e, `{"type":"noop","payload":{"reason":"Already up to date"}}`)
	if res.Message != "Already up to date" {
		t.Errorf("message = %q", res.Message)
	}
}
