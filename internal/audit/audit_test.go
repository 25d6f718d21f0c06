package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/store"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	s, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewLog(s)
}

func entryFor(t *testing.T, cmd command.Command, success bool) Entry {
	t.Helper()
	e, err := NewEntry(cmd, ExecutionResult{Success: success, Message: command.Summary(cmd)}, json.RawMessage(`[]`), json.RawMessage(`[{}]`), command.TargetKey(cmd))
	if err != nil {
		t.Fatalf("NewEntry failed: %v", err)
	}
	return e
}

func TestAppend_NewestFirst(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	first := entryFor(t, &command.AddSkill{Name: "Go"}, true)
	second := entryFor(t, &command.AddProject{Title: "Chess Engine"}, true)

	if err := l.Append(ctx, first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append(ctx, second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := l.Query(ctx, 10, 0, Filters{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != second.ID {
		t.Error("most recent entry should come first")
	}
	if entries[0].CommandType() != command.TypeAddProject {
		t.Errorf("CommandType = %q, want add_project", entries[0].CommandType())
	}
}

func TestAppend_EnforcesCap(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	oldest := entryFor(t, &command.AddRole{Role: "the one that falls off"}, true)
	if err := l.Append(ctx, oldest); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Fill directly through save to keep the test fast; Append only needs
	// to see a full log once.
	entries, err := l.load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for len(entries) < maxEntries {
		e := entryFor(t, &command.Noop{}, true)
		entries = append([]Entry{e}, entries...)
	}
	if err := l.save(ctx, entries, "fill"); err != nil {
		t.Fatal(err)
	}

	newest := entryFor(t, &command.AddSkill{Name: "Rust"}, true)
	if err := l.Append(ctx, newest); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	all, err := l.Query(ctx, maxEntries+10, 0, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != maxEntries {
		t.Fatalf("log holds %d entries, want cap %d", len(all), maxEntries)
	}
	if all[0].ID != newest.ID {
		t.Error("newest entry should survive the cap")
	}
	for _, e := range all {
		if e.ID == oldest.ID {
			t.Error("oldest entry should have been evicted")
		}
	}
}

func TestGetByID(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	e := entryFor(t, &command.RemoveSkill{MatchName: "Go"}, true)
	if err := l.Append(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := l.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != e.ID {
		t.Errorf("ID = %q, want %q", got.ID, e.ID)
	}
	if !got.Metadata.IsDestructive {
		t.Error("remove_skill entry should be marked destructive")
	}

	if _, err := l.GetByID(ctx, "b5fd737e-917d-4cd1-a1f5-a5b5bb2a1f01"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("error = %v, want ErrEntryNotFound", err)
	}
}

func TestQuery_FiltersCombineWithAnd(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	okProject := entryFor(t, &command.AddProject{Title: "A"}, true)
	failedProject := entryFor(t, &command.AddProject{Title: "B"}, false)
	okSkill := entryFor(t, &command.AddSkill{Name: "Go"}, true)
	removal := entryFor(t, &command.RemoveProject{MatchTitle: "A"}, true)

	for _, e := range []Entry{okProject, failedProject, okSkill, removal} {
		if err := l.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.Query(ctx, 10, 0, Filters{Category: command.CategoryProjects, SuccessOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 (successful project commands)", len(got))
	}

	got, err = l.Query(ctx, 10, 0, Filters{DestructiveOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != removal.ID {
		t.Errorf("destructive filter returned %d entries", len(got))
	}

	got, err = l.Query(ctx, 10, 0, Filters{CommandType: command.TypeAddSkill})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != okSkill.ID {
		t.Errorf("type filter returned %d entries", len(got))
	}
}

func TestQuery_LimitAndOffset(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		e := entryFor(t, &command.AddRole{Role: fmt.Sprintf("role %d", i)}, true)
		ids = append(ids, e.ID)
		if err := l.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.Query(ctx, 2, 1, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	// Newest first: entry 4 is index 0, offset 1 starts at entry 3.
	if got[0].ID != ids[3] || got[1].ID != ids[2] {
		t.Error("offset should skip the newest matching entries")
	}
}

func TestStats(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	for _, e := range []Entry{
		entryFor(t, &command.AddProject{Title: "A"}, true),
		entryFor(t, &command.AddProject{Title: "B"}, false),
		entryFor(t, &command.AddSkill{Name: "Go"}, true),
	} {
		if err := l.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := l.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 3 || stats.SuccessfulCommands != 2 || stats.FailedCommands != 1 {
		t.Errorf("totals = %d/%d/%d, want 3/2/1", stats.TotalEntries, stats.SuccessfulCommands, stats.FailedCommands)
	}
	if stats.CommandsByCategory[command.CategoryProjects] != 2 {
		t.Errorf("Projects count = %d, want 2", stats.CommandsByCategory[command.CategoryProjects])
	}
	if len(stats.RecentActivity) != 7 {
		t.Fatalf("recent activity spans %d days, want 7", len(stats.RecentActivity))
	}
	today := time.Now().UTC().Format("2006-01-02")
	last := stats.RecentActivity[6]
	if last.Date != today {
		t.Errorf("last histogram day = %s, want today %s (oldest first)", last.Date, today)
	}
	if last.Count != 3 {
		t.Errorf("today's count = %d, want 3", last.Count)
	}
}

func TestClear_All(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Append(ctx, entryFor(t, &command.Noop{}, true)); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := l.Clear(ctx, time.Time{})
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}

	entries, err := l.Query(ctx, 10, 0, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("log still holds %d entries", len(entries))
	}
}

func TestClear_OlderThan(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()

	old := entryFor(t, &command.Noop{}, true)
	old.Timestamp = time.Now().UTC().Add(-48 * time.Hour)
	recent := entryFor(t, &command.Noop{}, true)

	if err := l.save(ctx, []Entry{recent, old}, "seed"); err != nil {
		t.Fatal(err)
	}

	removed, err := l.Clear(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	entries, err := l.Query(ctx, 10, 0, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != recent.ID {
		t.Error("only the recent entry should survive")
	}
}

func TestFormatEntry(t *testing.T) {
	e := entryFor(t, &command.RemoveProject{MatchTitle: "Chess Engine"}, true)
	line := FormatEntry(e)
	if !strings.Contains(line, "OK Projects:") {
		t.Errorf("line = %q, want status and category", line)
	}
	if !strings.Contains(line, "(destructive)") {
		t.Errorf("line = %q, want destructive marker", line)
	}

	failed := entryFor(t, &command.AddSkill{Name: "Go"}, false)
	if !strings.Contains(FormatEntry(failed), "FAILED") {
		t.Error("failed entries should render FAILED")
	}
}

func TestNewEntry_ClonesSnapshots(t *testing.T) {
	before := json.RawMessage(`[1]`)
	e, err := NewEntry(&command.Noop{}, ExecutionResult{Success: true}, before, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	before[1] = '9'
	if string(e.Snapshot.Before) != "[1]" {
		t.Errorf("snapshot aliased the caller's buffer: %s", e.Snapshot.Before)
	}
	if e.Snapshot.After != nil {
		t.Error("nil after snapshot should stay nil")
	}
	if e.ID == "" {
		t.Error("entry should get a generated ID")
	}
}
