// Package audit keeps the append-only log of executed commands. The
// log is itself a document in the store (key "audit_logs"): a JSON
// array of entries, newest first, capped at maxEntries. Each entry
// carries the command verbatim plus before/after snapshots of the
// affected document, which is what makes undo possible.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/store"
)

const maxEntries = 1000

// ConfirmationCode must accompany clear_audit_logs.
const ConfirmationCode = "CONFIRM_CLEAR_LOGS"

// ErrEntryNotFound is returned when no entry matches the requested ID.
var ErrEntryNotFound = errors.New("audit log entry not found")

// ExecutionResult captures how a command run went.
type ExecutionResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
}

// Snapshot holds the affected document before and after execution.
// After is empty for failed commands.
type Snapshot struct {
	Before      json.RawMessage `json:"before,omitempty"`
	After       json.RawMessage `json:"after,omitempty"`
	AffectedKey store.Key       `json:"affectedKey"`
}

// Metadata is the routing information recorded alongside the command.
type Metadata struct {
	Category      command.Category `json:"commandCategory"`
	IsDestructive bool             `json:"isDestructive"`
	IsUndoable    bool             `json:"isUndoable"`
}

// Entry is one audit log record.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Command   json.RawMessage `json:"command"`
	Result    ExecutionResult `json:"executionResult"`
	Snapshot  Snapshot        `json:"dataSnapshot"`
	Metadata  Metadata        `json:"metadata"`
}

// CommandType extracts the command type from the stored envelope.
func (e Entry) CommandType() command.Type {
	var probe struct {
		Type command.Type `json:"type"`
	}
	json.Unmarshal(e.Command, &probe)
	return probe.Type
}

// NewEntry builds an audit entry for an executed command. Snapshots are
// copied so later document mutations cannot alias into the log.
func NewEntry(cmd command.Command, res ExecutionResult, before, after json.RawMessage, key store.Key) (Entry, error) {
	raw, err := command.Encode(cmd)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding command for audit: %w", err)
	}
	return Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Command:   raw,
		Result:    res,
		Snapshot: Snapshot{
			Before:      cloneRaw(before),
			After:       cloneRaw(after),
			AffectedKey: key,
		},
		Metadata: Metadata{
			Category:      command.CategoryOf(cmd),
			IsDestructive: command.IsDestructive(cmd),
			IsUndoable:    command.IsUndoable(cmd),
		},
	}, nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

// Log reads and writes the audit document through a store. A mutex
// serializes writers so concurrent appends cannot lose entries.
type Log struct {
	store store.Store
	mu    sync.Mutex
}

// NewLog returns a Log backed by st.
func NewLog(st store.Store) *Log {
	return &Log{store: st}
}

func (l *Log) load(ctx context.Context) ([]Entry, error) {
	raw, err := l.store.Read(ctx, store.KeyAuditLogs)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding audit log: %w", err)
	}
	return entries, nil
}

func (l *Log) save(ctx context.Context, entries []Entry, message string) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding audit log: %w", err)
	}
	if err := l.store.Replace(ctx, store.KeyAuditLogs, raw, message); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Append prepends the entry and evicts the oldest entries beyond the
// cap.
func (l *Log) Append(ctx context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return err
	}
	entries = append([]Entry{e}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return l.save(ctx, entries, fmt.Sprintf("Audit: %s", e.CommandType()))
}

// GetByID returns the entry with the given ID.
func (l *Log) GetByID(ctx context.Context, id string) (Entry, error) {
	entries, err := l.load(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// Filters narrows a Query. Zero-valued fields match everything.
type Filters struct {
	CommandType     command.Type
	Category        command.Category
	SuccessOnly     bool
	DestructiveOnly bool
	Since           time.Time
	Until           time.Time
}

func (f Filters) match(e Entry) bool {
	if f.CommandType != "" && e.CommandType() != f.CommandType {
		return false
	}
	if f.Category != "" && e.Metadata.Category != f.Category {
		return false
	}
	if f.SuccessOnly && !e.Result.Success {
		return false
	}
	if f.DestructiveOnly && !e.Metadata.IsDestructive {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	return true
}

// Query returns up to limit matching entries, newest first, skipping
// offset matches.
func (l *Log) Query(ctx context.Context, limit, offset int, f Filters) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Entry, 0, limit)
	skipped := 0
	for _, e := range entries {
		if !f.match(e) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		matched = append(matched, e)
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}

// DayCount is one day of the recent activity histogram.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats summarizes the whole log.
type Stats struct {
	TotalEntries       int                      `json:"totalEntries"`
	SuccessfulCommands int                      `json:"successfulCommands"`
	FailedCommands     int                      `json:"failedCommands"`
	CommandsByCategory map[command.Category]int `json:"commandsByCategory"`
	RecentActivity     []DayCount               `json:"recentActivity"`
}

// Stats computes totals, per-category counts, and a 7-day activity
// histogram (oldest day first).
func (l *Log) Stats(ctx context.Context) (Stats, error) {
	entries, err := l.load(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalEntries:       len(entries),
		CommandsByCategory: make(map[command.Category]int),
	}
	byDay := make(map[string]int)
	for _, e := range entries {
		if e.Result.Success {
			stats.SuccessfulCommands++
		} else {
			stats.FailedCommands++
		}
		stats.CommandsByCategory[e.Metadata.Category]++
		byDay[e.Timestamp.UTC().Format("2006-01-02")]++
	}

	now := time.Now().UTC()
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		stats.RecentActivity = append(stats.RecentActivity, DayCount{Date: day, Count: byDay[day]})
	}
	return stats, nil
}

// Clear removes entries older than the cutoff, or every entry when
// olderThan is zero. It returns the number of removed entries. The
// confirmation code is checked by the executor before Clear is called.
func (l *Log) Clear(ctx context.Context, olderThan time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return 0, err
	}

	var kept []Entry
	if !olderThan.IsZero() {
		for _, e := range entries {
			if !e.Timestamp.Before(olderThan) {
				kept = append(kept, e)
			}
		}
	}
	if kept == nil {
		kept = []Entry{}
	}

	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := l.save(ctx, kept, fmt.Sprintf("Audit: cleared %d entries", removed)); err != nil {
		return 0, err
	}
	return removed, nil
}

// FormatEntry renders an entry as a single audit listing line.
func FormatEntry(e Entry) string {
	status := "OK"
	if !e.Result.Success {
		status = "FAILED"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s: %s", e.Timestamp.UTC().Format(time.RFC3339), status, e.Metadata.Category, e.Result.Message)
	if e.Metadata.IsDestructive {
		b.WriteString(" (destructive)")
	}
	return b.String()
}
