// Package executor runs validated commands against the document store,
// recording every content mutation in the audit log with before and
// after snapshots. Mutations to the same document are serialized by a
// per-key mutex so read-modify-write cycles never interleave.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aychen/folio/internal/audit"
	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/store"
)

// Result is the outcome of one command execution.
type Result struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"-"`
}

// Executor applies commands to the store and logs them.
type Executor struct {
	store  store.Store
	logger *audit.Log
	locks  map[store.Key]*sync.Mutex
}

// New returns an executor over st that records mutations in logger.
func New(st store.Store, logger *audit.Log) *Executor {
	locks := make(map[store.Key]*sync.Mutex, len(store.Keys()))
	for _, key := range store.Keys() {
		locks[key] = &sync.Mutex{}
	}
	return &Executor{store: st, logger: logger, locks: locks}
}

// Execute runs a validated command. The returned error carries the
// failure type (NotFoundError, AlreadyExistsError, ...); Result always
// carries a user-facing message, mirroring the error on failure.
func (e *Executor) Execute(ctx context.Context, cmd command.Command) (Result, error) {
	start := time.Now()

	var msg string
	var err error
	switch c := cmd.(type) {
	case *command.Noop:
		msg = c.Reason
		if msg == "" {
			msg = "No action needed"
		}
	case *command.ViewAuditLogs:
		msg, err = e.viewAuditLogs(ctx, c)
	case *command.ClearAuditLogs:
		msg, err = e.clearAuditLogs(ctx, c)
	case *command.UndoCommand:
		msg, err = e.undo(ctx, c)
	default:
		msg, err = e.mutate(ctx, cmd, start)
	}

	res := Result{Success: err == nil, Message: msg, Duration: time.Since(start)}
	if err != nil {
		res.Message = err.Error()
	}
	return res, err
}

// mutate runs a content command: read the target document, apply the
// change, write it back, and record the attempt in the audit log.
func (e *Executor) mutate(ctx context.Context, cmd command.Command, start time.Time) (string, error) {
	key := command.TargetKey(cmd)
	mu, ok := e.locks[key]
	if !ok {
		return "", &UnsupportedOperationError{Operation: string(cmd.Type())}
	}
	mu.Lock()
	defer mu.Unlock()

	var after json.RawMessage
	var msg string

	before, err := e.store.Read(ctx, key)
	if err != nil {
		err = &StoreError{Op: "read", Key: key, Err: err}
	} else {
		after, msg, err = apply(cmd, before)
	}
	if err == nil {
		if werr := e.store.Replace(ctx, key, after, command.Summary(cmd)+" via assistant"); werr != nil {
			after = nil
			err = &StoreError{Op: "write", Key: key, Err: werr}
		}
	}

	e.record(ctx, cmd, before, after, key, msg, err, start)
	return msg, err
}

// record appends an audit entry for a content mutation. Audit failures
// are logged but never fail the command that already ran.
func (e *Executor) record(ctx context.Context, cmd command.Command, before, after json.RawMessage, key store.Key, msg string, execErr error, start time.Time) {
	res := audit.ExecutionResult{
		Success:         execErr == nil,
		Message:         msg,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
	if execErr != nil {
		res.Message = execErr.Error()
		after = nil
	}

	entry, err := audit.NewEntry(cmd, res, before, after, key)
	if err != nil {
		slog.Warn("building audit entry", "command", cmd.Type(), "error", err)
		return
	}
	if err := e.logger.Append(ctx, entry); err != nil {
		slog.Warn("appending audit entry", "command", cmd.Type(), "error", err)
	}
}

func (e *Executor) viewAuditLogs(ctx context.Context, c *command.ViewAuditLogs) (string, error) {
	var filters audit.Filters
	if f := c.FilterBy; f != nil {
		filters.CommandType = command.Type(f.CommandType)
		filters.Category = command.Category(f.Category)
		filters.SuccessOnly = f.SuccessOnly
		filters.DestructiveOnly = f.DestructiveOnly
		if f.DateRange != nil {
			// Bounds were validated as RFC 3339 already.
			if f.DateRange.Start != "" {
				filters.Since, _ = time.Parse(time.RFC3339, f.DateRange.Start)
			}
			if f.DateRange.End != "" {
				filters.Until, _ = time.Parse(time.RFC3339, f.DateRange.End)
			}
		}
	}

	entries, err := e.logger.Query(ctx, c.Limit, c.Offset, filters)
	if err != nil {
		return "", &StoreError{Op: "read", Key: store.KeyAuditLogs, Err: err}
	}
	if len(entries) == 0 {
		return "No matching audit log entries", nil
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, fmt.Sprintf("%d audit log entries:", len(entries)))
	for _, entry := range entries {
		lines = append(lines, audit.FormatEntry(entry))
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Executor) clearAuditLogs(ctx context.Context, c *command.ClearAuditLogs) (string, error) {
	if c.ConfirmationCode != audit.ConfirmationCode {
		return "", &ConfirmationRequiredError{Expected: audit.ConfirmationCode}
	}

	var cutoff time.Time
	if c.OlderThan != "" {
		cutoff, _ = time.Parse(time.RFC3339, c.OlderThan)
	}

	removed, err := e.logger.Clear(ctx, cutoff)
	if err != nil {
		return "", &StoreError{Op: "write", Key: store.KeyAuditLogs, Err: err}
	}
	return fmt.Sprintf("Cleared %d audit log entries", removed), nil
}

// undo looks up the referenced entry, synthesizes the inverse command,
// and executes it through the normal path so the inverse gets its own
// audit entry. The undo_command wrapper itself is not logged.
func (e *Executor) undo(ctx context.Context, c *command.UndoCommand) (string, error) {
	entry, err := e.logger.GetByID(ctx, c.AuditLogID)
	if err != nil {
		return "", &NotFoundError{Entity: "audit log entry", Match: c.AuditLogID}
	}

	inverse, err := audit.SynthesizeUndo(entry)
	if err != nil {
		return "", err
	}
	if _, isUndo := inverse.(*command.UndoCommand); isUndo {
		return "", &UnsupportedOperationError{Operation: "undo of an undo_command"}
	}

	res, err := e.Execute(ctx, inverse)
	if err != nil {
		return "", fmt.Errorf("executing undo of %s: %w", entry.CommandType(), err)
	}
	return fmt.Sprintf("Undid %s: %s", entry.CommandType(), res.Message), nil
}
