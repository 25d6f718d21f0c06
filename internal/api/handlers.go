// Package api exposes the portfolio over HTTP: a public chat and
// content surface, and a bearer-token admin surface for direct command
// execution and audit log access.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aychen/folio/internal/assistant"
	"github.com/aychen/folio/internal/audit"
	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/executor"
	"github.com/aychen/folio/internal/llm"
	"github.com/aychen/folio/internal/store"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Store    store.Store
	Exec     *executor.Executor
	Audit    *audit.Log
	Session  *assistant.Session
	Token    string
	OwnerPIN string
}

// NewHandler builds the full router. Admin routes sit behind bearer
// auth; chat and content reads are public (private chat mode is gated
// by the owner PIN inside the request).
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/v1/chat", handleChat(deps))
	r.Get("/content/{key}", handleGetContent(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Post("/content/command", handleCommand(deps))
		r.Get("/audit/logs", handleAuditLogs(deps))
		r.Get("/audit/stats", handleAuditStats(deps))
		r.Post("/audit/undo", handleUndo(deps))
		r.Delete("/audit/logs", handleClearAuditLogs(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type chatRequest struct {
	Messages []llm.Message `json:"messages"`
	Mode     string        `json:"mode"`
	PIN      string        `json:"pin"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Messages) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "messages is required")
			return
		}

		mode := assistant.ModePublic
		if req.Mode == string(assistant.ModePrivate) {
			if !verifyPIN(deps.OwnerPIN, req.PIN) {
				httpError(w, http.StatusForbidden, "authentication_error", "invalid PIN for private mode")
				return
			}
			mode = assistant.ModePrivate
		}

		reply, err := deps.Session.Handle(r.Context(), req.Messages, mode)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "chat failed: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func handleGetContent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := store.Key(chi.URLParam(r, "key"))
		// The audit log has its own authenticated surface.
		if !store.Valid(key) || key == store.KeyAuditLogs {
			httpError(w, http.StatusNotFound, "invalid_request_error", "unknown content key %q", key)
			return
		}

		doc, err := deps.Store.Read(r.Context(), key)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading %s: %v", key, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(doc)
	}
}

type commandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Command string `json:"command"`
}

func handleCommand(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading request body: %v", err)
			return
		}

		cmd, err := command.Validate(raw)
		if err != nil {
			var verr *command.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":    "validation_failed",
					"problems": verr.Problems,
				})
				return
			}
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		res, execErr := deps.Exec.Execute(r.Context(), cmd)
		writeJSON(w, statusForExecError(execErr), commandResponse{
			Success: res.Success,
			Message: res.Message,
			Command: command.Summary(cmd),
		})
	}
}

func handleAuditLogs(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20)
		if limit < 1 || limit > 100 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be between 1 and 100")
			return
		}
		offset := parseIntParam(r, "offset", 0)
		if offset < 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "offset must not be negative")
			return
		}

		filters := audit.Filters{
			CommandType:     command.Type(r.URL.Query().Get("type")),
			Category:        command.Category(r.URL.Query().Get("category")),
			SuccessOnly:     r.URL.Query().Get("success_only") == "true",
			DestructiveOnly: r.URL.Query().Get("destructive_only") == "true",
		}
		for param, dst := range map[string]*time.Time{"since": &filters.Since, "until": &filters.Until} {
			if v := r.URL.Query().Get(param); v != "" {
				t, err := time.Parse(time.RFC3339, v)
				if err != nil {
					httpError(w, http.StatusBadRequest, "invalid_request_error", "%s must be an RFC 3339 timestamp", param)
					return
				}
				*dst = t
			}
		}

		entries, err := deps.Audit.Query(r.Context(), limit, offset, filters)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "querying audit log: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
	}
}

func handleAuditStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Audit.Stats(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "computing audit stats: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

type undoRequest struct {
	AuditLogID string `json:"auditLogId"`
	Reason     string `json:"reason"`
}

func handleUndo(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req undoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.AuditLogID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "auditLogId is required")
			return
		}

		cmd := &command.UndoCommand{AuditLogID: req.AuditLogID, Reason: req.Reason}
		res, execErr := deps.Exec.Execute(r.Context(), cmd)
		writeJSON(w, statusForExecError(execErr), commandResponse{
			Success: res.Success,
			Message: res.Message,
			Command: command.Summary(cmd),
		})
	}
}

func handleClearAuditLogs(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := &command.ClearAuditLogs{
			OlderThan:        r.URL.Query().Get("older_than"),
			ConfirmationCode: r.URL.Query().Get("confirmation_code"),
		}
		if _, err := command.Validate(mustEncode(cmd)); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		res, execErr := deps.Exec.Execute(r.Context(), cmd)
		writeJSON(w, statusForExecError(execErr), commandResponse{
			Success: res.Success,
			Message: res.Message,
			Command: command.Summary(cmd),
		})
	}
}

// statusForExecError maps executor failures onto HTTP statuses. A
// successful execution is always 200.
func statusForExecError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var notFound *executor.NotFoundError
	var exists *executor.AlreadyExistsError
	var confirm *executor.ConfirmationRequiredError
	var unsupported *executor.UnsupportedOperationError
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &exists):
		return http.StatusConflict
	case errors.As(err, &confirm), errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.Is(err, audit.ErrNotUndoable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseIntParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return i
}

func mustEncode(cmd command.Command) []byte {
	raw, _ := command.Encode(cmd)
	return raw
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
