// Package mcp exposes the command layer to MCP clients: tools for
// running commands, browsing the audit log, and undoing entries, plus
// read-only resources for every content document.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aychen/folio/internal/audit"
	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/executor"
	"github.com/aychen/folio/internal/store"
)

// Deps holds dependencies for the MCP server.
type Deps struct {
	Store store.Store
	Exec  *executor.Executor
	Audit *audit.Log
}

// NewServer creates an MCP server with all portfolio tools and
// resources registered.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"folio",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("folio — command layer for a personal portfolio: run validated edit commands, inspect the audit trail, undo changes."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("run_command",
			mcp.WithDescription("Validate and execute a portfolio command. The command is a JSON envelope {\"type\": ..., \"payload\": {...}}."),
			mcp.WithString("command", mcp.Description("The command envelope as a JSON string"), mcp.Required()),
		),
		mcpRunCommand(deps),
	)

	s.AddTool(
		mcp.NewTool("view_audit_logs",
			mcp.WithDescription("List recent audit log entries, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 20, max 100)")),
			mcp.WithString("category", mcp.Description("Filter by command category (Projects, Skills, About, Goals, Journey)")),
		),
		mcpViewAuditLogs(deps),
	)

	s.AddTool(
		mcp.NewTool("undo_command",
			mcp.WithDescription("Undo a previously executed command by its audit log entry ID."),
			mcp.WithString("audit_log_id", mcp.Description("ID of the audit log entry to undo"), mcp.Required()),
			mcp.WithString("reason", mcp.Description("Optional reason for the undo")),
		),
		mcpUndoCommand(deps),
	)

	for _, key := range store.Keys() {
		if key == store.KeyAuditLogs {
			continue
		}
		s.AddResource(
			mcp.NewResource(
				"portfolio://"+string(key),
				resourceName(key),
				mcp.WithResourceDescription(fmt.Sprintf("The %s document as JSON", key)),
				mcp.WithMIMEType("application/json"),
			),
			mcpResourceDocument(deps, key),
		)
	}

	return s
}

func mcpRunCommand(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("command")
		if err != nil {
			return mcpError("command is required"), nil
		}

		cmd, err := command.Validate([]byte(raw))
		if err != nil {
			var verr *command.ValidationError
			if errors.As(err, &verr) {
				return mcpError("command failed validation: " + strings.Join(verr.Problems, "; ")), nil
			}
			return mcpError(err.Error()), nil
		}

		res, execErr := deps.Exec.Execute(ctx, cmd)
		if execErr != nil {
			return mcpError(res.Message), nil
		}
		return mcpText(fmt.Sprintf("%s\n%s", command.Summary(cmd), res.Message)), nil
	}
}

func mcpViewAuditLogs(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		filters := audit.Filters{
			Category: command.Category(req.GetString("category", "")),
		}
		entries, err := deps.Audit.Query(ctx, limit, 0, filters)
		if err != nil {
			return mcpError(fmt.Sprintf("querying audit log: %v", err)), nil
		}
		if len(entries) == 0 {
			return mcpText("No matching audit log entries"), nil
		}

		b, err := json.Marshal(entries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal entries: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpUndoCommand(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("audit_log_id")
		if err != nil {
			return mcpError("audit_log_id is required"), nil
		}

		cmd := &command.UndoCommand{AuditLogID: id, Reason: req.GetString("reason", "")}
		res, execErr := deps.Exec.Execute(ctx, cmd)
		if execErr != nil {
			return mcpError(res.Message), nil
		}
		return mcpText(res.Message), nil
	}
}

func mcpResourceDocument(deps Deps, key store.Key) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		doc, err := deps.Store.Read(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(doc),
			},
		}, nil
	}
}

func resourceName(key store.Key) string {
	s := string(key)
	return strings.ToUpper(s[:1]) + s[1:]
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
