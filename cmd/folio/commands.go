package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aychen/folio/internal/config"
)

// --- content ---

var contentCmd = &cobra.Command{
	Use:   "content <key>",
	Short: "Show a content document as JSON",
	Long: `Show a content document as JSON.

Valid keys: about, skills, projects, goals, journey`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/content/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}

		var doc any
		if err := decodeJSON(resp, &doc); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

// --- command ---

var commandCmd = &cobra.Command{
	Use:   "command [json]",
	Short: "Execute a portfolio command",
	Long: `Execute a portfolio command given as a JSON envelope.

The command is read from the argument, --file, or stdin.

Examples:
  folio command '{"type":"add_skill","payload":{"name":"Go","iconName":"SiGo","colorClass":"text-cyan-500","category":"Backend","level":80}}'
  folio command --file ./cmd.json
  echo '{"type":"noop","payload":{}}' | folio command`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		var raw []byte
		switch {
		case len(args) == 1:
			raw = []byte(args[0])
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			raw = data
		default:
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			raw = data
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.postRaw(cmd.Context(), "/content/command", raw)
		if err != nil {
			return err
		}
		return printCommandResult(resp)
	},
}

func init() {
	commandCmd.Flags().String("file", "", "file holding the command JSON")
}

type commandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Command string `json:"command"`
}

// printCommandResult reports an executed command, including failures
// the server returns with a non-2xx status but a structured body.
func printCommandResult(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var result commandResult
	if err := json.Unmarshal(body, &result); err != nil || result.Message == "" {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body)))
	}

	if result.Command != "" {
		printStep("%s", result.Command)
	}
	if !result.Success {
		printError("%s", result.Message)
		return fmt.Errorf("command failed")
	}
	printSuccess("%s", result.Message)
	return nil
}

// --- audit ---

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and manage the audit log",
}

var auditLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List audit log entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		cmdType, _ := cmd.Flags().GetString("type")
		category, _ := cmd.Flags().GetString("category")
		successOnly, _ := cmd.Flags().GetBool("success-only")
		destructiveOnly, _ := cmd.Flags().GetBool("destructive-only")
		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")
		asJSON, _ := cmd.Flags().GetBool("json")

		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
		if cmdType != "" {
			q.Set("type", cmdType)
		}
		if category != "" {
			q.Set("category", category)
		}
		if successOnly {
			q.Set("success_only", "true")
		}
		if destructiveOnly {
			q.Set("destructive_only", "true")
		}
		if since != "" {
			q.Set("since", since)
		}
		if until != "" {
			q.Set("until", until)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/audit/logs?"+q.Encode())
		if err != nil {
			return err
		}

		var result struct {
			Entries []struct {
				ID        string `json:"id"`
				Timestamp string `json:"timestamp"`
				Result    struct {
					Success bool   `json:"success"`
					Message string `json:"message"`
				} `json:"executionResult"`
				Metadata struct {
					Category      string `json:"commandCategory"`
					IsDestructive bool   `json:"isDestructive"`
				} `json:"metadata"`
			} `json:"entries"`
			Count int `json:"count"`
		}
		if asJSON {
			var payload any
			if err := decodeJSON(resp, &payload); err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if result.Count == 0 {
			fmt.Println("No matching audit log entries.")
			return nil
		}
		for _, e := range result.Entries {
			status := colorize(colorGreen, "OK")
			if !e.Result.Success {
				status = colorize(colorRed, "FAILED")
			}
			line := fmt.Sprintf("%s  %s  %s %s: %s",
				colorize(colorCyan, e.ID[:8]), e.Timestamp, status, e.Metadata.Category, e.Result.Message)
			if e.Metadata.IsDestructive {
				line += " " + colorize(colorYellow, "(destructive)")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show audit log statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/audit/stats")
		if err != nil {
			return err
		}

		var stats any
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

var auditUndoCmd = &cobra.Command{
	Use:   "undo <audit-log-id>",
	Short: "Undo a previously executed command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{"auditLogId": args[0]}
		if reason != "" {
			body["reason"] = reason
		}
		resp, err := client.post(cmd.Context(), "/audit/undo", body)
		if err != nil {
			return err
		}
		return printCommandResult(resp)
	},
}

var auditClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		olderThan, _ := cmd.Flags().GetString("older-than")

		if !confirm {
			printWarning("This will delete audit log entries. Use --confirm to proceed.")
			return nil
		}

		q := url.Values{}
		q.Set("confirmation_code", "CONFIRM_CLEAR_LOGS")
		if olderThan != "" {
			q.Set("older_than", olderThan)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/audit/logs?"+q.Encode())
		if err != nil {
			return err
		}
		return printCommandResult(resp)
	},
}

func init() {
	auditLogsCmd.Flags().Int("limit", 20, "maximum number of entries (1-100)")
	auditLogsCmd.Flags().Int("offset", 0, "number of entries to skip")
	auditLogsCmd.Flags().String("type", "", "filter by command type")
	auditLogsCmd.Flags().String("category", "", "filter by command category")
	auditLogsCmd.Flags().Bool("success-only", false, "only successful commands")
	auditLogsCmd.Flags().Bool("destructive-only", false, "only destructive commands")
	auditLogsCmd.Flags().String("since", "", "RFC 3339 lower bound on timestamp")
	auditLogsCmd.Flags().String("until", "", "RFC 3339 upper bound on timestamp")
	auditLogsCmd.Flags().Bool("json", false, "print raw JSON entries")

	auditUndoCmd.Flags().String("reason", "", "reason for the undo")

	auditClearCmd.Flags().Bool("confirm", false, "confirm clearing the audit log")
	auditClearCmd.Flags().String("older-than", "", "only clear entries older than this RFC 3339 timestamp")

	auditCmd.AddCommand(auditLogsCmd)
	auditCmd.AddCommand(auditStatsCmd)
	auditCmd.AddCommand(auditUndoCmd)
	auditCmd.AddCommand(auditClearCmd)
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to the portfolio assistant",
	Long: `Send a message to the portfolio assistant.

Public mode answers questions about the portfolio. Private mode (with
the owner PIN) lets the assistant edit content via commands.

Examples:
  folio chat "What projects has the owner built?"
  folio chat --private --pin 1234 "Mark the chess engine as completed"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		private, _ := cmd.Flags().GetBool("private")
		pin, _ := cmd.Flags().GetString("pin")

		body := map[string]any{
			"messages": []map[string]string{
				{"role": "user", "content": strings.Join(args, " ")},
			},
		}
		if private {
			body["mode"] = "private"
			body["pin"] = pin
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/chat", body)
		if err != nil {
			return err
		}

		var reply struct {
			Reply   string `json:"reply"`
			Command string `json:"command"`
			Success *bool  `json:"success"`
		}
		if err := decodeJSON(resp, &reply); err != nil {
			return err
		}

		fmt.Println(reply.Reply)
		if reply.Command != "" {
			printStep("%s", reply.Command)
			if reply.Success != nil && !*reply.Success {
				printError("command failed")
			}
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().Bool("private", false, "use private (edit) mode")
	chatCmd.Flags().String("pin", "", "owner PIN for private mode")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
