package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/aychen/folio/internal/api"
	"github.com/aychen/folio/internal/assistant"
	"github.com/aychen/folio/internal/audit"
	"github.com/aychen/folio/internal/config"
	"github.com/aychen/folio/internal/executor"
	"github.com/aychen/folio/internal/llm"
	"github.com/aychen/folio/internal/mcp"
	"github.com/aychen/folio/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the folio server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running folio server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show folio system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "folio.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// openStore picks the document store backend from config.
func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return store.OpenSQLite(cfg.Storage.DataDir)
	case "file":
		return store.OpenFile(cfg.Storage.ContentDir)
	case "github":
		return store.OpenGitHub(store.GitHubConfig{
			Token:  cfg.GitHub.Token,
			Owner:  cfg.GitHub.Owner,
			Repo:   cfg.GitHub.Repo,
			Branch: cfg.GitHub.Branch,
			Dir:    cfg.GitHub.Dir,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "folio version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Ensure the admin API token exists.
	apiToken, err := config.GetAPIToken(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("folio is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("folio is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the document store.
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if closer, ok := st.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: closing store: %v\n", err)
			}
		}
	}()
	slog.Info("store opened", "backend", cfg.Storage.Backend)

	// Wire the command layer.
	auditLog := audit.NewLog(st)
	exec := executor.New(st, auditLog)
	llmClient := llm.NewClient(cfg.Model.OpenRouterAPIKey)
	composer := assistant.NewComposer(st)
	session := assistant.NewSession(llmClient, exec, composer, cfg.Model.ChatModel)

	handler := api.NewHandler(api.Deps{
		Store:    st,
		Exec:     exec,
		Audit:    auditLog,
		Session:  session,
		Token:    apiToken,
		OwnerPIN: cfg.Auth.PIN,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := mcp.NewServer(mcp.Deps{
		Store: st,
		Exec:  exec,
		Audit: auditLog,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "folio listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("folio is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop folio (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to folio (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Chat model", "%s", cfg.Model.ChatModel)
	printStatus("Storage backend", "%s", cfg.Storage.Backend)

	// Show audit activity if server is running.
	if resp != nil && resp.StatusCode == 200 {
		if apiToken, tokenErr := config.GetAPIToken(cfg.Storage.DataDir); tokenErr == nil {
			statsResp, err := apiGet(client, serverURL+"/audit/stats", apiToken)
			if err == nil {
				var stats struct {
					TotalEntries       int `json:"totalEntries"`
					SuccessfulCommands int `json:"successfulCommands"`
					FailedCommands     int `json:"failedCommands"`
				}
				if decodeJSON(statsResp, &stats) == nil {
					printStatus("Audit entries", "%d (%d ok, %d failed)",
						stats.TotalEntries, stats.SuccessfulCommands, stats.FailedCommands)
				}
			}
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func apiGet(client *http.Client, url, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return client.Do(req)
}
