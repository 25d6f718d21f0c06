package config

import (
	"strings"
	"testing"
)

// mapBackend is an in-memory Backend for tests.
type mapBackend map[string]any

func (m mapBackend) GetString(key string) (string, bool, error) {
	v, ok := m[key]
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (m mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := m[key]
	if !ok {
		return 0, false, nil
	}
	return v.(int), true, nil
}

func (m mapBackend) SetString(key, val string) error  { m[key] = val; return nil }
func (m mapBackend) SetInt(key string, val int) error { m[key] = val; return nil }
func (m mapBackend) Delete(key string) error          { delete(m, key); return nil }

// clearEnv blanks every FOLIO_* override so ambient environment never
// leaks into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		if s.env != "" {
			t.Setenv(s.env, "")
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_OPENROUTER_API_KEY", "sk-test")

	cfg, err := loadWith(mapBackend{})
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}
	if cfg.Server.Port != 4600 {
		t.Errorf("port = %d, want 4600", cfg.Server.Port)
	}
	if cfg.Model.ChatModel != "google/gemini-2.5-flash" {
		t.Errorf("chat model = %q", cfg.Model.ChatModel)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.GitHub.Branch != "main" || cfg.Log.Level != "info" {
		t.Errorf("branch = %q, log level = %q", cfg.GitHub.Branch, cfg.Log.Level)
	}
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := loadWith(mapBackend{})
	if err == nil || !strings.Contains(err.Error(), "FOLIO_OPENROUTER_API_KEY") {
		t.Errorf("error = %v, want missing API key", err)
	}
}

func TestLoad_BackendValuesApply(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_OPENROUTER_API_KEY", "sk-test")

	cfg, err := loadWith(mapBackend{
		"server.port":     8080,
		"storage.backend": "file",
		"log.level":       "debug",
	})
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Storage.Backend != "file" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_OPENROUTER_API_KEY", "sk-test")
	t.Setenv("FOLIO_SERVER_PORT", "9999")

	cfg, err := loadWith(mapBackend{"server.port": 8080})
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want env override", cfg.Server.Port)
	}
}

func TestLoad_BadIntEnvKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_OPENROUTER_API_KEY", "sk-test")
	t.Setenv("FOLIO_SERVER_PORT", "not-a-port")

	cfg, err := loadWith(mapBackend{})
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}
	if cfg.Server.Port != 4600 {
		t.Errorf("port = %d, want default kept", cfg.Server.Port)
	}
}

func TestLoad_SecretsIgnoredInFile(t *testing.T) {
	clearEnv(t)

	// API key in the config file must not satisfy the requirement.
	_, err := loadWith(mapBackend{"model.openrouter_api_key": "sk-from-file"})
	if err == nil {
		t.Fatal("API key from the config file should be ignored")
	}
}

func TestLoad_ValidatesBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_OPENROUTER_API_KEY", "sk-test")

	if _, err := loadWith(mapBackend{"storage.backend": "redis"}); err == nil || !strings.Contains(err.Error(), "unknown storage backend") {
		t.Errorf("error = %v", err)
	}

	if _, err := loadWith(mapBackend{"storage.backend": "github"}); err == nil || !strings.Contains(err.Error(), "github storage backend requires") {
		t.Errorf("error = %v", err)
	}

	t.Setenv("FOLIO_GITHUB_TOKEN", "ghp_x")
	cfg, err := loadWith(mapBackend{
		"storage.backend": "github",
		"github.owner":    "aychen",
		"github.repo":     "portfolio-content",
	})
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}
	if cfg.GitHub.Owner != "aychen" || cfg.GitHub.Token != "ghp_x" {
		t.Errorf("github config = %+v", cfg.GitHub)
	}
}

func TestShowAll_ExcludesSecrets(t *testing.T) {
	infos := ShowAll(defaults())

	seen := make(map[string]bool, len(infos))
	for _, info := range infos {
		seen[info.Key] = true
	}
	for _, key := range []string{"server.port", "storage.backend", "log.level"} {
		if !seen[key] {
			t.Errorf("ShowAll missing %q", key)
		}
	}
	for _, key := range []string{"model.openrouter_api_key", "github.token", "auth.pin"} {
		if seen[key] {
			t.Errorf("ShowAll must not expose secret %q", key)
		}
	}
}

func TestSetKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	clearEnv(t)
	t.Setenv("FOLIO_OPENROUTER_API_KEY", "sk-test")

	if err := SetKey("server.port", "7070"); err != nil {
		t.Fatalf("SetKey failed: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want the value just written", cfg.Server.Port)
	}

	if err := SetKey("server.port", "many"); err == nil {
		t.Error("non-integer value should be rejected")
	}
	if err := SetKey("auth.pin", "4242"); err == nil || !strings.Contains(err.Error(), "secret") {
		t.Errorf("setting a secret = %v, want rejection", err)
	}
	if err := SetKey("nope.nope", "x"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("unknown key = %v", err)
	}
	if err := SetKey("nope.nope", "x"); err == nil || !strings.Contains(err.Error(), "server.port") {
		t.Errorf("unknown key error should list settable keys, got %v", err)
	}
	// The MCP server speaks stdio, so no port key exists for it.
	if err := SetKey("server.mcp_port", "4601"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("server.mcp_port = %v, want unknown key", err)
	}
}
