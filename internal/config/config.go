// Package config loads service configuration from a JSON config file
// with FOLIO_* environment variable overrides. Secrets (the OpenRouter
// API key, the GitHub token, the owner PIN) are only ever read from the
// environment.
package config

import (
	"fmt"
)

type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	Storage StorageConfig
	GitHub  GitHubConfig
	Auth    AuthConfig
	Log     LogConfig
}

// ServerConfig holds the HTTP listener port. The MCP server speaks
// stdio and needs no port of its own.
type ServerConfig struct {
	Port int
}

type ModelConfig struct {
	OpenRouterAPIKey string
	ChatModel        string
}

// StorageConfig selects the document store backend. "sqlite" keeps
// documents in a local database, "file" in a directory of JSON files,
// "github" in a repository via the contents API.
type StorageConfig struct {
	Backend    string
	DataDir    string
	ContentDir string
}

type GitHubConfig struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
	Dir    string
}

// AuthConfig holds the owner PIN gating private chat mode. An empty
// PIN disables private mode entirely.
type AuthConfig struct {
	PIN string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Model: ModelConfig{
			ChatModel: "google/gemini-2.5-flash",
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			DataDir:    defaultDataDir(),
			ContentDir: "content",
		},
		GitHub: GitHubConfig{
			Branch: "main",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/folio/config.json, then applies FOLIO_* environment
// overrides.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Model.OpenRouterAPIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenRouter API key. Set it via environment variable FOLIO_OPENROUTER_API_KEY")
	}

	switch cfg.Storage.Backend {
	case "sqlite", "file":
	case "github":
		if cfg.GitHub.Token == "" || cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
			return Config{}, fmt.Errorf("github storage backend requires FOLIO_GITHUB_TOKEN, github.owner, and github.repo")
		}
	default:
		return Config{}, fmt.Errorf("unknown storage backend %q (want sqlite, file, or github)", cfg.Storage.Backend)
	}

	return cfg, nil
}
