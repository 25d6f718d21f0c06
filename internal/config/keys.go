package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "FOLIO_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "model.chat_model", typ: kString, env: "FOLIO_CHAT_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Model.ChatModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.ChatModel },
	},
	{
		key: "model.openrouter_api_key", typ: kString, env: "FOLIO_OPENROUTER_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Model.OpenRouterAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.OpenRouterAPIKey },
	},
	{
		key: "storage.backend", typ: kString, env: "FOLIO_STORAGE_BACKEND",
		apply:   func(cfg *Config, v any) { cfg.Storage.Backend = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.Backend },
	},
	{
		key: "storage.data_dir", typ: kString, env: "FOLIO_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.content_dir", typ: kString, env: "FOLIO_STORAGE_CONTENT_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.ContentDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.ContentDir },
	},
	{
		key: "github.token", typ: kString, env: "FOLIO_GITHUB_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.GitHub.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.Token },
	},
	{
		key: "github.owner", typ: kString, env: "FOLIO_GITHUB_OWNER",
		apply:   func(cfg *Config, v any) { cfg.GitHub.Owner = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.Owner },
	},
	{
		key: "github.repo", typ: kString, env: "FOLIO_GITHUB_REPO",
		apply:   func(cfg *Config, v any) { cfg.GitHub.Repo = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.Repo },
	},
	{
		key: "github.branch", typ: kString, env: "FOLIO_GITHUB_BRANCH",
		apply:   func(cfg *Config, v any) { cfg.GitHub.Branch = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.Branch },
	},
	{
		key: "github.dir", typ: kString, env: "FOLIO_GITHUB_DIR",
		apply:   func(cfg *Config, v any) { cfg.GitHub.Dir = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.Dir },
	},
	{
		key: "auth.pin", typ: kString, env: "FOLIO_PIN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Auth.PIN = v.(string) },
		extract: func(cfg Config) any { return cfg.Auth.PIN },
	},
	{
		key: "log.level", typ: kString, env: "FOLIO_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
