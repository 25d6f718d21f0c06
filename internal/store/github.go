package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	githubAPIBase    = "https://api.github.com"
	githubTimeout    = 30 * time.Second
	githubAPIVersion = "2022-11-28"
)

// GitHubConfig describes the repository holding the content files.
type GitHubConfig struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
	// Dir is the repository path holding the document files,
	// e.g. "data/content". Empty means the repository root.
	Dir string
}

// GitHubStore persists each document as a JSON file in a GitHub
// repository via the contents API. Every Replace becomes a commit, so
// the repository history doubles as a change log for the site content.
type GitHubStore struct {
	cfg        GitHubConfig
	baseURL    string
	httpClient *http.Client
}

// OpenGitHub validates the configuration and returns a GitHub-backed store.
func OpenGitHub(cfg GitHubConfig) (*GitHubStore, error) {
	if cfg.Token == "" || cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github store requires token, owner, and repo")
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	return &GitHubStore{
		cfg:        cfg,
		baseURL:    githubAPIBase,
		httpClient: &http.Client{Timeout: githubTimeout},
	}, nil
}

// OpenGitHubWithBaseURL points the store at a custom API base URL (for testing).
func OpenGitHubWithBaseURL(cfg GitHubConfig, baseURL string) (*GitHubStore, error) {
	s, err := OpenGitHub(cfg)
	if err != nil {
		return nil, err
	}
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s, nil
}

func (s *GitHubStore) contentsURL(key Key) string {
	path := string(key) + ".json"
	if s.cfg.Dir != "" {
		path = strings.TrimSuffix(s.cfg.Dir, "/") + "/" + path
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.baseURL, s.cfg.Owner, s.cfg.Repo, path)
}

type githubFile struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Read fetches the document file from the configured branch. A missing
// file yields the key's default document rather than an error, so a
// fresh repository behaves like a seeded store.
func (s *GitHubStore) Read(ctx context.Context, key Key) (json.RawMessage, error) {
	if !Valid(key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	file, status, err := s.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return defaultDoc(key), nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decoding %s content: %w", key, err)
	}
	return json.RawMessage(raw), nil
}

// Replace commits the new document to the configured branch, carrying
// the current file SHA so concurrent writers conflict instead of
// silently overwriting each other.
func (s *GitHubStore) Replace(ctx context.Context, key Key, doc json.RawMessage, message string) error {
	if !Valid(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if !json.Valid(doc) {
		return fmt.Errorf("replacing %s: document is not valid JSON", key)
	}
	if message == "" {
		message = fmt.Sprintf("Update %s", key)
	}

	file, status, err := s.fetch(ctx, key)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(doc),
		"branch":  s.cfg.Branch,
	}
	if status == http.StatusOK {
		payload["sha"] = file.SHA
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling commit for %s: %w", key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.contentsURL(key), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("committing %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("committing %s: unexpected status %d: %s", key, resp.StatusCode, string(respBody))
	}
	return nil
}

// fetch retrieves the file metadata for key. A 404 is not an error; the
// caller inspects the returned status.
func (s *GitHubStore) fetch(ctx context.Context, key Key) (githubFile, int, error) {
	url := s.contentsURL(key) + "?ref=" + s.cfg.Branch
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return githubFile{}, 0, fmt.Errorf("creating request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return githubFile{}, 0, fmt.Errorf("fetching %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return githubFile{}, http.StatusNotFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return githubFile{}, resp.StatusCode, fmt.Errorf("fetching %s: unexpected status %d: %s", key, resp.StatusCode, string(respBody))
	}

	var file githubFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return githubFile{}, resp.StatusCode, fmt.Errorf("decoding %s metadata: %w", key, err)
	}
	return file, http.StatusOK, nil
}

func (s *GitHubStore) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
}
