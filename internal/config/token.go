package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetAPIToken returns the bearer token that guards the admin API. The
// FOLIO_API_TOKEN environment variable takes precedence; otherwise the
// token lives in a 0600 file under the data directory and is generated
// on first use.
func GetAPIToken(dataDir string) (string, error) {
	if tok := os.Getenv("FOLIO_API_TOKEN"); tok != "" {
		return tok, nil
	}

	path := filepath.Join(dataDir, "api_token")
	if data, err := os.ReadFile(path); err == nil {
		tok := strings.TrimSpace(string(data))
		if tok != "" {
			return tok, nil
		}
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating API token: %w", err)
	}
	tok := hex.EncodeToString(buf)

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(tok+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing API token: %w", err)
	}
	return tok, nil
}
