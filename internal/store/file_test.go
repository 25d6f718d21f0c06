package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_SeedsMissingFiles(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	for _, key := range Keys() {
		if _, err := os.Stat(filepath.Join(dir, string(key)+".json")); err != nil {
			t.Errorf("expected seeded file for %q: %v", key, err)
		}
	}

	doc, err := s.Read(context.Background(), KeySkills)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	var skills []json.RawMessage
	if err := json.Unmarshal(doc, &skills); err != nil {
		t.Fatalf("seeded skills is not a JSON array: %v", err)
	}
}

func TestFileStore_PreservesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	existing := `{"name":"Ada","title":"Engineer","location":"","bio":"","email":"","github":"","linkedin":"","roles":[]}`
	if err := os.WriteFile(filepath.Join(dir, "about.json"), []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	doc, err := s.Read(context.Background(), KeyAbout)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	var about struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(doc, &about); err != nil {
		t.Fatal(err)
	}
	if about.Name != "Ada" {
		t.Errorf("name = %q, want Ada (seeding must not overwrite)", about.Name)
	}
}

func TestFileStore_ReplaceWritesPrettyJSON(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	ctx := context.Background()

	compact := `[{"name":"Go","iconName":"SiGo","colorClass":"text-cyan-500","category":"Backend","level":85}]`
	if err := s.Replace(ctx, KeySkills, json.RawMessage(compact), ""); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "skills.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("file should be indented")
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("file should end with a newline")
	}

	got, err := s.Read(ctx, KeySkills)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	var skills []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(got, &skills); err != nil {
		t.Fatal(err)
	}
	if len(skills) != 1 || skills[0].Name != "Go" {
		t.Errorf("round trip mismatch: %s", got)
	}
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	s, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if err := s.Replace(context.Background(), KeyGoals, json.RawMessage(`nope{`), ""); err == nil {
		t.Fatal("expected error for invalid JSON document")
	}
}
