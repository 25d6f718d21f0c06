package store

import (
	"encoding/json"
	"testing"
)

func TestKeysAndValid(t *testing.T) {
	keys := Keys()
	if len(keys) != 6 {
		t.Fatalf("Keys() returned %d keys, want 6", len(keys))
	}
	for _, k := range keys {
		if !Valid(k) {
			t.Errorf("Valid(%q) = false", k)
		}
	}
	if Valid("secrets") {
		t.Error("Valid should reject unknown keys")
	}
}

func TestDefaultDocs(t *testing.T) {
	for _, k := range Keys() {
		doc := defaultDoc(k)
		if doc == nil {
			t.Fatalf("defaultDoc(%q) = nil", k)
		}
		if !json.Valid(doc) {
			t.Errorf("defaultDoc(%q) is not valid JSON: %s", k, doc)
		}
	}

	var about struct {
		Roles []string `json:"roles"`
	}
	if err := json.Unmarshal(defaultDoc(KeyAbout), &about); err != nil {
		t.Fatalf("about seed: %v", err)
	}
	if about.Roles == nil {
		t.Error("about seed should include an empty roles list")
	}

	var projects []json.RawMessage
	if err := json.Unmarshal(defaultDoc(KeyProjects), &projects); err != nil {
		t.Fatalf("projects seed: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("projects seed should be empty, got %d entries", len(projects))
	}
}
