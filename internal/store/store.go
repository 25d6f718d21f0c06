// Package store persists the portfolio documents. Every backend exposes
// the same whole-document contract: read a JSON document by key, or
// replace it atomically. The key set is closed; unknown keys are
// rejected before they reach a backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Key identifies one of the portfolio documents.
type Key string

const (
	KeyAbout     Key = "about"
	KeySkills    Key = "skills"
	KeyProjects  Key = "projects"
	KeyGoals     Key = "goals"
	KeyJourney   Key = "journey"
	KeyAuditLogs Key = "audit_logs"
)

var (
	// ErrUnknownKey is returned for keys outside the document set.
	ErrUnknownKey = errors.New("unknown document key")
	// ErrNotFound is returned when a backend has no document for a
	// valid key and no default applies.
	ErrNotFound = errors.New("document not found")
)

// Keys returns every valid document key in a stable order.
func Keys() []Key {
	return []Key{KeyAbout, KeySkills, KeyProjects, KeyGoals, KeyJourney, KeyAuditLogs}
}

// Valid reports whether k names a portfolio document.
func Valid(k Key) bool {
	switch k {
	case KeyAbout, KeySkills, KeyProjects, KeyGoals, KeyJourney, KeyAuditLogs:
		return true
	}
	return false
}

// Store is the whole-document persistence contract. Replace overwrites
// the full document; message describes the change for backends that
// keep history (the GitHub backend uses it as the commit message).
type Store interface {
	Read(ctx context.Context, key Key) (json.RawMessage, error)
	Replace(ctx context.Context, key Key, doc json.RawMessage, message string) error
}

// defaultDoc returns the seed document for a key: empty collections for
// list documents, zero-valued records for the singletons.
func defaultDoc(key Key) json.RawMessage {
	switch key {
	case KeyAbout:
		return json.RawMessage(`{"name":"","title":"","location":"","bio":"","email":"","github":"","linkedin":"","roles":[]}`)
	case KeyGoals:
		return json.RawMessage(`{"shortTerm":[],"longTerm":[],"currentFocus":"","vision":"","mission":""}`)
	case KeyJourney:
		return json.RawMessage(`{"student":[],"entrepreneur":[]}`)
	case KeySkills, KeyProjects, KeyAuditLogs:
		return json.RawMessage(`[]`)
	default:
		return nil
	}
}
