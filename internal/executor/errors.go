package executor

import (
	"fmt"
	"strings"

	"github.com/aychen/folio/internal/store"
)

// NotFoundError reports a failed entity match. Available carries the
// identifiers that would have matched, so the assistant can correct
// itself without another round trip.
type NotFoundError struct {
	Entity    string
	Match     string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s %q not found", e.Entity, e.Match)
	}
	return fmt.Sprintf("%s %q not found (available: %s)", e.Entity, e.Match, strings.Join(e.Available, ", "))
}

// AlreadyExistsError reports an insert collision.
type AlreadyExistsError struct {
	Entity string
	Name   string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Name)
}

// UnsupportedOperationError reports a command the executor cannot
// route, such as an unknown reorder strategy.
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return "unsupported operation: " + e.Operation
}

// ConfirmationRequiredError is returned when clear_audit_logs lacks
// the confirmation token.
type ConfirmationRequiredError struct {
	Expected string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("clearing audit logs requires confirmationCode %q", e.Expected)
}

// StoreError wraps a persistence failure with the operation and key.
type StoreError struct {
	Op  string
	Key store.Key
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
