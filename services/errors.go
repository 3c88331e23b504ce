package services

import (
	"fmt"
	"sort"
	"strings"
)

// InvalidStateError means the requested transition is not permitted from the
// entity's current status. Never retried automatically.
type InvalidStateError struct {
	Entity  string
	ID      uint
	Current string
	Action  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %d in status %s", e.Action, e.Entity, e.ID, e.Current)
}

// ValidationError carries per-field messages for a payload that is missing
// required data or malformed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// NotFoundError means the id does not resolve to a live record.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError means a uniqueness guarantee blocked the write, e.g. a
// duplicate admission attempt that lost the allocator race with no fallback.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// GatewayError wraps a failed payment-gateway call. Retryable and non-fatal:
// the affected transaction stays PENDING for the next reconciliation pass.
type GatewayError struct {
	Op      string
	OrderID string
	Timeout bool
	Err     error
}

func (e *GatewayError) Error() string {
	kind := "gateway error"
	if e.Timeout {
		kind = "gateway timeout"
	}
	if e.OrderID != "" {
		return fmt.Sprintf("%s during %s for order %s: %v", kind, e.Op, e.OrderID, e.Err)
	}
	return fmt.Sprintf("%s during %s: %v", kind, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError means the store failed mid-operation. Callers abort the
// whole operation; nothing is left half-written.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
