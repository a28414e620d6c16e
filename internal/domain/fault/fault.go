// Package fault defines the business-rule error taxonomy shared by the
// entitlement and lifecycle packages. Every failure here is a rule
// violation, never a transient fault, so callers branch on the kind to
// pick user-facing behaviour instead of retrying.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule violation.
type Kind string

const (
	// NotFound means the referenced request, response or user does not exist.
	NotFound Kind = "not_found"
	// Forbidden means the actor's role, ownership or subscription state
	// does not satisfy the action's predicate.
	Forbidden Kind = "forbidden"
	// InvalidState means a state-machine precondition failed.
	InvalidState Kind = "invalid_state"
	// Conflict means a uniqueness constraint was violated.
	Conflict Kind = "conflict"
	// InvalidReference means a referenced id does not belong to the
	// parent entity.
	InvalidReference Kind = "invalid_reference"
)

// Error is a business-rule violation with a kind and a human-readable
// message. It matches errors.Is against another *Error of the same kind.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is reports kind equality, so errors.Is(err, fault.New(fault.Forbidden, ""))
// style sentinels work regardless of message.
func (e *Error) Is(target error) bool {
	var fe *Error
	if !errors.As(target, &fe) {
		return false
	}
	return e.Kind == fe.Kind
}

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, returning ok=false when err is not
// a business-rule violation.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a business-rule violation of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
