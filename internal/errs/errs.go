// Package errs defines the failure kinds surfaced by the vault engine.
//
// Every engine error wraps one of the Err* kinds so callers can branch with
// errors.Is, and carries the identifier (hash, branch, path) it concerns.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a sentinel identifying a class of failure.
type Kind struct {
	name string
}

func (k *Kind) Error() string { return k.name }

var (
	ErrNotFound            = &Kind{"not found"}
	ErrAlreadyExists       = &Kind{"already exists"}
	ErrDirtyState          = &Kind{"dirty state"}
	ErrCorruptSnapshot     = &Kind{"corrupt snapshot"}
	ErrStoreCorruption     = &Kind{"store corruption"}
	ErrNoCommonAncestor    = &Kind{"no common ancestor"}
	ErrVaultLocked         = &Kind{"vault locked"}
	ErrCannotDeleteCurrent = &Kind{"cannot delete current branch"}
)

// Error is a structured engine failure.
type Error struct {
	Kind *Kind
	Op   string // operation, e.g. "checkout"
	ID   string // offending identifier
	Head string // HEAD description at the time of failure, if known
	Err  error  // underlying cause
}

// E builds an *Error. Arguments are matched by type: *Kind sets Kind,
// error sets Err, and strings fill Op then ID.
func E(args ...any) *Error {
	e := &Error{}
	var strs []string
	for _, a := range args {
		switch v := a.(type) {
		case *Kind:
			e.Kind = v
		case *Error:
			e.Err = v
		case error:
			e.Err = v
		case string:
			strs = append(strs, v)
		}
	}
	if len(strs) > 0 {
		e.Op = strs[0]
	}
	if len(strs) > 1 {
		e.ID = strs[1]
	}
	if e.Kind == nil {
		var inner *Error
		if errors.As(e.Err, &inner) {
			e.Kind = inner.Kind
		}
	}
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.name)
	}
	if e.ID != "" {
		fmt.Fprintf(&b, " %q", e.ID)
	}
	if e.Head != "" {
		fmt.Fprintf(&b, " (HEAD %s)", e.Head)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(*Kind)
	return ok && e.Kind == k
}

// WithHead annotates the error with the current HEAD.
func (e *Error) WithHead(head string) *Error {
	e.Head = head
	return e
}

// KindOf returns the kind of err, or nil for foreign errors.
func KindOf(err error) *Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k *Kind
	if errors.As(err, &k) {
		return k
	}
	return nil
}

// Retryable reports whether err may succeed if the operation is repeated.
func Retryable(err error) bool {
	return errors.Is(err, ErrVaultLocked)
}

// Fatal reports failures that indicate a damaged vault.
func Fatal(err error) bool {
	return errors.Is(err, ErrCorruptSnapshot) ||
		errors.Is(err, ErrStoreCorruption) ||
		errors.Is(err, ErrNoCommonAncestor)
}
