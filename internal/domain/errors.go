package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindRole       ErrorKind = "role"
	KindState      ErrorKind = "state"
	KindConflict   ErrorKind = "conflict"
	KindExternal   ErrorKind = "external"
)

// Sentinels for errors.Is matching against a classified Error.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrRole       = &Error{Kind: KindRole}
	ErrState      = &Error{Kind: KindState}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrExternal   = &Error{Kind: KindExternal}
)

// ErrStaleWrite is returned by a store when a conditional update lost a
// race against a concurrent writer.
var ErrStaleWrite = errors.New("stale write: version mismatch")

// Error is a classified failure. Message is safe to show to the user who
// triggered the operation; Conflict names the identity that caused a
// KindConflict failure.
type Error struct {
	Kind     ErrorKind
	Op       string
	Message  string
	Conflict string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any Error of the same kind, so errors.Is(err, ErrState) holds
// for every state failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(op, format string, args ...interface{}) *Error {
	return newError(KindValidation, op, format, args...)
}

func NotFoundError(op, format string, args ...interface{}) *Error {
	return newError(KindNotFound, op, format, args...)
}

func RoleError(op, format string, args ...interface{}) *Error {
	return newError(KindRole, op, format, args...)
}

func StateError(op, format string, args ...interface{}) *Error {
	return newError(KindState, op, format, args...)
}

func ConflictError(op, conflict, format string, args ...interface{}) *Error {
	e := newError(KindConflict, op, format, args...)
	e.Conflict = conflict
	return e
}

func ExternalError(op string, err error) *Error {
	return &Error{Kind: KindExternal, Op: op, Message: "external dependency failed", Err: err}
}

// KindOf returns the kind of the first classified Error in err's chain.
// Unclassified errors count as external.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindExternal
}

// UserMessage returns the user-facing text of a classified error, or ""
// for unclassified and external ones.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindExternal {
		return e.Message
	}
	return ""
}
