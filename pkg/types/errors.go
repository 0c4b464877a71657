package types

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindDirectoryNotFound ErrKind = iota // ICU base or data directory missing/misconfigured
	ErrKindLocked                           // artifact held open by a consumer; retry later
	ErrKindToolFailure                      // external compiler failed for any other reason
	ErrKindIO                               // read/write/copy failure at any pipeline stage
	ErrKindFormat                           // malformed table line, codepoint, or ordering
	ErrKindState                            // invalid operation for current state
)

var kindNames = [...]string{
	ErrKindDirectoryNotFound: "directory not found",
	ErrKindLocked:            "locked",
	ErrKindToolFailure:       "tool failure",
	ErrKindIO:                "i/o failure",
	ErrKindFormat:            "format",
	ErrKindState:             "state",
}

func (k ErrKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrKind(%d)", int(k))
}

// Error is a typed error with an optional underlying cause.
//
// Detail carries diagnostic text captured verbatim from an external tool
// (standard error, falling back to standard output).
type Error struct {
	Kind   ErrKind
	Msg    string
	Path   string // optional file the error concerns
	Detail string // optional tool diagnostics
	Err    error  // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. This lets callers
// test against the sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations. Compare with errors.Is.
var (
	// ErrDirectoryNotFound indicates the ICU directory layout is missing.
	ErrDirectoryNotFound = &Error{Kind: ErrKindDirectoryNotFound, Msg: "directory not found"}
	// ErrLocked indicates an output artifact is held open by another process.
	ErrLocked = &Error{Kind: ErrKindLocked, Msg: "output file is locked"}
	// ErrToolFailure indicates the external compiler exited with an error.
	ErrToolFailure = &Error{Kind: ErrKindToolFailure, Msg: "external tool failed"}
	// ErrIO indicates a filesystem failure.
	ErrIO = &Error{Kind: ErrKindIO, Msg: "i/o failure"}
	// ErrFormat indicates malformed input text.
	ErrFormat = &Error{Kind: ErrKindFormat, Msg: "malformed input"}
	// ErrState indicates an operation was attempted in the wrong state.
	ErrState = &Error{Kind: ErrKindState, Msg: "invalid state"}
)

// IOError wraps a filesystem error for path.
func IOError(msg, path string, err error) *Error {
	return &Error{Kind: ErrKindIO, Msg: msg, Path: path, Err: err}
}

// FormatError reports malformed input at a 1-based line number.
func FormatError(path string, line int, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	return &Error{Kind: ErrKindFormat, Msg: msg, Path: path}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrKind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}
