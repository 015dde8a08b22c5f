// Package errs provides the unified error type used across all of RelCore.
//
// The core (catalog, engine, join) raises the four relational kinds:
// validation, constraint, not found and duplicate table. Collaborators
// (parser, snapshot backends, HTTP API) add their own kinds and wrap native
// errors into *errs.Error before returning them. Callers use the Is*
// predicates to handle errors without importing driver-specific packages.
//
// Usage:
//
//	// In the engine, report the offending column and value:
//	return errs.New(errs.ErrKindConstraint, "duplicate value").
//	    WithTable(t.Name()).WithColumn(col).WithValue(v)
//
//	// In a handler, check the error kind:
//	if errs.IsConstraint(err) {
//	    http.Error(w, err.Error(), http.StatusConflict)
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindValidation               // row or schema shape violation
	ErrKindConstraint               // primary key / unique collision
	ErrKindNotFound                 // unknown table, missing snapshot
	ErrKindDuplicateTable           // table name already registered
	ErrKindInvalidInput             // unparsable command or malformed request
	ErrKindStorage                  // snapshot backend operation failed
	ErrKindConnectionFailed         // cannot reach the backend
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindPermissionDenied         // access denied / auth failure
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindValidation:
		return "validation"
	case ErrKindConstraint:
		return "constraint"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindDuplicateTable:
		return "duplicate_table"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindStorage:
		return "storage"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all RelCore subsystems.
// Table, Column and Value identify what was rejected; any of them may be
// empty when it does not apply.
type Error struct {
	Kind    ErrKind
	Message string
	Table   string
	Column  string
	Value   any
	Cause   error // original backend-level error, preserved for logging
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Kind, e.Message)

	var attrs []string
	if e.Table != "" {
		attrs = append(attrs, "table="+e.Table)
	}
	if e.Column != "" {
		attrs = append(attrs, "column="+e.Column)
	}
	if e.Value != nil {
		attrs = append(attrs, fmt.Sprintf("value=%v", e.Value))
	}
	if len(attrs) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(attrs, " "))
		sb.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithTable sets the offending table and returns e for chaining.
func (e *Error) WithTable(table string) *Error {
	e.Table = table
	return e
}

// WithColumn sets the offending column and returns e for chaining.
func (e *Error) WithColumn(column string) *Error {
	e.Column = column
	return e
}

// WithValue sets the offending value and returns e for chaining.
func (e *Error) WithValue(v any) *Error {
	e.Value = v
	return e
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// NotFound reports an unregistered table.
func NotFound(table string) *Error {
	return New(ErrKindNotFound, "table does not exist").WithTable(table)
}

// DuplicateTable reports a createTable on a registered name.
func DuplicateTable(table string) *Error {
	return New(ErrKindDuplicateTable, "table already exists").WithTable(table)
}

// --- Predicates ---

// IsValidation reports whether err is a row or schema validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == ErrKindValidation
}

// IsConstraint reports whether err is a primary key or unique collision.
func IsConstraint(err error) bool {
	return KindOf(err) == ErrKindConstraint
}

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsDuplicateTable reports whether err was raised for an existing table name.
func IsDuplicateTable(err error) bool {
	return KindOf(err) == ErrKindDuplicateTable
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsStorage reports whether err is a snapshot backend failure.
func IsStorage(err error) bool {
	return KindOf(err) == ErrKindStorage
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
