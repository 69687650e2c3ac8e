// Package socerr defines the error kinds raised by the synthesis core.
//
// Every failure aborts the generation run. Callers classify errors with
// errors.Is against the Err* sentinels and read the offending entity names
// from *Error when they need them.
package socerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeMismatch reports a construction-time violation (bad name,
	// zero length, malformed numeric text, unknown endpoint kind).
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrOverlap reports overlapping or out-of-region address intervals.
	ErrOverlap = errors.New("overlap")
	// ErrNoSpace reports a component or bank that cannot be placed.
	ErrNoSpace = errors.New("no space")
	// ErrConfig reports invalid configuration: power-of-two violations,
	// duplicate names, incompatible bus, node registered before its parent.
	ErrConfig = errors.New("config error")
	// ErrRouting reports a missing or full named target, or a source with
	// no compatible automatic target.
	ErrRouting = errors.New("routing error")
)

// Error is a classified failure naming the entities involved.
type Error struct {
	Kind  error    // one of the Err* sentinels
	Op    string   // operation that detected the failure, e.g. "allocate"
	Names []string // offending entities
	Msg   string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

// Unwrap exposes the kind so errors.Is(err, ErrOverlap) works.
func (e *Error) Unwrap() error { return e.Kind }

// New builds an *Error of the given kind. names are the offending entities.
func New(kind error, op string, names []string, format string, args ...any) *Error {
	return &Error{
		Kind:  kind,
		Op:    op,
		Names: names,
		Msg:   fmt.Sprintf(format, args...),
	}
}

// Names returns the offending entity names carried by err, or nil.
func Names(err error) []string {
	var se *Error
	if errors.As(err, &se) {
		return se.Names
	}
	return nil
}
