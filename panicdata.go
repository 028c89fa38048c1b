// panicdata.go — the caught-panic record and its payload accessors.
//
// Scope (tiny core):
//   - PanicData is passive data: payload, optional raise location, and a
//     capture-or-disabled backtrace. Immutable once constructed; only the
//     boundary constructs it.
//   - Payload inspection stays minimal: type assertions by the caller, plus
//     two string conveniences mirroring the common "panic with a message"
//     case.
//
// Interop:
//   - PanicData implements error, so a caught panic can flow through
//     error-returning plumbing (see errgroup.go).
//   - When the payload itself is an error, Unwrap exposes it so errors.Is/As
//     observe the original value.
package chillpill

import (
	"fmt"
	"strconv"
)

// Location is the source position of a raise.
type Location struct {
	// File is the source file path as reported by the runtime.
	File string

	// Line is the 1-based line number.
	Line int

	// Col is the 1-based column number. Always 0 in the current
	// implementation: the Go runtime does not expose column information.
	Col int
}

// String renders "file:line" (or "file:line:col" when a column is known).
func (l Location) String() string {
	s := l.File + ":" + strconv.Itoa(l.Line)
	if l.Col > 0 {
		s += ":" + strconv.Itoa(l.Col)
	}
	return s
}

// PanicData describes one panic caught by a boundary.
//
// The location is absent only when the escaping panic never went through the
// raising helpers (a bare panic), or when the runtime could not resolve the
// raise site. The backtrace may be disabled depending on the boundary's
// policy and the environment convention.
type PanicData struct {
	payload   any
	location  *Location
	backtrace Backtrace
}

// Payload returns the value the panic was raised with. Callers inspect it by
// type assertion to recover the original concrete type.
func (d *PanicData) Payload() any { return d.payload }

// Location returns the recorded raise site. ok is false when no location was
// recorded; see the PanicData doc for when that happens.
func (d *PanicData) Location() (loc Location, ok bool) {
	if d.location == nil {
		return Location{}, false
	}
	return *d.location, true
}

// Backtrace returns the backtrace recorded for the caught panic; it may be
// disabled.
func (d *PanicData) Backtrace() Backtrace { return d.backtrace }

// PayloadAsString returns the payload when it is a plain string message.
func (d *PanicData) PayloadAsString() (string, bool) {
	s, ok := d.payload.(string)
	return s, ok
}

// PayloadIntoString extracts a plain string payload, or hands the record back
// unchanged when the payload is not a string.
//
// The two return values are mutually exclusive: (msg, nil) on success,
// ("", d) on failure.
func (d *PanicData) PayloadIntoString() (string, *PanicData) {
	if s, ok := d.payload.(string); ok {
		return s, nil
	}
	return "", d
}

// Unwrap exposes an error payload for errors.Is/As traversal. Returns nil
// for non-error payloads.
func (d *PanicData) Unwrap() error {
	if err, ok := d.payload.(error); ok {
		return err
	}
	return nil
}

// Error renders the concise one-line form: the payload, plus the raise
// location when one was recorded.
func (d *PanicData) Error() string {
	if d.location != nil {
		return fmt.Sprintf("panic: %v (%s)", d.payload, d.location)
	}
	return fmt.Sprintf("panic: %v", d.payload)
}
