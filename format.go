// format.go — fmt.Formatter implementation for PanicData.
//
// Behavior:
//
//	%s, %v   → concise string (Error()).
//	%+v      → verbose, structured multi-line format:
//	             payload: <payload (%+v for nested detail)>
//	             location: file.go:123
//	             backtrace:
//	               funcA file.go:123
//	               funcB other.go:45
//	%q       → quoted Error().
//
// Rationale:
//   - Keep core free of logging/JSON policy; only fmt formatting.
//   - Recurse into the payload with %+v so error payloads render their own
//     verbose detail.
//   - Omit the location and backtrace sections when absent/disabled rather
//     than printing placeholders.
package chillpill

import (
	"fmt"
	"io"
)

func (d *PanicData) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			d.formatVerbose(s)
			return
		}
		d.formatConcise(s)
	case 's':
		d.formatConcise(s)
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", d.Error())
	default:
		d.formatConcise(s)
	}
}

// formatConcise writes the one-line message (delegates to Error()).
func (d *PanicData) formatConcise(w io.Writer) {
	// ignore write errors in formatting paths
	_, _ = io.WriteString(w, d.Error())
}

// formatVerbose writes the structured multi-line representation.
func (d *PanicData) formatVerbose(w io.Writer) {
	_, _ = fmt.Fprintf(w, "payload: %+v", d.payload)

	if d.location != nil {
		_, _ = fmt.Fprintf(w, "\nlocation: %s", d.location)
	}

	if d.backtrace.Enabled() {
		_, _ = io.WriteString(w, "\nbacktrace:")
		for _, fr := range d.backtrace.frames {
			// Function names are fully-qualified (pkg.Func / recv.method).
			// File paths come from runtime; we print as-is for accuracy.
			_, _ = fmt.Fprintf(w, "\n  %s %s:%d", fr.Function, fr.File, fr.Line)
		}
	}
}
