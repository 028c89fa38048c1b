// backtrace.go — capture-or-disabled backtrace value and policy selection.
//
// Scope:
//   - Backtrace is a value, not a pointer: a zero Backtrace is a valid,
//     disabled backtrace. PanicData always carries one.
//   - Policy: the boundary requests Always / Default / Never; Default defers
//     to the environment convention below, read per raise (not cached) so
//     processes and tests can flip it at runtime.
//
// Environment convention (Default policy):
//   - CHILLPILL_BACKTRACE — library-specific override; "0"/"none"/"off"/
//     "false" disables, anything else enables. Takes precedence.
//   - GOTRACEBACK — the platform-standard traceback knob; "none"/"0"
//     disables, anything else (including unset) enables.
package chillpill

import (
	"os"
	"strconv"
	"strings"
)

// BacktraceStatus describes whether a Backtrace holds captured frames.
type BacktraceStatus uint8

const (
	// BacktraceDisabled means no frames were captured, either because the
	// policy disabled capture or because no hook-invoking raise occurred.
	BacktraceDisabled BacktraceStatus = iota

	// BacktraceCaptured means the Backtrace holds the frames recorded at the
	// moment of the raise.
	BacktraceCaptured
)

// String returns a short human-readable status name.
func (s BacktraceStatus) String() string {
	switch s {
	case BacktraceCaptured:
		return "captured"
	default:
		return "disabled"
	}
}

// Backtrace is a captured call stack from the moment of a raise, or a
// disabled placeholder when capture was off. The zero value is disabled.
type Backtrace struct {
	status BacktraceStatus
	frames Stack
}

// disabledBacktrace returns a Backtrace holding no frames.
func disabledBacktrace() Backtrace { return Backtrace{} }

// capturedBacktrace wraps already-captured frames.
func capturedBacktrace(frames Stack) Backtrace {
	return Backtrace{status: BacktraceCaptured, frames: frames}
}

// Status reports whether the backtrace was captured or disabled.
func (b Backtrace) Status() BacktraceStatus { return b.status }

// Enabled reports whether the backtrace holds captured frames.
func (b Backtrace) Enabled() bool { return b.status == BacktraceCaptured }

// Frames returns a defensive copy of the captured frames, or nil for a
// disabled backtrace. The copy is safe to mutate by callers.
func (b Backtrace) Frames() Stack {
	if len(b.frames) == 0 {
		return nil
	}
	out := make(Stack, len(b.frames))
	copy(out, b.frames)
	return out
}

// String renders the backtrace one frame per line (most recent first), or a
// fixed marker for a disabled backtrace.
func (b Backtrace) String() string {
	if !b.Enabled() {
		return "<disabled backtrace>"
	}
	var sb strings.Builder
	for i, fr := range b.frames {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(fr.Function)
		sb.WriteByte(' ')
		sb.WriteString(fr.File)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(fr.Line))
	}
	return sb.String()
}

// -----------------------------------------------------------------------------
// Policy
// -----------------------------------------------------------------------------

// capturePolicy selects how the reporter handles backtrace capture for one
// boundary invocation.
type capturePolicy uint8

const (
	// captureDefault follows the environment convention.
	captureDefault capturePolicy = iota

	// captureAlways forces capture regardless of environment.
	captureAlways

	// captureNever yields a disabled backtrace regardless of environment.
	captureNever
)

// Recognized environment variables for the Default policy.
const (
	envBacktraceOverride = "CHILLPILL_BACKTRACE"
	envTraceback         = "GOTRACEBACK"
)

// defaultBacktraceEnabled reports whether the Default policy should capture,
// per the environment convention. Read on every raise; the panic path can
// afford two Getenv calls and tests rely on t.Setenv taking effect.
func defaultBacktraceEnabled() bool {
	if v, ok := os.LookupEnv(envBacktraceOverride); ok {
		return backtraceEnvEnabled(v)
	}
	if v, ok := os.LookupEnv(envTraceback); ok {
		return backtraceEnvEnabled(v)
	}
	// Go tracebacks are enabled by default; follow suit.
	return true
}

// backtraceEnvEnabled interprets one environment value as an enable/disable
// switch. Unrecognized values enable capture, matching the permissive
// treatment GOTRACEBACK gives unknown values.
func backtraceEnvEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "none", "off", "false":
		return false
	}
	return true
}
