// doc.go — package documentation for chillpill
//
// Package chillpill runs a function and, if that function panics, hands the
// panic back to the caller as an ordinary value: the payload, the source
// location of the raise, and an optional backtrace. It is designed to be:
//   - Ergonomic at call sites (small surface, clear semantics)
//   - Interoperable with the stdlib (errors.Is/As, fmt.Formatter)
//   - Policy-free (no retry/restart/logging rules in core)
//
// # The Boundary
//
// The entry points are three generic boundary functions differing only in
// their backtrace policy:
//
//	val, pd := chillpill.Catch(func() int { return 2 + 2 })
//	// val == 4, pd == nil
//
//	_, pd = chillpill.Catch(func() int { chillpill.Panic("boom"); return 0 })
//	// pd != nil; pd.PayloadAsString() == ("boom", true)
//
//   - Catch: backtrace capture follows the environment convention (below).
//   - CatchForceBacktrace: always captures a backtrace.
//   - CatchNeverBacktrace: never captures a backtrace.
//
// A boundary absorbs any panic raised during the function, including panics
// from a bare panic(...) call. Boundaries nest freely and may run concurrently
// on any number of goroutines; each caught panic is attributed to exactly the
// boundary it escaped to, on the goroutine it was raised on.
//
// # The Raising Helpers
//
// The Go runtime offers no hook that fires when a panic begins propagating, so
// source locations are captured at the raise site instead. Raise through the
// package helpers to get location and backtrace reporting:
//
//	chillpill.Panic("boom")
//	chillpill.Panicf("bad state: %d", n)
//
// A bare panic(...) is still caught by a boundary and its payload is reported
// correctly, but it never reaches the diagnostic hook: the resulting
// PanicData carries no location (or a stale one, if an earlier helper-raised
// panic was caught and discarded inside the same boundary). This mirrors the
// behavior of raise mechanisms that bypass a panic hook and is a documented
// limitation, not a defect.
//
// # The Diagnostic Hook
//
// The package maintains a single process-wide diagnostic hook, invoked on the
// raising goroutine whenever a helper-raised panic begins propagating. The
// default hook prints the payload and location to stderr. Replace it with
// SetPanicHook to route diagnostics elsewhere.
//
// When a panic is raised inside an active boundary, the hook machinery
// records location and backtrace for that boundary and produces no diagnostic
// output — caught panics are silent. Panics raised on goroutines with no
// active boundary are delegated to the installed diagnostic hook unchanged,
// so unrelated code keeps its behavior.
//
// The very first boundary call in the process performs a one-time
// installation of the internal reporter. That first call must not happen on a
// goroutine that is already unwinding from a panic; Catch panics immediately
// in that case rather than returning a value. Later calls are unaffected.
//
// # Backtrace Environment Convention
//
// Under the default policy, backtrace capture honors two variables, checked
// per raise:
//
//   - CHILLPILL_BACKTRACE: library-specific override. "0", "none", "off", or
//     "false" disables capture; any other value enables it.
//   - GOTRACEBACK: the platform-standard traceback knob. "none" or "0"
//     disables capture; otherwise capture is enabled (Go tracebacks are on by
//     default).
//
// CHILLPILL_BACKTRACE takes precedence when both are set.
//
// # Caller Obligations
//
// The function given to a boundary must tolerate being interrupted
// mid-execution: any state it was mutating must remain safe to observe after
// the panic is caught. The boundary cannot verify this; it is a caller
// obligation, as with any recover-based scheme.
//
// # Performance Notes
//
//   - Entering a boundary parses the goroutine ID from the runtime.Stack
//     header (about a microsecond) and touches one sync.Map entry owned by
//     the calling goroutine. No locks are held across the user function.
//   - Backtrace capture costs only on the panic path, and only when the
//     policy asks for it.
//   - The success path performs no allocation beyond the frame bookkeeping.
//
// See the package tests for runnable demonstrations.
package chillpill
