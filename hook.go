// hook.go — the process-wide diagnostic hook and the chillpill reporter.
//
// Go has no runtime panic hook, so this package owns the registry: a single
// settable diagnostic hook slot plus a reporter that is installed in front of
// it, once, on the first boundary call in the process. After installation,
// every helper-raised panic flows through the reporter:
//
//   - raising goroutine has an active boundary → record location, capture a
//     backtrace per the top frame's policy, and stay silent (the boundary
//     will surface the panic as a value; no diagnostic output).
//   - no active boundary → delegate to the diagnostic hook unchanged, so
//     unrelated code keeps its behavior and its output.
//
// Installation is permanent: the installed flag is set once and never unset,
// so no teardown race exists. SetPanicHook swaps the delegate slot, never the
// reporter, which is why hooks installed before or after the first boundary
// call coexist with this package.
package chillpill

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
)

// PanicInfo is what a diagnostic hook receives for each helper-raised panic.
type PanicInfo struct {
	// Payload is the value the panic was raised with.
	Payload any

	// Location is the raise site, or nil if it could not be resolved.
	Location *Location
}

// panicWriter is where the default diagnostic hook writes. Variable so tests
// can observe output without touching os.Stderr.
var panicWriter io.Writer = os.Stderr

// hookFunc is the stored form of a diagnostic hook.
type hookFunc func(PanicInfo)

// diagHook holds the current diagnostic hook (a hookFunc). Empty means the
// printing default is in effect.
var diagHook atomic.Value

// Reporter installation state. installOnce guarantees exactly one goroutine
// performs the installation even when many boundaries race on first use;
// reporterInstalled is the read-many fast path and is never unset.
var (
	installOnce       sync.Once
	reporterInstalled atomic.Bool
)

// errFirstCatchWhileUnwinding is raised (not returned) by the boundary when
// the globally-first Catch happens on a goroutine that is mid-panic.
var errFirstCatchWhileUnwinding = errors.New(
	"chillpill: the first Catch call in the process must not happen on an already-panicking goroutine")

// SetPanicHook replaces the process-wide diagnostic hook and returns the
// previous one. Passing nil restores the printing default.
//
// The hook fires on the raising goroutine for every helper-raised panic that
// is not destined for an active boundary. It must not itself raise.
//
// Replacing the hook while a boundary call is active anywhere in the process
// is safe with respect to this package's bookkeeping, but the obligation to
// coordinate hook ownership between unrelated parties remains the caller's.
func SetPanicHook(fn func(PanicInfo)) (prev func(PanicInfo)) {
	var next hookFunc = defaultPanicHook
	if fn != nil {
		next = fn
	}
	old := diagHook.Swap(next)
	if old == nil {
		return defaultPanicHook
	}
	return old.(hookFunc)
}

// currentHook returns the active diagnostic hook, defaulting to the printing
// hook before any SetPanicHook call.
func currentHook() hookFunc {
	if v := diagHook.Load(); v != nil {
		return v.(hookFunc)
	}
	return defaultPanicHook
}

// defaultPanicHook prints one diagnostic line per uncaught helper-raised
// panic, in the spirit of the runtime's own "panic: ..." output.
func defaultPanicHook(info PanicInfo) {
	if info.Location != nil {
		fmt.Fprintf(panicWriter, "panic: %v [%s]\n", info.Payload, info.Location)
		return
	}
	fmt.Fprintf(panicWriter, "panic: %v\n", info.Payload)
}

// ensureReporter performs the one-time reporter installation.
//
// Only calls that can still observe an uninstalled reporter are constrained:
// if the calling goroutine is already unwinding, installing from mid-panic is
// refused. Once installation has happened the fast path never re-checks.
func ensureReporter() error {
	if reporterInstalled.Load() {
		return nil
	}
	if unwinding() {
		return errFirstCatchWhileUnwinding
	}
	installOnce.Do(func() {
		reporterInstalled.Store(true)
	})
	return nil
}

// invokeHook routes one raise through the reporter when installed, or
// straight to the diagnostic hook before first boundary use.
func invokeHook(info PanicInfo) {
	if reporterInstalled.Load() {
		reporterHook(info)
		return
	}
	currentHook()(info)
}

// reporterHook is the replacement hook: it attributes the raise to the
// calling goroutine's innermost active boundary, or delegates when there is
// none. It deliberately does not delegate in the record branch — that is
// what keeps caught panics out of the diagnostic output.
func reporterHook(info PanicInfo) {
	top := topFrame()
	if top == nil {
		currentHook()(info)
		return
	}

	// Last write wins: an earlier raise that was caught and discarded below
	// this boundary may have written here already, and the raise that
	// actually escapes overwrites it.
	top.location = info.Location

	switch top.policy {
	case captureAlways:
		top.backtrace = captureRaiseBacktrace()
	case captureNever:
		top.backtrace = disabledBacktrace()
	default:
		if defaultBacktraceEnabled() {
			top.backtrace = captureRaiseBacktrace()
		} else {
			top.backtrace = disabledBacktrace()
		}
	}
}

// unwinding reports whether the calling goroutine is currently propagating a
// panic, detected by the presence of runtime.gopanic on the stack. Deferred
// functions run above gopanic, so this is true exactly while a panic is in
// flight and recover has not yet run.
func unwinding() bool {
	const batch = 64
	pcs := make([]uintptr, batch)
	skip := 1
	for {
		n := runtime.Callers(skip, pcs)
		if n == 0 {
			return false
		}
		frames := runtime.CallersFrames(pcs[:n])
		for {
			fr, more := frames.Next()
			if fr.Function == "runtime.gopanic" {
				return true
			}
			if !more {
				break
			}
		}
		if n < batch {
			return false
		}
		skip += n
	}
}
