// stack.go — raise-site stack capture for chillpill core.
//
// Design goals:
//   - Interop & correctness: use runtime.Callers + runtime.CallersFrames for
//     accurate frame resolution (handles inlining correctly).
//   - Minimal policy: no global toggles here; policy selection lives in
//     backtrace.go.
//   - Pragmatic performance: bounded depth; capture happens only on the panic
//     path, and only when the active policy asks for it.
//
// References:
//   - runtime.Callers / CallersFrames docs and example
//   - Prefer CallersFrames over FuncForPC for inlined frames
//   - Callers skip semantics (0 = Callers, 1 = its caller)
package chillpill

import (
	"runtime"
	"strings"
)

// Frame represents a single call site in a captured backtrace.
type Frame struct {
	PC       uintptr // program counter of the call return
	File     string  // absolute file path (as provided by runtime)
	Line     int     // line number
	Function string  // fully-qualified function name (pkg.Func or method)
	// Note: we intentionally omit "Inlined" because runtime.Frame already
	// expands inlined frames via CallersFrames; callers rarely need the bit.
}

// Stack is a slice of Frames from most recent call outward.
type Stack []Frame

const (
	// defaultMaxDepth is a conservative bound that captures meaningful
	// context without excessive work on the panic path.
	defaultMaxDepth = 64
)

// raisePathFuncs names the internal functions between a raise site and the
// point where the backtrace is captured. Frames belonging to these functions
// are trimmed so a captured backtrace begins at the user's raise site.
//
// Matching by name (rather than a fixed skip count) keeps the trim correct
// even when the compiler inlines part of the chain.
var raisePathFuncs = map[string]struct{}{
	"captureRaiseBacktrace": {},
	"reporterHook":          {},
	"invokeHook":            {},
	"raise":                 {},
	"Panic":                 {},
	"Panicf":                {},
}

// captureRaiseBacktrace captures the raising goroutine's stack, trimmed so
// that the first frame is the raise site (the caller of Panic/Panicf).
// Called from the reporter while the raise is in progress, on the raising
// goroutine, so the raise site is still on the stack.
func captureRaiseBacktrace() Backtrace {
	frames := captureStack(0, defaultMaxDepth)

	// Drop the internal raise-path frames from the top.
	for len(frames) > 0 && isRaisePathFrame(frames[0].Function) {
		frames = frames[1:]
	}
	if len(frames) == 0 {
		return disabledBacktrace()
	}
	return capturedBacktrace(frames)
}

// isRaisePathFrame reports whether a fully-qualified function name belongs to
// the internal raise path of this package.
func isRaisePathFrame(fn string) bool {
	dot := strings.LastIndexByte(fn, '.')
	if dot < 0 || !strings.HasSuffix(fn[:dot], "chillpill") {
		return false
	}
	_, ok := raisePathFuncs[fn[dot+1:]]
	return ok
}

// captureStack captures up to maxDepth frames, skipping 'skip' initial frames
// beyond the capture machinery itself. It returns a resolved Stack with file,
// line, and function names.
//
// Notes:
//   - We allocate a small PC buffer sized by maxDepth and let Callers trim it.
//   - We always reslice to the number of PCs actually written.
//   - We resolve frames via CallersFrames to handle inlined calls correctly.
func captureStack(skip, maxDepth int) Stack {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	// Skip accounting:
	//   • +1 for runtime.Callers itself
	//   • +1 for captureStack
	// Therefore we add +2 to place the first recorded frame at the caller of
	// captureStack. Any extra 'skip' provided by callers is applied on top.
	pc := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}
	pc = pc[:n]

	frames := runtime.CallersFrames(pc)
	out := make(Stack, 0, n)

	for {
		fr, more := frames.Next()
		out = append(out, Frame{
			PC:       fr.PC,
			File:     fr.File,
			Line:     fr.Line,
			Function: fr.Function,
		})
		if !more {
			break
		}
	}
	return out
}
