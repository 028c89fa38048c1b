// raise.go — hook-invoking raising helpers.
//
// The Go runtime offers no callback when a panic begins propagating, so the
// location and backtrace pipeline starts here instead: these helpers resolve
// the raise site, hand it to the hook machinery, and then panic natively. A
// bare panic(...) skips all of this and reaches a boundary with payload only
// (see the limitation notes in doc.go).
package chillpill

import (
	"fmt"
	"runtime"
)

// Panic raises a panic with the given payload through the diagnostic hook,
// recording the caller's source location on the way.
//
// Use this instead of the builtin panic when the payload should arrive at a
// Catch boundary with its location and backtrace attached.
func Panic(payload any) {
	raise(payload, raiseLocation())
}

// Panicf is Panic with a fmt.Sprintf-formatted string payload. The payload
// satisfies PayloadAsString on the caught record.
func Panicf(format string, args ...any) {
	raise(fmt.Sprintf(format, args...), raiseLocation())
}

// raise invokes the hook machinery and then panics with the payload. Kept
// separate so Panic and Panicf sit at identical depth above the hook.
func raise(payload any, loc *Location) {
	invokeHook(PanicInfo{Payload: payload, Location: loc})
	panic(payload)
}

// raiseLocation resolves the source position of the caller of Panic/Panicf.
// Skip accounting: 0 = this function, 1 = Panic/Panicf, 2 = the raise site.
func raiseLocation() *Location {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		// Rare (stack information unavailable); the raise proceeds with no
		// recorded position.
		return nil
	}
	return &Location{File: file, Line: line}
}
