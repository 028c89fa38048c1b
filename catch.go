// catch.go — the boundary: run a function, return its panic as a value.
//
// Protocol per invocation:
//  1. Ensure the reporter is installed (one-time, process-wide). If that is
//     refused — globally-first call on an already-panicking goroutine — the
//     boundary itself panics; this condition has no result-channel form.
//  2. Push a capture frame with the requested backtrace policy onto the
//     calling goroutine's stack.
//  3. Run the function under a deferred recover.
//  4. Pop the frame unconditionally (success or panic path).
//  5. On a caught panic, assemble PanicData from the recovered payload plus
//     the popped frame's location and backtrace.
//
// The push/pop bracketing around the user function is what makes nesting
// work: each boundary's popped frame corresponds exactly to its own
// invocation, however many boundaries are active on the same goroutine.
package chillpill

// Catch invokes fn, capturing the payload and raise location of a panic if
// one occurs and keeping it out of the diagnostic output.
//
// On success the function's result is returned with a nil *PanicData. On a
// caught panic the result is fn's zero value and the record describes the
// panic; backtrace capture follows the environment convention (see doc.go).
//
// fn must leave any state it mutates safe to observe if it is interrupted by
// a panic; the boundary cannot verify this.
//
// Catch panics (rather than returning a record) if it is the first boundary
// call in the whole process and the calling goroutine is already unwinding.
func Catch[R any](fn func() R) (R, *PanicData) {
	return catchInner(fn, captureDefault)
}

// CatchForceBacktrace is Catch with backtrace capture forced on, regardless
// of environment.
func CatchForceBacktrace[R any](fn func() R) (R, *PanicData) {
	return catchInner(fn, captureAlways)
}

// CatchNeverBacktrace is Catch with backtrace capture forced off; the caught
// record always carries a disabled backtrace.
func CatchNeverBacktrace[R any](fn func() R) (R, *PanicData) {
	return catchInner(fn, captureNever)
}

// catchInner implements the boundary protocol shared by all three variants.
func catchInner[R any](fn func() R, policy capturePolicy) (result R, caught *PanicData) {
	if err := ensureReporter(); err != nil {
		panic(err)
	}

	pushFrame(policy)
	defer func() {
		// Pop before recover so the frame comes off on every path, including
		// a runtime.Goexit racing through the deferred chain.
		frame := popFrame()
		if r := recover(); r != nil {
			caught = &PanicData{
				payload:   r,
				location:  frame.location,
				backtrace: frame.backtrace,
			}
		}
	}()

	result = fn()
	return result, nil
}
