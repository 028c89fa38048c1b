// helpers_test.go — shared helpers for the chillpill test suite.
package chillpill

import (
	"os"
	"runtime"
	"testing"
)

// mark returns the Location of its own call site. Used on the same source
// line as a Panic call to record the expected raise location:
//
//	loc := mark(); Panic("boom")
func mark() Location {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		panic("mark: runtime.Caller failed")
	}
	return Location{File: file, Line: line}
}

// rawCatch runs f under a bare deferred recover — the "raw" unwind-catch that
// is NOT a chillpill boundary. Returns the recovered value, or nil if f
// completed normally.
func rawCatch(f func()) (recovered any) {
	defer func() { recovered = recover() }()
	f()
	return nil
}

// unsetenv unsets an environment variable for the duration of the test,
// restoring any prior value on cleanup. Tests using it must not be parallel,
// same as with t.Setenv.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	if v, ok := os.LookupEnv(key); ok {
		t.Cleanup(func() { os.Setenv(key, v) })
	}
	os.Unsetenv(key)
}

// makePanicData builds a record directly, for tests that exercise accessors
// and formatting without going through a boundary.
func makePanicData(payload any, loc *Location, bt Backtrace) *PanicData {
	return &PanicData{payload: payload, location: loc, backtrace: bt}
}
