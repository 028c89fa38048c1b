// predicates.go — minimal, stdlib-aligned queries over error chains.
//
// Scope:
//   - Zero-policy helpers that answer "was this a caught panic?" for code
//     that only sees an error value (for example, an errgroup.Wait result
//     fed by Go in errgroup.go).
//   - Interop-first: use errors.As so traversal works with both single
//     Unwrap() error and multi Unwrap() []error chains.
package chillpill

import "errors"

// AsPanicData reports whether err is, or wraps, a caught-panic record, and
// returns the record when it does.
func AsPanicData(err error) (*PanicData, bool) {
	if err == nil {
		return nil, false
	}
	var pd *PanicData
	if errors.As(err, &pd) {
		return pd, true
	}
	return nil, false
}

// IsPanic reports whether err carries a caught-panic record anywhere in its
// unwrap chain.
func IsPanic(err error) bool {
	_, ok := AsPanicData(err)
	return ok
}
