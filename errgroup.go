// errgroup.go — boundary-guarded goroutine spawning for errgroup users.
package chillpill

import "golang.org/x/sync/errgroup"

// Go runs fn in the errgroup, converting any panic into an error that is
// later returned by errgroup.Group.Wait. The panic surfaces as a *PanicData
// (backtrace capture forced on), so Wait callers can recover the payload and
// raise site via AsPanicData. The intent is a single consistent way to spawn
// errgroup goroutines with panic capture.
func Go(g *errgroup.Group, fn func() error) {
	g.Go(func() error {
		err, pd := CatchForceBacktrace(fn)
		if pd != nil {
			return pd
		}
		return err
	})
}
