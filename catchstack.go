// catchstack.go — per-goroutine capture stacks for chillpill core.
//
// Each goroutine with at least one active boundary owns a stack of catch
// frames, one frame per active Catch call (nested calls grow the stack). The
// stack lets the reporter, which fires mid-raise on the raising goroutine,
// smuggle the panic location and backtrace back to exactly the boundary that
// will catch the panic: the topmost frame at the moment the panic escapes is
// always the innermost boundary still in flight.
//
// Frames caught and discarded below a boundary (by a raw recover rather than
// Catch) may leave an irrelevant location in the top frame; that is fine,
// because the boundary only reads the frame if a panic actually escapes to
// it — and the escaping panic was the last one to write, unless it bypassed
// the hook entirely (documented limitation; see doc.go).
//
// Storage: Go has no goroutine-local storage, so stacks live in a single
// process-wide sync.Map keyed by goroutine ID. Every entry is created,
// mutated, and deleted only by its owner goroutine (the reporter runs on the
// raising goroutine), so no further synchronization is needed. Entries are
// removed as soon as the owning goroutine's stack empties; goroutines are
// ephemeral and must not leak registry entries.
package chillpill

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// catchFrame carries the state of one active boundary invocation: the policy
// supplied by the boundary, and the location/backtrace the reporter fills in
// if a panic passes through while this frame is on top.
type catchFrame struct {
	policy    capturePolicy
	location  *Location // nil until a hook-invoking raise occurs
	backtrace Backtrace // disabled until the reporter captures one
}

// catchStack is one goroutine's LIFO of catch frames. Never shared: only the
// owner goroutine reads or writes it.
type catchStack struct {
	frames []catchFrame
}

// catchStacks maps goroutine ID → *catchStack for every goroutine that
// currently has at least one active boundary.
var catchStacks sync.Map // uint64 → *catchStack

// pushFrame appends a fresh frame with the given policy to the calling
// goroutine's stack, creating the stack on first use.
func pushFrame(policy capturePolicy) {
	id := goid()
	var cs *catchStack
	if v, ok := catchStacks.Load(id); ok {
		cs = v.(*catchStack)
	} else {
		cs = &catchStack{}
		catchStacks.Store(id, cs)
	}
	cs.frames = append(cs.frames, catchFrame{policy: policy})
}

// popFrame removes and returns the top frame of the calling goroutine's
// stack, deleting the registry entry when the stack empties.
//
// An empty or missing stack here means the boundary's push/pop bracketing is
// broken; that is an internal bug, not a recoverable condition.
func popFrame() catchFrame {
	id := goid()
	v, ok := catchStacks.Load(id)
	if !ok {
		panic("chillpill: internal error: popFrame on a goroutine with no capture stack")
	}
	cs := v.(*catchStack)
	n := len(cs.frames)
	if n == 0 {
		panic("chillpill: internal error: popFrame on an empty capture stack")
	}
	top := cs.frames[n-1]
	cs.frames = cs.frames[:n-1]
	if len(cs.frames) == 0 {
		catchStacks.Delete(id)
	}
	return top
}

// topFrame returns a pointer to the calling goroutine's top frame for
// in-place mutation by the reporter, or nil when the goroutine has no active
// boundary. The pointer stays valid because only the owner goroutine can
// push or pop, and it is busy raising while the reporter runs.
func topFrame() *catchFrame {
	v, ok := catchStacks.Load(goid())
	if !ok {
		return nil
	}
	cs := v.(*catchStack)
	if len(cs.frames) == 0 {
		return nil
	}
	return &cs.frames[len(cs.frames)-1]
}

// goidPrefix is the fixed header prefix of a runtime.Stack dump.
var goidPrefix = []byte("goroutine ")

// goid returns the calling goroutine's ID, parsed from the runtime.Stack
// header line ("goroutine 123 [running]:"). There is no supported API for
// this; the header format has been stable across every Go release and the
// parse is a bounded, allocation-light operation (~1µs).
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	if !bytes.HasPrefix(b, goidPrefix) {
		panic("chillpill: internal error: unexpected runtime.Stack header")
	}
	b = b[len(goidPrefix):]
	sp := bytes.IndexByte(b, ' ')
	if sp <= 0 {
		panic("chillpill: internal error: unexpected runtime.Stack header")
	}
	id, err := strconv.ParseUint(string(b[:sp]), 10, 64)
	if err != nil {
		panic("chillpill: internal error: unparsable goroutine ID: " + err.Error())
	}
	return id
}
