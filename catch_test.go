// catch_test.go — verification of the boundary protocol: payload capture,
// location attribution, nesting, policies, and hook-bypassing raises.
package chillpill

import (
	"runtime"
	"slices"
	"strings"
	"testing"
)

func TestCatch_NoPanic(t *testing.T) {
	t.Parallel()

	got, pd := Catch(func() int { return 2 + 2 })
	if pd != nil {
		t.Fatalf("unexpected caught panic: %v", pd)
	}
	if got != 4 {
		t.Fatalf("Catch result = %d, want 4", got)
	}

	s, pd := Catch(func() string { return "it works!" })
	if pd != nil {
		t.Fatalf("unexpected caught panic: %v", pd)
	}
	if s != "it works!" {
		t.Fatalf("Catch result = %q, want %q", s, "it works!")
	}
}

func TestCatch_CatchesBasicPanic(t *testing.T) {
	t.Parallel()

	_, pd := Catch(func() int {
		Panic("uh oh spaghettio")
		return 0
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	s, ok := pd.PayloadAsString()
	if !ok || s != "uh oh spaghettio" {
		t.Fatalf("PayloadAsString = (%q, %v)", s, ok)
	}
}

func TestCatch_CapturesLocation(t *testing.T) {
	t.Parallel()

	var want Location
	_, pd := Catch(func() int {
		want = mark(); Panic("I'm freakin' out!!!")
		return 0
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if s, ok := pd.PayloadAsString(); !ok || s != "I'm freakin' out!!!" {
		t.Fatalf("PayloadAsString = (%q, %v)", s, ok)
	}
	got, ok := pd.Location()
	if !ok {
		t.Fatalf("expected a recorded location")
	}
	if got != want {
		t.Fatalf("location = %v, want %v", got, want)
	}
}

func TestCatch_Panicf(t *testing.T) {
	t.Parallel()

	var want Location
	_, pd := Catch(func() int {
		want = mark(); Panicf("bad state: %d", 7)
		return 0
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if s, ok := pd.PayloadAsString(); !ok || s != "bad state: 7" {
		t.Fatalf("PayloadAsString = (%q, %v)", s, ok)
	}
	if got, ok := pd.Location(); !ok || got != want {
		t.Fatalf("location = %v (ok=%v), want %v", got, ok, want)
	}
}

func TestCatch_NonStringPayload(t *testing.T) {
	t.Parallel()

	_, pd := Catch(func() int {
		Panic([]int{1, 2, 3})
		return 0
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	got, ok := pd.Payload().([]int)
	if !ok || !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("payload = %v (ok=%v), want [1 2 3]", got, ok)
	}
	if _, ok := pd.PayloadAsString(); ok {
		t.Fatalf("PayloadAsString should fail for a slice payload")
	}
}

func TestCatch_NestedCatches(t *testing.T) {
	t.Parallel()

	var loc1, loc2, loc3 Location

	_, pd1 := Catch(func() any {
		_, pd2 := Catch(func() any {
			_, pd3 := Catch(func() any {
				loc3 = mark(); Panic("panic depth 3")
				return nil
			})
			if pd3 == nil {
				t.Errorf("depth 3 not caught")
				return nil
			}
			if s, _ := pd3.PayloadAsString(); s != "panic depth 3" {
				t.Errorf("depth 3 payload = %q", s)
			}
			if got, ok := pd3.Location(); !ok || got != loc3 {
				t.Errorf("depth 3 location = %v (ok=%v), want %v", got, ok, loc3)
			}

			loc2 = mark(); Panic("panic depth 2")
			return nil
		})
		if pd2 == nil {
			t.Errorf("depth 2 not caught")
			return nil
		}
		if s, _ := pd2.PayloadAsString(); s != "panic depth 2" {
			t.Errorf("depth 2 payload = %q", s)
		}
		if got, ok := pd2.Location(); !ok || got != loc2 {
			t.Errorf("depth 2 location = %v (ok=%v), want %v", got, ok, loc2)
		}

		loc1 = mark(); Panic("panic depth 1")
		return nil
	})
	if pd1 == nil {
		t.Fatalf("depth 1 not caught")
	}
	if s, _ := pd1.PayloadAsString(); s != "panic depth 1" {
		t.Fatalf("depth 1 payload = %q", s)
	}
	if got, ok := pd1.Location(); !ok || got != loc1 {
		t.Fatalf("depth 1 location = %v (ok=%v), want %v", got, ok, loc1)
	}
}

func TestCatch_RawRecoverCatchesOnlyPanic(t *testing.T) {
	t.Parallel()

	_, pd := Catch(func() any {
		_ = rawCatch(func() {
			Panic("this panic should not make it to the outer catch")
		})
		return nil
	})
	if pd != nil {
		t.Fatalf("boundary caught a panic that a raw recover already discarded: %v", pd)
	}

	// Ensure the above won't cause future catches to do weird things.
	var want Location
	_, pd = Catch(func() any {
		want = mark(); Panic("unrelated later panic")
		return nil
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if s, _ := pd.PayloadAsString(); s != "unrelated later panic" {
		t.Fatalf("payload = %q", s)
	}
	if got, ok := pd.Location(); !ok || got != want {
		t.Fatalf("location = %v (ok=%v), want %v", got, ok, want)
	}
}

func TestCatch_RawRecoverThenRealPanic(t *testing.T) {
	t.Parallel()

	var want Location
	_, pd := Catch(func() any {
		_ = rawCatch(func() {
			Panic("this panic is irrelevant")
		})

		want = mark(); Panic("actual panic")
		return nil
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if s, _ := pd.PayloadAsString(); s != "actual panic" {
		t.Fatalf("payload = %q", s)
	}
	// The escaping raise wrote last; the discarded one's location is gone.
	if got, ok := pd.Location(); !ok || got != want {
		t.Fatalf("location = %v (ok=%v), want %v", got, ok, want)
	}
}

func TestCatch_BarePanicPayloadOnly(t *testing.T) {
	t.Parallel()

	// A bare panic never reaches the diagnostic hook: the payload is intact
	// but there is no location and no backtrace.
	_, pd := CatchForceBacktrace(func() int {
		panic("bare")
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if s, ok := pd.PayloadAsString(); !ok || s != "bare" {
		t.Fatalf("PayloadAsString = (%q, %v)", s, ok)
	}
	if _, ok := pd.Location(); ok {
		t.Fatalf("bare panic should have no recorded location")
	}
	if pd.Backtrace().Enabled() {
		t.Fatalf("bare panic should have a disabled backtrace")
	}
}

func TestCatch_BarePanicKeepsEarlierRecordedLocation(t *testing.T) {
	t.Parallel()

	// When a helper raise was caught-and-discarded inside the boundary and a
	// later bare panic escapes, the record keeps the earlier (stale)
	// location. Accepted behavior of hook-bypassing raises.
	var stale Location
	_, pd := Catch(func() any {
		_ = rawCatch(func() {
			stale = mark(); Panic("inner discarded")
		})
		panic("outer real")
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if s, _ := pd.PayloadAsString(); s != "outer real" {
		t.Fatalf("payload = %q, want %q", s, "outer real")
	}
	if got, ok := pd.Location(); !ok || got != stale {
		t.Fatalf("location = %v (ok=%v), want the stale %v", got, ok, stale)
	}
}

func TestCatch_PanicNil(t *testing.T) {
	t.Parallel()

	_, pd := Catch(func() any {
		panic(nil)
	})
	if pd == nil {
		t.Fatalf("panic(nil) was not caught")
	}
	if _, ok := pd.Payload().(*runtime.PanicNilError); !ok {
		t.Fatalf("panic(nil) payload = %T, want *runtime.PanicNilError", pd.Payload())
	}
}

func TestCatch_GoexitPopsFrame(t *testing.T) {
	t.Parallel()

	ids := make(chan uint64, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ids <- goid()
		_, _ = Catch(func() int {
			runtime.Goexit()
			return 0
		})
		// unreachable: Goexit terminates the goroutine after running defers
	}()
	id := <-ids
	<-done
	if _, ok := catchStacks.Load(id); ok {
		t.Fatalf("capture stack leaked after runtime.Goexit through a boundary")
	}
}

func TestCatchForceBacktrace_CapturesRaiseSiteFrames(t *testing.T) {
	t.Parallel()

	_, pd := CatchForceBacktrace(func() int {
		Panic("with frames")
		return 0
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	bt := pd.Backtrace()
	if !bt.Enabled() {
		t.Fatalf("forced policy should capture a backtrace")
	}
	frames := bt.Frames()
	if len(frames) == 0 {
		t.Fatalf("captured backtrace has no frames")
	}
	// The raise-path internals are trimmed: the first frame is the closure
	// that called Panic, inside this test.
	if !strings.Contains(frames[0].Function, "TestCatchForceBacktrace_CapturesRaiseSiteFrames") {
		t.Fatalf("first frame = %q, want the raising closure", frames[0].Function)
	}
}

func TestCatchNeverBacktrace_AlwaysDisabled(t *testing.T) {
	t.Setenv(envBacktraceOverride, "1") // would enable the default policy

	_, pd := CatchNeverBacktrace(func() int {
		Panic("silent frames")
		return 0
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if pd.Backtrace().Enabled() {
		t.Fatalf("never policy must yield a disabled backtrace")
	}
}

func TestCatch_DefaultPolicyFollowsEnvironment(t *testing.T) {
	t.Setenv(envBacktraceOverride, "0")

	_, pd := Catch(func() int {
		Panic("no frames wanted")
		return 0
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if pd.Backtrace().Enabled() {
		t.Fatalf("default policy with CHILLPILL_BACKTRACE=0 should not capture")
	}

	t.Setenv(envBacktraceOverride, "1")

	_, pd = Catch(func() int {
		Panic("frames wanted")
		return 0
	})
	if pd == nil {
		t.Fatalf("expected a caught panic")
	}
	if !pd.Backtrace().Enabled() {
		t.Fatalf("default policy with CHILLPILL_BACKTRACE=1 should capture")
	}
}

func TestUnwinding_Detection(t *testing.T) {
	t.Parallel()

	if unwinding() {
		t.Fatalf("unwinding() = true on a calm goroutine")
	}

	sawUnwind := false
	_ = rawCatch(func() {
		defer func() {
			sawUnwind = unwinding()
		}()
		panic("mid-flight")
	})
	if !sawUnwind {
		t.Fatalf("unwinding() = false inside a deferred call during a panic")
	}
}
