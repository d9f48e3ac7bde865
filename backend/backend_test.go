package backend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	nativelink "github.com/wippyai/native-link"
	lerrors "github.com/wippyai/native-link/errors"
)

func elfInvocation(lib string) nativelink.Invocation {
	return nativelink.Invocation{
		Strategy: "elf",
		Flavor:   nativelink.FlavorGNU,
		Args:     []string{"-lc", "--shared", "-l" + lib, "/build/out/mylib.o", "-o", "/build/out/libmylib.so"},
		Output:   "/build/out/libmylib.so",
	}
}

type funcBackend struct {
	fn func(ctx context.Context, inv nativelink.Invocation) (nativelink.Result, error)
}

func (funcBackend) Name() string { return "func" }

func (b funcBackend) Link(ctx context.Context, inv nativelink.Invocation) (nativelink.Result, error) {
	return b.fn(ctx, inv)
}

func TestInvoke_Recorder(t *testing.T) {
	rec := NewRecorder()
	inv := elfInvocation("m")

	res, err := Invoke(context.Background(), rec, inv)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !res.Success || res.Output != inv.Output || res.Strategy != "elf" {
		t.Errorf("Result = %+v", res)
	}

	last, ok := rec.Last()
	if !ok {
		t.Fatal("no invocation recorded")
	}
	if strings.Join(last.Argv(), " ") != strings.Join(inv.Argv(), " ") {
		t.Errorf("recorded %q, want %q", last.Argv(), inv.Argv())
	}

	rec.Reset()
	if _, ok := rec.Last(); ok {
		t.Error("Reset should clear recorded invocations")
	}
}

func TestInvoke_NilBackend(t *testing.T) {
	_, err := Invoke(context.Background(), nil, elfInvocation("m"))
	if !errors.Is(err, &lerrors.Error{Phase: lerrors.PhaseBackend, Kind: lerrors.KindNotInitialized}) {
		t.Errorf("err = %v, want backend not initialized", err)
	}
}

func TestInvoke_BackendGetsPrivateCopy(t *testing.T) {
	inv := elfInvocation("m")
	b := funcBackend{fn: func(_ context.Context, got nativelink.Invocation) (nativelink.Result, error) {
		got.Args[0] = "clobbered"
		return nativelink.Result{Success: true}, nil
	}}

	res, err := Invoke(context.Background(), b, inv)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if inv.Args[0] != "-lc" {
		t.Errorf("caller's arguments were modified: %q", inv.Args)
	}
	if res.Strategy != "elf" || res.Output != inv.Output {
		t.Errorf("Invoke should fill Strategy and Output: %+v", res)
	}
}

func TestInvoke_FailureIsAResult(t *testing.T) {
	rec := NewRecorder()
	rec.Fail = func(inv nativelink.Invocation) (string, bool) {
		for _, a := range inv.Args {
			if a == "-lmissing" {
				return "ld.lld: error: unable to find library -lmissing", true
			}
		}
		return "", false
	}

	res, err := Invoke(context.Background(), rec, elfInvocation("missing"))
	if err != nil {
		t.Fatalf("link failure must not be an error: %v", err)
	}
	if res.Success || !strings.Contains(res.Diagnostics, "-lmissing") {
		t.Errorf("Result = %+v", res)
	}
	if !errors.Is(res.Err(), lerrors.ErrLinkFailed) {
		t.Errorf("Result.Err() = %v, want ErrLinkFailed", res.Err())
	}

	// the next call still works
	res, err = Invoke(context.Background(), rec, elfInvocation("m"))
	if err != nil || !res.Success {
		t.Errorf("follow-up link: %+v, %v", res, err)
	}
	if len(rec.Calls()) != 2 {
		t.Errorf("recorded %d calls, want 2", len(rec.Calls()))
	}
}

func TestInvoke_PanicBecomesFailedResult(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	b := funcBackend{fn: func(context.Context, nativelink.Invocation) (nativelink.Result, error) {
		panic("relocation table overflow")
	}}

	res, err := Invoke(context.Background(), b, elfInvocation("m"))
	if err != nil {
		t.Fatalf("panic must be reported as a result: %v", err)
	}
	if res.Success {
		t.Error("panicking backend reported success")
	}
	if !strings.Contains(res.Diagnostics, "relocation table overflow") {
		t.Errorf("Diagnostics = %q", res.Diagnostics)
	}
	if logs.FilterMessage("backend panicked").Len() != 1 {
		t.Errorf("expected one panic log entry, got %d", logs.Len())
	}

	// the lock was released
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Invoke(context.Background(), NewRecorder(), elfInvocation("m"))
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("backend lock still held after panic")
	}
}

func TestInvoke_Serialized(t *testing.T) {
	var active, maxActive int32
	b := funcBackend{fn: func(_ context.Context, inv nativelink.Invocation) (nativelink.Result, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nativelink.Result{Success: true, Diagnostics: strings.Join(inv.Args, " ")}, nil
	}}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]nativelink.Result, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lib := string(rune('a' + i))
			res, err := Invoke(context.Background(), b, elfInvocation(lib))
			if err != nil {
				t.Errorf("Invoke: %v", err)
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("backend ran %d calls concurrently, want 1", maxActive)
	}
	for i, res := range results {
		want := "-l" + string(rune('a'+i))
		if !strings.Contains(res.Diagnostics, want+" ") {
			t.Errorf("call %d saw arguments %q, want %s", i, res.Diagnostics, want)
		}
	}
}

func TestInvoke_BackendError(t *testing.T) {
	want := lerrors.BackendNotFound("exec", "ld.lld", errors.New("not found"))
	b := funcBackend{fn: func(context.Context, nativelink.Invocation) (nativelink.Result, error) {
		return nativelink.Result{}, want
	}}

	_, err := Invoke(context.Background(), b, elfInvocation("m"))
	if !errors.Is(err, lerrors.ErrBackendNotFound) {
		t.Errorf("err = %v, want ErrBackendNotFound", err)
	}
}
