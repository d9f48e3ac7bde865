package backend

import (
	"context"
	"sync"

	nativelink "github.com/wippyai/native-link"
)

// Recorder records invocations instead of linking. Thread-safe.
type Recorder struct {
	// Fail decides whether an invocation fails. When it returns true, the
	// returned text becomes the result's diagnostics.
	Fail  func(nativelink.Invocation) (string, bool)
	calls []nativelink.Invocation
	mu    sync.Mutex
}

// NewRecorder creates a Recorder that reports every link as successful.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Name() string { return "dry-run" }

func (r *Recorder) Link(_ context.Context, inv nativelink.Invocation) (nativelink.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, inv.Clone())
	fail := r.Fail
	r.mu.Unlock()

	res := nativelink.Result{
		Strategy: inv.Strategy,
		Output:   inv.Output,
		Success:  true,
	}
	if fail != nil {
		if diag, failed := fail(inv); failed {
			res.Success = false
			res.Diagnostics = diag
			res.ExitCode = 1
		}
	}
	return res, nil
}

// Calls returns copies of the recorded invocations in call order.
func (r *Recorder) Calls() []nativelink.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]nativelink.Invocation, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Clone()
	}
	return out
}

// Last returns the most recent invocation.
func (r *Recorder) Last() (nativelink.Invocation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.calls) == 0 {
		return nativelink.Invocation{}, false
	}
	return r.calls[len(r.calls)-1].Clone(), true
}

// Reset forgets recorded invocations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
