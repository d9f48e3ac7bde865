// Package backend runs assembled link invocations.
//
// # Main Types
//
//   - Backend: a linker that consumes an Invocation
//   - Exec: runs lld as a child process
//   - Wasm: runs a WASI build of lld in-process with wazero
//   - Recorder: records invocations without linking (dry runs, tests)
//
// # Thread Safety
//
// Linkers embedded in the process keep global diagnostic state, so every
// call made through Invoke holds one process-wide lock for its duration.
// Concurrent link requests are serialized, never interleaved.
//
// # Failure Reporting
//
// A linker that runs and rejects its input is not an error: Link returns a
// Result with Success false and the linker's output in Diagnostics. The
// error return is reserved for a backend that could not run at all.
package backend

import (
	"context"
	"sync"

	"go.uber.org/zap"

	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/errors"
)

// Backend consumes link invocations.
type Backend interface {
	Name() string
	Link(ctx context.Context, inv nativelink.Invocation) (nativelink.Result, error)
}

// invokeMu serializes every backend call in the process.
var invokeMu sync.Mutex

// Invoke runs inv on b under the process-wide backend lock.
// The backend receives a private copy of the invocation. A panicking
// backend is reported as a failed Result.
func Invoke(ctx context.Context, b Backend, inv nativelink.Invocation) (res nativelink.Result, err error) {
	if b == nil {
		return nativelink.Result{}, errors.NotInitialized(errors.PhaseBackend, "backend")
	}

	invokeMu.Lock()
	defer invokeMu.Unlock()

	name := b.Name()
	defer func() {
		if r := recover(); r != nil {
			perr := errors.BackendPanic(name, r)
			Logger().Error("backend panicked",
				zap.String("backend", name),
				zap.String("output", inv.Output),
				zap.Any("panic", r))
			res = nativelink.Result{
				Strategy:    inv.Strategy,
				Output:      inv.Output,
				Diagnostics: perr.Error(),
				ExitCode:    -1,
			}
			err = nil
		}
	}()

	Logger().Debug("invoking backend",
		zap.String("backend", name),
		zap.String("strategy", inv.Strategy),
		zap.Strings("argv", inv.Argv()))

	res, err = b.Link(ctx, inv.Clone())
	if err != nil {
		return res, err
	}
	if res.Strategy == "" {
		res.Strategy = inv.Strategy
	}
	if res.Output == "" {
		res.Output = inv.Output
	}
	return res, nil
}
