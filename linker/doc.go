// Package linker turns a compiled object file into a shared library.
//
// # Main Types
//
//   - Linker: resolves the target, picks a strategy and runs the backend
//   - Options: strategy defaults, host OS and MSVC toolchain overrides
//
// # Thread Safety
//
// Linker is safe for concurrent use. Plan has no shared state; Link
// serializes backend calls process-wide (see package backend).
//
// # Link Steps
//
//  1. Resolve the target descriptor from the compilation context
//  2. Derive directory and stem from the object path
//  3. Select the strategy for the target
//  4. Build the argument list
//  5. Invoke the backend
//
// Steps 1-4 fail with structured errors (unsupported platform, malformed
// path, missing toolchain). A link the backend rejects is reported through
// Result.Success and Result.Diagnostics.
//
// Link runs Plan and Run back to back. Callers that show the plan before
// linking call them separately so the plan is built and logged once.
//
// # Example
//
//	l := New(backend.NewExec(backend.ExecConfig{}), DefaultOptions())
//	res, err := l.Link(ctx, cc, nativelink.LinkerOptions{Libraries: []string{"m"}})
//	if err != nil {
//	    return err
//	}
//	if err := res.Err(); err != nil {
//	    return err // carries the linker diagnostics
//	}
package linker
