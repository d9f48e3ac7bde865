// Package errors provides structured error types for native-link.
//
// Errors are categorized by Phase (which step of a link call failed) and Kind
// (error category). The Error type carries the target triple, the offending
// path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseArtifact, errors.KindInvalidInput).
//		Path("/build/out/").
//		Detail("artifact path has no file name").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedPlatform("x86_64-unknown-freebsd", "no link strategy")
//	err := errors.InvalidArtifact("", "empty artifact path")
//
// All errors implement the standard error interface and support errors.Is/As.
// Sentinels such as ErrUnsupportedPlatform match any error of the same
// phase and kind:
//
//	if errors.Is(err, errors.ErrUnsupportedPlatform) { ... }
package errors
