package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which step of a link call produced the error
type Phase string

const (
	PhaseCompile   Phase = "compile"   // compiler collaborator
	PhaseTarget    Phase = "target"    // target descriptor resolution
	PhaseArtifact  Phase = "artifact"  // artifact path derivation
	PhaseSelect    Phase = "select"    // strategy selection
	PhaseToolchain Phase = "toolchain" // host toolchain discovery
	PhaseBackend   Phase = "backend"   // backend startup and invocation
	PhaseLink      Phase = "link"      // the link itself
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupported    Kind = "unsupported"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindNotFound       Kind = "not_found"
	KindLinkFailed     Kind = "link_failed"
	KindBackendPanic   Kind = "backend_panic"
)

// Sentinels for errors.Is. Matching is by phase and kind only; a sentinel
// without a phase matches its kind in every phase.
var (
	ErrUnsupportedPlatform = &Error{Phase: PhaseSelect, Kind: KindUnsupported}
	ErrInvalidArtifact     = &Error{Phase: PhaseArtifact, Kind: KindInvalidInput}
	ErrNotInitialized      = &Error{Kind: KindNotInitialized}
	ErrToolchainNotFound   = &Error{Phase: PhaseToolchain, Kind: KindNotFound}
	ErrBackendNotFound     = &Error{Phase: PhaseBackend, Kind: KindNotFound}
	ErrLinkFailed          = &Error{Phase: PhaseLink, Kind: KindLinkFailed}
)

// Error is the structured error type used throughout native-link
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Target string
	Path   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Target != "" {
		b.WriteString(" for ")
		b.WriteString(e.Target)
	}

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(fmt.Sprintf("%q", e.Path))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Target sets the target triple
func (b *Builder) Target(triple string) *Builder {
	b.err.Target = triple
	return b
}

// Path sets the offending file system path
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnsupportedPlatform creates an error for a target with no link strategy
func UnsupportedPlatform(triple, detail string) *Error {
	return &Error{
		Phase:  PhaseSelect,
		Kind:   KindUnsupported,
		Target: triple,
		Detail: detail,
	}
}

// InvalidArtifact creates an argument construction error for a malformed artifact path
func InvalidArtifact(path, detail string) *Error {
	return &Error{
		Phase:  PhaseArtifact,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error for a missing collaborator
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// ToolchainNotFound creates an error for a required toolchain directory that could not be resolved
func ToolchainNotFound(triple, what string, cause error) *Error {
	return &Error{
		Phase:  PhaseToolchain,
		Kind:   KindNotFound,
		Target: triple,
		Detail: fmt.Sprintf("%s not found", what),
		Cause:  cause,
	}
}

// BackendNotFound creates an error for a backend program or module that cannot be located
func BackendNotFound(backend, program string, cause error) *Error {
	return &Error{
		Phase:  PhaseBackend,
		Kind:   KindNotFound,
		Path:   program,
		Detail: fmt.Sprintf("%s backend unavailable", backend),
		Cause:  cause,
	}
}

// BackendPanic creates an error for a backend that panicked during a link call
func BackendPanic(backend string, value any) *Error {
	return &Error{
		Phase:  PhaseBackend,
		Kind:   KindBackendPanic,
		Detail: fmt.Sprintf("%s backend panicked: %v", backend, value),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// LinkFailedError is returned when the backend ran and rejected the link.
// Diagnostics holds the backend's combined output.
type LinkFailedError struct {
	Strategy    string
	Output      string
	Diagnostics string
	ExitCode    int
}

// LinkFailed creates a link failure error from a backend report
func LinkFailed(strategy, output, diagnostics string, exitCode int) *LinkFailedError {
	return &LinkFailedError{
		Strategy:    strategy,
		Output:      output,
		Diagnostics: diagnostics,
		ExitCode:    exitCode,
	}
}

func (e *LinkFailedError) Error() string {
	var b strings.Builder
	b.WriteString("[link] link_failed")
	if e.Strategy != "" {
		b.WriteString(" (")
		b.WriteString(e.Strategy)
		b.WriteByte(')')
	}
	if e.Output != "" {
		fmt.Fprintf(&b, " producing %q", e.Output)
	}
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, ": exit code %d", e.ExitCode)
	}

	diag := strings.TrimSpace(e.Diagnostics)
	if diag == "" {
		return b.String()
	}

	// Indent diagnostics so multi-line linker output stays readable
	for _, line := range strings.Split(diag, "\n") {
		b.WriteString("\n  ")
		b.WriteString(line)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *LinkFailedError) Is(target error) bool {
	switch t := target.(type) {
	case *LinkFailedError:
		return true
	case *Error:
		return t.Phase == PhaseLink && t.Kind == KindLinkFailed
	}
	return false
}
