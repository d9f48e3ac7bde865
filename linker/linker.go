package linker

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/artifact"
	"github.com/wippyai/native-link/backend"
	"github.com/wippyai/native-link/errors"
	"github.com/wippyai/native-link/strategy"
	"github.com/wippyai/native-link/target"
	"github.com/wippyai/native-link/toolchain"
)

// Options configures linker behavior.
type Options struct {
	// Toolchain overrides MSVC directory discovery. Nil reads the
	// Visual Studio developer environment.
	Toolchain toolchain.MSVC
	Strategy  strategy.Options
	// HostOS overrides host detection. OSUnknown detects the running host.
	HostOS target.OS
}

// DefaultOptions returns default linker configuration.
func DefaultOptions() Options {
	return Options{
		Strategy: strategy.DefaultOptions(),
	}
}

// Linker plans and runs shared library links.
// Thread-safe.
type Linker struct {
	backend  backend.Backend
	selector *strategy.Selector
	options  Options
}

// New creates a new Linker with the given backend and options.
func New(b backend.Backend, opts Options) *Linker {
	sel := strategy.NewSelector(opts.Strategy)
	if opts.Toolchain != nil {
		sel.Toolchain = opts.Toolchain
	}
	if opts.HostOS != target.OSUnknown {
		sel.HostOS = opts.HostOS
	}
	return &Linker{
		backend:  b,
		selector: sel,
		options:  opts,
	}
}

// NewWithDefaults creates a new Linker with default options.
func NewWithDefaults(b backend.Backend) *Linker {
	return New(b, DefaultOptions())
}

// Backend returns the backend links are handed to.
func (l *Linker) Backend() backend.Backend {
	return l.backend
}

// Options returns the configuration.
func (l *Linker) Options() Options {
	return l.options
}

// Plan builds the invocation for linking cc's object file without running
// a backend.
func (l *Linker) Plan(cc nativelink.CompilationContext, opts nativelink.LinkerOptions) (nativelink.Invocation, error) {
	d, err := target.Resolve(cc)
	if err != nil {
		return nativelink.Invocation{}, err
	}

	art, err := deriveAbs(cc.OutputFile())
	if err != nil {
		return nativelink.Invocation{}, withTarget(err, d.Triple)
	}

	st, err := l.selector.Select(d)
	if err != nil {
		return nativelink.Invocation{}, err
	}

	inv, err := st.Build(d, opts, art)
	if err != nil {
		return nativelink.Invocation{}, err
	}

	for _, dir := range inv.Omitted {
		Logger().Warn("toolchain directory not resolved, omitting",
			zap.String("directory", dir),
			zap.String("target", d.Triple))
	}

	Logger().Debug("link planned",
		zap.String("target", d.Triple),
		zap.String("strategy", inv.Strategy),
		zap.String("output", inv.Output),
		zap.Strings("argv", inv.Argv()))

	return inv, nil
}

// Link plans the link and hands it to the backend. A link the backend
// rejects returns a Result with Success false and a nil error.
func (l *Linker) Link(ctx context.Context, cc nativelink.CompilationContext, opts nativelink.LinkerOptions) (nativelink.Result, error) {
	inv, err := l.Plan(cc, opts)
	if err != nil {
		return nativelink.Result{}, err
	}
	return l.Run(ctx, inv)
}

// Run hands an invocation returned by Plan to the backend. It has the same
// failure contract as Link.
func (l *Linker) Run(ctx context.Context, inv nativelink.Invocation) (nativelink.Result, error) {
	start := time.Now()
	res, err := backend.Invoke(ctx, l.backend, inv)
	if err != nil {
		Logger().Error("backend failed to run",
			zap.String("strategy", inv.Strategy),
			zap.String("output", inv.Output),
			zap.Error(err))
		return res, err
	}

	if res.Success {
		Logger().Info("link complete",
			zap.String("strategy", res.Strategy),
			zap.String("output", res.Output),
			zap.Duration("elapsed", time.Since(start)))
	} else {
		Logger().Warn("link failed",
			zap.String("strategy", res.Strategy),
			zap.String("output", res.Output),
			zap.Int("exit_code", res.ExitCode),
			zap.String("diagnostics", res.Diagnostics))
	}
	return res, nil
}

// CompileAndLink compiles source with c and links the resulting object.
func (l *Linker) CompileAndLink(ctx context.Context, c nativelink.Compiler, source string, opts nativelink.LinkerOptions) (nativelink.Result, error) {
	if c == nil {
		return nativelink.Result{}, errors.NotInitialized(errors.PhaseCompile, "compiler")
	}
	cc, err := c.Compile(ctx, source)
	if err != nil {
		return nativelink.Result{}, fmt.Errorf("compile %s: %w", source, err)
	}
	return l.Link(ctx, cc, opts)
}

// deriveAbs validates path as given, then derives from its absolute form.
func deriveAbs(path string) (artifact.Artifact, error) {
	if _, err := artifact.Derive(path); err != nil {
		return artifact.Artifact{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return artifact.Artifact{}, errors.New(errors.PhaseArtifact, errors.KindInvalidInput).
			Path(path).
			Detail("cannot make artifact path absolute").
			Cause(err).
			Build()
	}
	return artifact.Derive(abs)
}

// withTarget records the target triple on a structured error.
func withTarget(err error, triple string) error {
	var se *errors.Error
	if stderrors.As(err, &se) && se.Target == "" {
		se.Target = triple
	}
	return err
}
