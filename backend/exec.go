package backend

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/errors"
)

// multiCallDriver is the lld binary that dispatches on -flavor.
const multiCallDriver = "lld"

// DriverName returns the flavor-specific lld executable name.
func DriverName(f nativelink.Flavor) string {
	switch f {
	case nativelink.FlavorLink:
		return "lld-link"
	case nativelink.FlavorDarwin:
		return "ld64.lld"
	default:
		return "ld.lld"
	}
}

// ExecConfig configures the Exec backend.
type ExecConfig struct {
	// Program is the linker executable. Empty searches PATH for lld, then
	// for the flavor-specific driver.
	Program string
	// Dir is the working directory of the linker process.
	Dir string
	// Env replaces the process environment when non-nil.
	Env []string
}

// Exec runs lld as a child process.
type Exec struct {
	lookPath func(string) (string, error)
	cfg      ExecConfig
}

// NewExec creates an Exec backend.
func NewExec(cfg ExecConfig) *Exec {
	return &Exec{cfg: cfg, lookPath: exec.LookPath}
}

func (e *Exec) Name() string { return "exec" }

// resolve finds the program for flavor f and reports whether it accepts
// the -flavor selector.
func (e *Exec) resolve(f nativelink.Flavor) (string, bool, error) {
	if e.cfg.Program != "" {
		return e.cfg.Program, isMultiCall(e.cfg.Program), nil
	}

	if path, err := e.lookPath(multiCallDriver); err == nil {
		return path, true, nil
	}
	driver := DriverName(f)
	path, err := e.lookPath(driver)
	if err != nil {
		return "", false, errors.BackendNotFound(e.Name(), driver, err)
	}
	return path, false, nil
}

// isMultiCall reports whether program is anything other than one of the
// flavor-specific lld drivers.
func isMultiCall(program string) bool {
	// Windows paths may reach a POSIX host through configuration
	base := program[strings.LastIndexAny(program, `/\`)+1:]
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")
	switch base {
	case "ld.lld", "lld-link", "ld64.lld":
		return false
	}
	return true
}

// Link runs the linker and captures its combined output.
func (e *Exec) Link(ctx context.Context, inv nativelink.Invocation) (nativelink.Result, error) {
	program, multiCall, err := e.resolve(inv.Flavor)
	if err != nil {
		return nativelink.Result{}, err
	}

	args := inv.Args
	if multiCall {
		args = inv.Argv()
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.Dir = e.cfg.Dir
	if e.cfg.Env != nil {
		cmd.Env = e.cfg.Env
	}

	Logger().Debug("running linker", zap.String("program", program), zap.Strings("args", args))

	runErr := cmd.Run()
	res := nativelink.Result{
		Strategy:    inv.Strategy,
		Output:      inv.Output,
		Diagnostics: out.String(),
	}

	if runErr == nil {
		res.Success = true
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("exec backend: link of %s interrupted: %w", inv.Output, ctxErr)
	}

	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		// The linker ran and rejected the input
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	return res, errors.BackendNotFound(e.Name(), program, runErr)
}
