package nativelink

import (
	"context"

	"github.com/wippyai/native-link/errors"
)

// LinkerOptions are the caller's link inputs. Library names are bare:
// no "lib" prefix, no extension, no flag.
type LinkerOptions struct {
	LibraryDirs []string
	Libraries   []string
}

// CompilationContext is the state left behind by the compiler that produced
// the object file.
type CompilationContext interface {
	// TargetTriple returns the triple the object was compiled for.
	TargetTriple() string
	// OutputFile returns the path of the compiled object file.
	OutputFile() string
}

// Compiler produces an object file from a source file.
type Compiler interface {
	Compile(ctx context.Context, source string) (CompilationContext, error)
}

// StaticContext is a CompilationContext with fixed values.
type StaticContext struct {
	Triple string
	Output string
}

func (c StaticContext) TargetTriple() string { return c.Triple }
func (c StaticContext) OutputFile() string   { return c.Output }

// Flavor selects the lld driver.
type Flavor string

const (
	FlavorGNU    Flavor = "gnu"    // ELF and MinGW
	FlavorLink   Flavor = "link"   // COFF, lld-link
	FlavorDarwin Flavor = "darwin" // Mach-O, ld64.lld
)

// Invocation is a fully assembled link command.
type Invocation struct {
	// Strategy names the strategy that built the invocation.
	Strategy string
	Flavor   Flavor
	// Args excludes the flavor selector.
	Args []string
	// Output is the shared library path the link produces.
	Output string
	// Omitted lists optional toolchain directories that could not be
	// resolved and were left out of Args.
	Omitted []string
}

// Argv returns the arguments for a multi-call lld driver, flavor selector
// first. The result never aliases Args.
func (inv Invocation) Argv() []string {
	argv := make([]string, 0, len(inv.Args)+2)
	argv = append(argv, "-flavor", string(inv.Flavor))
	return append(argv, inv.Args...)
}

// Clone returns a deep copy.
func (inv Invocation) Clone() Invocation {
	c := inv
	c.Args = append([]string(nil), inv.Args...)
	c.Omitted = append([]string(nil), inv.Omitted...)
	return c
}

// Result reports one link call.
type Result struct {
	Strategy string
	Output   string
	// Diagnostics holds the backend's stdout and stderr.
	Diagnostics string
	ExitCode    int
	Success     bool
}

// Err returns nil for a successful link and a *errors.LinkFailedError
// otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return errors.LinkFailed(r.Strategy, r.Output, r.Diagnostics, r.ExitCode)
}
