// Package strategy builds platform-specific linker arguments.
//
// # Strategies
//
//   - MSVC: lld-link, produces <stem>.dll
//   - ELF: ld.lld, produces lib<stem>.so
//   - MachO: ld64.lld, produces lib<stem>.dylib
//   - MinGW: ld.lld in MinGW mode, produces <stem>.dll
//
// Strategies are plain values with no state between calls. Every Build
// allocates a fresh argument slice.
//
// # Selection
//
// Selector.Select picks a strategy from the target descriptor at run time,
// so every strategy can be exercised on any host. Targets without a
// strategy fail with errors.ErrUnsupportedPlatform.
package strategy

import (
	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/artifact"
	"github.com/wippyai/native-link/target"
)

// Strategy builds the invocation for one linking convention.
type Strategy interface {
	Name() string
	Flavor() nativelink.Flavor
	Build(d target.Descriptor, opts nativelink.LinkerOptions, art artifact.Artifact) (nativelink.Invocation, error)
}

// Defaults for Options
const (
	DefaultSystemLibPath     = "/usr/lib/x86_64-linux-gnu"
	DefaultSDKVersion        = "10.12.0"
	DefaultRuntimeSearchPath = "."
	DefaultMSVCRuntime       = "libcmt.lib"
	DefaultSubsystem         = "windows"
)

// Options configures the fixed parts of each argument list.
// An empty field omits the corresponding arguments.
type Options struct {
	// SystemLibPath is the C library directory searched by ELF links.
	SystemLibPath string
	// SDKVersion is passed to Mach-O links as -sdk_version.
	SDKVersion string
	// RuntimeSearchPath is the rpath embedded by ELF and Mach-O links.
	// The default "." makes the loader search the current working
	// directory, which allows library planting in shared directories.
	RuntimeSearchPath string
	// MSVCRuntime is the C runtime library forced into MSVC links.
	MSVCRuntime string
	// Subsystem is the PE subsystem for MSVC and MinGW links.
	Subsystem string
}

// DefaultOptions returns default strategy configuration.
func DefaultOptions() Options {
	return Options{
		SystemLibPath:     DefaultSystemLibPath,
		SDKVersion:        DefaultSDKVersion,
		RuntimeSearchPath: DefaultRuntimeSearchPath,
		MSVCRuntime:       DefaultMSVCRuntime,
		Subsystem:         DefaultSubsystem,
	}
}

// libFlags returns -l<name> for each library.
func libFlags(libs []string) []string {
	out := make([]string, 0, len(libs))
	for _, lib := range libs {
		out = append(out, "-l"+lib)
	}
	return out
}

// rpathArgs returns the -rpath pair, or nothing when path is empty.
func rpathArgs(path string) []string {
	if path == "" {
		return nil
	}
	return []string{"-rpath", path}
}
