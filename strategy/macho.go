package strategy

import (
	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/artifact"
	"github.com/wippyai/native-link/target"
)

// MachO links a macOS dynamic library with ld64.lld.
// It mirrors ELF: libc++ and libSystem replace libc, -dylib replaces --shared.
type MachO struct {
	Options Options
}

func (MachO) Name() string              { return "macho" }
func (MachO) Flavor() nativelink.Flavor { return nativelink.FlavorDarwin }

// Build assembles:
//
//	-lc++ -lSystem -dylib -sdk_version <ver> -L<dir> -rpath <rpath> -l<lib>... <object> -o <dir>/lib<stem>.dylib
func (s MachO) Build(_ target.Descriptor, opts nativelink.LinkerOptions, art artifact.Artifact) (nativelink.Invocation, error) {
	output := art.Join("lib" + art.Stem + ".dylib")

	args := make([]string, 0, 12+len(opts.Libraries))
	args = append(args, "-lc++", "-lSystem", "-dylib")
	if s.Options.SDKVersion != "" {
		args = append(args, "-sdk_version", s.Options.SDKVersion)
	}
	args = append(args, "-L"+art.SearchDir())
	args = append(args, rpathArgs(s.Options.RuntimeSearchPath)...)
	args = append(args, libFlags(opts.Libraries)...)
	args = append(args, art.Path)
	args = append(args, "-o", output)

	return nativelink.Invocation{
		Strategy: s.Name(),
		Flavor:   s.Flavor(),
		Args:     args,
		Output:   output,
	}, nil
}
