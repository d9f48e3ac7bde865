package strategy

import (
	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/artifact"
	"github.com/wippyai/native-link/target"
)

// ELF links a Linux shared object with ld.lld.
//
// Caller library directories are not forwarded: the artifact directory and
// the system library path are the only -L entries.
type ELF struct {
	Options Options
}

func (ELF) Name() string              { return "elf" }
func (ELF) Flavor() nativelink.Flavor { return nativelink.FlavorGNU }

// Build assembles:
//
//	-L<syslib> -lc --shared -L<dir> -rpath <rpath> -l<lib>... <object> -o <dir>/lib<stem>.so
func (s ELF) Build(_ target.Descriptor, opts nativelink.LinkerOptions, art artifact.Artifact) (nativelink.Invocation, error) {
	output := art.Join("lib" + art.Stem + ".so")

	args := make([]string, 0, 10+len(opts.Libraries))
	if s.Options.SystemLibPath != "" {
		args = append(args, "-L"+s.Options.SystemLibPath)
	}
	args = append(args, "-lc", "--shared")
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
