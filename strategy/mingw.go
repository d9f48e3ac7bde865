package strategy

import (
	"strings"

	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/artifact"
	"github.com/wippyai/native-link/target"
)

// MinGW links a Windows DLL with ld.lld's MinGW driver. lld routes a gnu
// flavor link to that driver when the emulation is a PE one.
type MinGW struct {
	Options Options
}

func (MinGW) Name() string              { return "mingw" }
func (MinGW) Flavor() nativelink.Flavor { return nativelink.FlavorGNU }

// Build assembles:
//
//	-m <emulation> --subsystem <sub> --shared -L<dir>... -L<artifact dir> -l<lib>... <object> -o <dir>/<stem>.dll
func (s MinGW) Build(d target.Descriptor, opts nativelink.LinkerOptions, art artifact.Artifact) (nativelink.Invocation, error) {
	output := art.Join(art.Stem + ".dll")

	args := make([]string, 0, 10+len(opts.LibraryDirs)+len(opts.Libraries))
	args = append(args, "-m", Emulation(d.Arch))
	if s.Options.Subsystem != "" {
		args = append(args, "--subsystem", s.Options.Subsystem)
	}
	args = append(args, "--shared")
	for _, dir := range opts.LibraryDirs {
		args = append(args, "-L"+dir)
	}
	args = append(args, "-L"+art.SearchDir())
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

// Emulation returns the PE emulation name for arch, i386pep when unknown.
func Emulation(arch string) string {
	switch {
	case arch == "aarch64" || arch == "arm64":
		return "arm64pe"
	case strings.HasPrefix(arch, "arm") || strings.HasPrefix(arch, "thumb"):
		return "thumb2pe"
	case arch == "x86", len(arch) == 4 && arch[0] == 'i' && strings.HasSuffix(arch, "86"):
		return "i386pe"
	default:
		return "i386pep"
	}
}
