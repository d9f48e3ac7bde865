package strategy

import (
	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/artifact"
	"github.com/wippyai/native-link/errors"
	"github.com/wippyai/native-link/target"
	"github.com/wippyai/native-link/toolchain"
)

// MSVC links a Windows DLL with lld-link against the host MSVC toolchain.
type MSVC struct {
	Toolchain toolchain.MSVC
	Options   Options
}

func (MSVC) Name() string              { return "msvc" }
func (MSVC) Flavor() nativelink.Flavor { return nativelink.FlavorLink }

// Build assembles:
//
//	-subsystem:<sub> -libpath:<vc> [-libpath:<ucrt>] [-libpath:<sdk>] -libpath:<dir>...
//	-dll <crt> <lib>.lib... <object> -out:<dir>/<stem>.dll
//
// The Universal CRT and Windows SDK directories are optional; when they
// cannot be resolved they are listed in Invocation.Omitted.
func (s MSVC) Build(d target.Descriptor, opts nativelink.LinkerOptions, art artifact.Artifact) (nativelink.Invocation, error) {
	if s.Toolchain == nil {
		return nativelink.Invocation{}, errors.NotInitialized(errors.PhaseToolchain, "MSVC toolchain")
	}

	vcLib, err := s.Toolchain.LibDir(d.Arch)
	if err != nil {
		return nativelink.Invocation{}, errors.ToolchainNotFound(d.Triple, "MSVC library directory", err)
	}

	libPaths := []string{vcLib}
	var omitted []string
	if crt, ok := s.Toolchain.UniversalCRTLibDir(d.Arch); ok {
		libPaths = append(libPaths, crt)
	} else {
		omitted = append(omitted, "universal CRT library directory")
	}
	if sdk, ok := s.Toolchain.WindowsSDKLibDir(d.Arch); ok {
		libPaths = append(libPaths, sdk)
	} else {
		omitted = append(omitted, "Windows SDK library directory")
	}
	libPaths = append(libPaths, opts.LibraryDirs...)

	output := art.Join(art.Stem + ".dll")

	args := make([]string, 0, len(libPaths)+len(opts.Libraries)+5)
	if s.Options.Subsystem != "" {
		args = append(args, "-subsystem:"+s.Options.Subsystem)
	}
	for _, dir := range libPaths {
		args = append(args, "-libpath:"+dir)
	}
	args = append(args, "-dll")
	if s.Options.MSVCRuntime != "" {
		args = append(args, s.Options.MSVCRuntime)
	}
	for _, lib := range opts.Libraries {
		args = append(args, lib+".lib")
	}
	args = append(args, art.Path)
	args = append(args, "-out:"+output)

	return nativelink.Invocation{
		Strategy: s.Name(),
		Flavor:   s.Flavor(),
		Args:     args,
		Output:   output,
		Omitted:  omitted,
	}, nil
}
