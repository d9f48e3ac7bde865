package strategy

import (
	"github.com/wippyai/native-link/errors"
	"github.com/wippyai/native-link/target"
	"github.com/wippyai/native-link/toolchain"
)

// Selector maps a target descriptor to a Strategy.
type Selector struct {
	// Toolchain serves MSVC directory queries.
	Toolchain toolchain.MSVC
	Options   Options
	// HostOS gates the MinGW strategy, which is only offered on Windows hosts.
	HostOS target.OS
}

// NewSelector creates a Selector for the running host.
func NewSelector(opts Options) *Selector {
	return &Selector{
		Toolchain: toolchain.NewEnvMSVC(),
		Options:   opts,
		HostOS:    target.Host().OS,
	}
}

// Select returns the strategy for d.
//
//	windows + msvc  -> MSVC
//	windows + gnu   -> MinGW (Windows hosts only)
//	linux           -> ELF
//	macos           -> MachO
//
// Everything else is errors.ErrUnsupportedPlatform.
func (s *Selector) Select(d target.Descriptor) (Strategy, error) {
	switch d.OS {
	case target.OSWindows:
		switch d.Env {
		case target.EnvMSVC:
			return MSVC{Toolchain: s.Toolchain, Options: s.Options}, nil
		case target.EnvGNU:
			if s.HostOS != target.OSWindows {
				return nil, errors.UnsupportedPlatform(d.Triple, "MinGW linking requires a Windows host")
			}
			return MinGW{Options: s.Options}, nil
		default:
			return nil, errors.UnsupportedPlatform(d.Triple, "no link strategy for Windows environment "+d.Env.String())
		}

	case target.OSLinux:
		return ELF{Options: s.Options}, nil

	case target.OSMacOS:
		return MachO{Options: s.Options}, nil
	}

	return nil, errors.UnsupportedPlatform(d.Triple, "no link strategy for this operating system")
}
