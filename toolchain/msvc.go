// Package toolchain locates the host MSVC toolchain's library directories.
//
// Discovery follows the environment a Visual Studio developer prompt
// (vcvarsall.bat) establishes, which is also the first source clang's MSVC
// driver consults:
//
//	VCToolsInstallDir                 -> <dir>\lib\<arch>
//	UniversalCRTSdkDir + UCRTVersion  -> <dir>\Lib\<ver>\ucrt\<arch>
//	WindowsSdkDir + WindowsSDKLibVersion -> <dir>\Lib\<ver>\um\<arch>
//
// Only the toolchain library directory is required. The CRT and SDK
// directories are optional and their absence is reported, not failed.
package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MSVC answers library directory queries for one target architecture.
// arch is an LLVM architecture name such as x86_64 or aarch64.
type MSVC interface {
	LibDir(arch string) (string, error)
	UniversalCRTLibDir(arch string) (string, bool)
	WindowsSDKLibDir(arch string) (string, bool)
}

// Environment variables set by vcvarsall.bat
const (
	EnvVCToolsInstallDir    = "VCToolsInstallDir"
	EnvUniversalCRTSdkDir   = "UniversalCRTSdkDir"
	EnvUCRTVersion          = "UCRTVersion"
	EnvWindowsSdkDir        = "WindowsSdkDir"
	EnvWindowsSDKLibVersion = "WindowsSDKLibVersion"
)

// EnvMSVC discovers directories from environment variables.
type EnvMSVC struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Exists reports whether a directory exists. Nil skips the check.
	Exists func(string) bool
}

// NewEnvMSVC returns an EnvMSVC reading the process environment and
// checking resolved directories on disk.
func NewEnvMSVC() *EnvMSVC {
	return &EnvMSVC{
		Getenv: os.Getenv,
		Exists: dirExists,
	}
}

func (m *EnvMSVC) getenv(key string) string {
	if m.Getenv == nil {
		return strings.TrimSpace(os.Getenv(key))
	}
	return strings.TrimSpace(m.Getenv(key))
}

func (m *EnvMSVC) exists(dir string) bool {
	if m.Exists == nil {
		return true
	}
	return m.Exists(dir)
}

// LibDir returns the MSVC toolchain library directory.
func (m *EnvMSVC) LibDir(arch string) (string, error) {
	root := m.getenv(EnvVCToolsInstallDir)
	if root == "" {
		return "", fmt.Errorf("%s is not set; run from a Visual Studio developer prompt", EnvVCToolsInstallDir)
	}
	dir := filepath.Join(root, "lib", SubArch(arch))
	if !m.exists(dir) {
		return "", fmt.Errorf("%s does not exist", dir)
	}
	return dir, nil
}

// UniversalCRTLibDir returns the Universal CRT library directory.
func (m *EnvMSVC) UniversalCRTLibDir(arch string) (string, bool) {
	return m.sdkDir(EnvUniversalCRTSdkDir, EnvUCRTVersion, "ucrt", arch)
}

// WindowsSDKLibDir returns the Windows SDK "um" library directory.
func (m *EnvMSVC) WindowsSDKLibDir(arch string) (string, bool) {
	return m.sdkDir(EnvWindowsSdkDir, EnvWindowsSDKLibVersion, "um", arch)
}

func (m *EnvMSVC) sdkDir(rootKey, versionKey, kind, arch string) (string, bool) {
	root := m.getenv(rootKey)
	version := strings.Trim(m.getenv(versionKey), `\/`)
	if root == "" || version == "" {
		return "", false
	}
	dir := filepath.Join(root, "Lib", version, kind, SubArch(arch))
	if !m.exists(dir) {
		return "", false
	}
	return dir, true
}

// SubArch maps an LLVM architecture name to the MSVC library subdirectory.
func SubArch(arch string) string {
	switch arch {
	case "x86_64", "amd64", "x64":
		return "x64"
	case "i386", "i486", "i586", "i686", "x86":
		return "x86"
	case "aarch64", "arm64":
		return "arm64"
	case "arm", "armv7", "thumbv7":
		return "arm"
	default:
		return arch
	}
}

func dirExists(dir string) bool {
	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir()
}

// StaticMSVC returns fixed directories. An empty field is unresolved.
type StaticMSVC struct {
	Lib string
	CRT string
	SDK string
}

func (s StaticMSVC) LibDir(string) (string, error) {
	if s.Lib == "" {
		return "", fmt.Errorf("no MSVC library directory configured")
	}
	return s.Lib, nil
}

func (s StaticMSVC) UniversalCRTLibDir(string) (string, bool) { return s.CRT, s.CRT != "" }

func (s StaticMSVC) WindowsSDKLibDir(string) (string, bool) { return s.SDK, s.SDK != "" }
