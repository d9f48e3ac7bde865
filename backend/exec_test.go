package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	nativelink "github.com/wippyai/native-link"
	lerrors "github.com/wippyai/native-link/errors"
)

const fakeLinker = `#!/bin/sh
echo "argv: $*"
for a in "$@"; do
	case "$a" in
	-lmissing)
		echo "ld.lld: error: unable to find library -lmissing" >&2
		exit 1
		;;
	esac
done
exit 0
`

func writeFakeLinker(t *testing.T, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script linker stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(fakeLinker), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDriverName(t *testing.T) {
	tests := map[nativelink.Flavor]string{
		nativelink.FlavorGNU:    "ld.lld",
		nativelink.FlavorLink:   "lld-link",
		nativelink.FlavorDarwin: "ld64.lld",
	}
	for f, want := range tests {
		if got := DriverName(f); got != want {
			t.Errorf("DriverName(%q) = %q, want %q", f, got, want)
		}
	}
}

func TestIsMultiCall(t *testing.T) {
	tests := map[string]bool{
		"/usr/bin/lld":              true,
		"lld.exe":                   true,
		"/opt/llvm/bin/ld.lld":      false,
		`C:\LLVM\bin\lld-link.exe`:  false,
		"/usr/local/bin/ld64.lld":   false,
		"/usr/lib/llvm-17/bin/lld":  true,
		"/opt/custom/linker-driver": true,
	}
	for program, want := range tests {
		if got := isMultiCall(program); got != want {
			t.Errorf("isMultiCall(%q) = %v, want %v", program, got, want)
		}
	}
}

func TestExec_Resolve(t *testing.T) {
	t.Run("prefers multi-call lld", func(t *testing.T) {
		e := NewExec(ExecConfig{})
		e.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }

		path, multi, err := e.resolve(nativelink.FlavorLink)
		if err != nil || path != "/usr/bin/lld" || !multi {
			t.Errorf("resolve = %q, %v, %v", path, multi, err)
		}
	})

	t.Run("falls back to flavor driver", func(t *testing.T) {
		e := NewExec(ExecConfig{})
		e.lookPath = func(name string) (string, error) {
			if name == "lld-link" {
				return "/usr/bin/lld-link", nil
			}
			return "", errors.New("not found")
		}

		path, multi, err := e.resolve(nativelink.FlavorLink)
		if err != nil || path != "/usr/bin/lld-link" || multi {
			t.Errorf("resolve = %q, %v, %v", path, multi, err)
		}
	})

	t.Run("nothing installed", func(t *testing.T) {
		e := NewExec(ExecConfig{})
		e.lookPath = func(string) (string, error) { return "", errors.New("not found") }

		_, _, err := e.resolve(nativelink.FlavorDarwin)
		if !errors.Is(err, lerrors.ErrBackendNotFound) {
			t.Errorf("err = %v, want ErrBackendNotFound", err)
		}
	})

	t.Run("configured program", func(t *testing.T) {
		e := NewExec(ExecConfig{Program: "/opt/llvm/bin/ld.lld"})
		e.lookPath = func(string) (string, error) { t.Fatal("lookPath must not be called"); return "", nil }

		path, multi, err := e.resolve(nativelink.FlavorGNU)
		if err != nil || path != "/opt/llvm/bin/ld.lld" || multi {
			t.Errorf("resolve = %q, %v, %v", path, multi, err)
		}
	})
}

func TestExec_LinkMultiCall(t *testing.T) {
	e := NewExec(ExecConfig{Program: writeFakeLinker(t, "lld")})

	res, err := e.Link(context.Background(), elfInvocation("m"))
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if !res.Success || res.ExitCode != 0 {
		t.Errorf("Result = %+v", res)
	}
	if !strings.Contains(res.Diagnostics, "argv: -flavor gnu -lc --shared -lm") {
		t.Errorf("multi-call driver should receive the flavor selector: %q", res.Diagnostics)
	}
}

func TestExec_LinkFlavorDriver(t *testing.T) {
	e := NewExec(ExecConfig{Program: writeFakeLinker(t, "ld.lld")})

	res, err := e.Link(context.Background(), elfInvocation("m"))
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if !strings.Contains(res.Diagnostics, "argv: -lc --shared") {
		t.Errorf("flavor driver should not receive -flavor: %q", res.Diagnostics)
	}
}

func TestExec_LinkFailure(t *testing.T) {
	e := NewExec(ExecConfig{Program: writeFakeLinker(t, "ld.lld")})

	res, err := e.Link(context.Background(), elfInvocation("missing"))
	if err != nil {
		t.Fatalf("a failed link must not be an error: %v", err)
	}
	if res.Success {
		t.Error("Success = true for a failed link")
	}
	if res.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", res.ExitCode)
	}
	if !strings.Contains(res.Diagnostics, "unable to find library -lmissing") {
		t.Errorf("Diagnostics = %q", res.Diagnostics)
	}

	// process survives and can link again
	res, err = e.Link(context.Background(), elfInvocation("m"))
	if err != nil || !res.Success {
		t.Errorf("follow-up link: %+v, %v", res, err)
	}
}

func TestExec_MissingProgram(t *testing.T) {
	e := NewExec(ExecConfig{Program: filepath.Join(t.TempDir(), "no-such-lld")})

	_, err := e.Link(context.Background(), elfInvocation("m"))
	if !errors.Is(err, lerrors.ErrBackendNotFound) {
		t.Errorf("err = %v, want ErrBackendNotFound", err)
	}
}
