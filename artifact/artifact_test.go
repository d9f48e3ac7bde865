package artifact

import (
	"errors"
	"path/filepath"
	"testing"

	lerrors "github.com/wippyai/native-link/errors"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		path string
		dir  string
		stem string
	}{
		{"absolute", "/build/out/mylib.o", "/build/out", "mylib"},
		{"relative", "out/mylib.obj", "out", "mylib"},
		{"no parent", "mylib.o", "", "mylib"},
		{"no extension", "/build/out/mylib", "/build/out", "mylib"},
		{"double extension", "/build/archive.tar.gz", "/build", "archive.tar"},
		{"hidden file", "/build/.hidden", "/build", ".hidden"},
		{"hidden with extension", "/build/.hidden.o", "/build", ".hidden"},
		{"root", "/mylib.o", "/", "mylib"},
		{"repeated separators", "/build//out//mylib.o", "/build//out", "mylib"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Derive(filepath.FromSlash(tt.path))
			if err != nil {
				t.Fatalf("Derive(%q): %v", tt.path, err)
			}
			if a.Dir != filepath.FromSlash(tt.dir) {
				t.Errorf("Dir = %q, want %q", a.Dir, filepath.FromSlash(tt.dir))
			}
			if a.Stem != tt.stem {
				t.Errorf("Stem = %q, want %q", a.Stem, tt.stem)
			}
			if a.Path != filepath.FromSlash(tt.path) {
				t.Errorf("Path = %q", a.Path)
			}
		})
	}
}

func TestDerive_Reconstructs(t *testing.T) {
	for _, p := range []string{"/build/out/mylib.o", "out/mylib.obj", "mylib.o", "/build/mylib"} {
		p = filepath.FromSlash(p)
		a, err := Derive(p)
		if err != nil {
			t.Fatalf("Derive(%q): %v", p, err)
		}

		// dir + stem + ext == path
		if got := a.Join(a.Stem + filepath.Ext(p)); got != p {
			t.Errorf("reconstructed %q, want %q", got, p)
		}

		// the stem survives a round trip through the directory
		if base := filepath.Base(filepath.Join(a.SearchDir(), a.Stem)); base != a.Stem {
			t.Errorf("base of dir/stem = %q, want %q", base, a.Stem)
		}

		// deriving twice yields identical results
		again, _ := Derive(p)
		if again != a {
			t.Errorf("Derive not idempotent: %+v vs %+v", again, a)
		}
	}
}

func TestDerive_Invalid(t *testing.T) {
	for _, p := range []string{"", "/build/out/", ".", "..", "/build/.."} {
		t.Run(p, func(t *testing.T) {
			_, err := Derive(p)
			if !errors.Is(err, lerrors.ErrInvalidArtifact) {
				t.Fatalf("Derive(%q) err = %v, want ErrInvalidArtifact", p, err)
			}
		})
	}
}

func TestArtifact_SearchDirAndJoin(t *testing.T) {
	a := Artifact{Path: "mylib.o", Stem: "mylib"}
	if a.SearchDir() != "." {
		t.Errorf("SearchDir = %q, want .", a.SearchDir())
	}
	if a.Join("libmylib.so") != "libmylib.so" {
		t.Errorf("Join = %q", a.Join("libmylib.so"))
	}

	b := Artifact{Path: filepath.FromSlash("/build/out/mylib.o"), Dir: filepath.FromSlash("/build/out"), Stem: "mylib"}
	if b.SearchDir() != b.Dir {
		t.Errorf("SearchDir = %q, want %q", b.SearchDir(), b.Dir)
	}
	if got, want := b.Join("mylib.dll"), filepath.FromSlash("/build/out/mylib.dll"); got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}
