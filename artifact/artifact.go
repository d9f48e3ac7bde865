// Package artifact derives the output directory and base name of a compiled
// object file.
package artifact

import (
	"path/filepath"
	"strings"

	"github.com/wippyai/native-link/errors"
)

// Artifact is a decomposed object file path.
type Artifact struct {
	// Path is the object file path as given.
	Path string
	// Dir is the parent directory, empty when Path has none.
	Dir string
	// Stem is the file name without its final extension.
	Stem string
}

// Derive splits path into its directory and stem.
func Derive(path string) (Artifact, error) {
	if path == "" {
		return Artifact{}, errors.InvalidArtifact(path, "empty artifact path")
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return Artifact{}, errors.InvalidArtifact(path, "artifact path has no file name")
	}

	dir, name := filepath.Split(path)
	if name == "" || name == "." || name == ".." {
		return Artifact{}, errors.InvalidArtifact(path, "artifact path has no file name")
	}

	// A leading dot marks a hidden file, not an extension
	stem := name
	if ext := filepath.Ext(name); ext != "" && ext != name {
		stem = strings.TrimSuffix(name, ext)
	}

	return Artifact{
		Path: path,
		Dir:  cleanDir(dir),
		Stem: stem,
	}, nil
}

// cleanDir strips the trailing separator filepath.Split leaves behind,
// keeping a bare root intact.
func cleanDir(dir string) string {
	if dir == "" {
		return ""
	}
	trimmed := strings.TrimRight(dir, `/`+string(filepath.Separator))
	if trimmed == "" || strings.HasSuffix(trimmed, ":") {
		return dir
	}
	return trimmed
}

// SearchDir returns Dir, or "." when the artifact has no parent.
func (a Artifact) SearchDir() string {
	if a.Dir == "" {
		return "."
	}
	return a.Dir
}

// Join returns the path of a sibling file named name.
func (a Artifact) Join(name string) string {
	if a.Dir == "" {
		return name
	}
	return filepath.Join(a.Dir, name)
}
