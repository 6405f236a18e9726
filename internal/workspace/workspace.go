package workspace

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/system"
)

// rootMarkers are checked in order; an earlier marker anywhere up the tree
// beats a later one closer to the start.
var rootMarkers = []string{config.ConfigFile, config.ManifestFile}

// FindRoot returns the project root for start, which must be absolute.
func FindRoot(fsys system.FileSystem, start string) string {
	for _, marker := range rootMarkers {
		if dir, ok := findUp(fsys, start, marker); ok {
			return dir
		}
	}
	return start
}

// findUp returns the nearest ancestor of dir (inclusive) containing name.
func findUp(fsys system.FileSystem, dir, name string) (string, bool) {
	for {
		if fsys.Exists(filepath.Join(dir, name)) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Map translates dir, a host directory, to the matching directory under
// mount. An empty dir maps to mount itself. Relative dirs are taken
// relative to the current working directory.
func Map(root, mount, dir string) (string, error) {
	if dir == "" {
		return mount, nil
	}

	rel, err := Rel(root, dir)
	if err != nil {
		return "", err
	}
	return path.Join(mount, filepath.ToSlash(rel)), nil
}

// Rel returns dir relative to root, failing with PathOutsideProject when
// dir is not root or one of its descendants.
func Rel(root, dir string) (string, error) {
	absRoot, err := resolve(root)
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "invalid project root", err)
	}
	absDir, err := resolve(dir)
	if err != nil {
		return "", errors.PathOutsideProject(dir, root)
	}

	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.PathOutsideProject(dir, root)
	}
	return rel, nil
}

// resolve makes p absolute and resolves symlinks where it exists.
func resolve(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
