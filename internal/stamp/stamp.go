// Package stamp persists the orchestrator compatibility version a sandbox
// was created with.
//
// The stamp is a single decimal integer in a file at the project root.
// A sandbox whose stamp differs from the compiled-in version is stale and
// must be cleaned before it is used again. No stamp at all means "no
// stamped sandbox yet" and is never stale, so sandboxes created before
// stamping existed keep working.
package stamp

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/system"
)

// ErrCorrupt is returned by Read when the stamp file is not an integer.
var ErrCorrupt = errors.New("version stamp is corrupt")

// Store reads and writes the version stamp of one project.
type Store struct {
	path    string
	current int
	fs      system.FileSystem
}

// New returns a Store for the stamp file under projectRoot, comparing
// against the given compatibility version.
func New(fsys system.FileSystem, projectRoot string, current int) *Store {
	return &Store{
		path:    filepath.Join(projectRoot, config.StampFile),
		current: current,
		fs:      fsys,
	}
}

// Path returns the stamp file location.
func (s *Store) Path() string {
	return s.path
}

// Current returns the compatibility version Write records.
func (s *Store) Current() int {
	return s.current
}

// Read returns the stamped version. ok is false when no stamp exists.
func (s *Store) Read() (version int, ok bool, err error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	text := strings.TrimSpace(string(data))
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s contains %q", ErrCorrupt, s.path, text)
	}
	return v, true, nil
}

// Write records the current compatibility version, replacing any
// previous stamp.
func (s *Store) Write() error {
	data := []byte(strconv.Itoa(s.current) + "\n")
	if err := s.fs.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the stamp. A missing stamp is not an error.
func (s *Store) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}
	return nil
}

// IsStale reports whether a stamp exists and differs from the current
// version. A corrupt stamp is stale. Only I/O failures return an error.
func (s *Store) IsStale() (bool, error) {
	v, ok, err := s.Read()
	switch {
	case errors.Is(err, ErrCorrupt):
		return true, nil
	case err != nil:
		return false, err
	case !ok:
		return false, nil
	}
	return v != s.current, nil
}
