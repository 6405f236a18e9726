// Package testutil provides test utilities for command-level tests
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/firefly-engineering/espbox/internal/app"
	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/system"
)

// TestEnv holds the test environment: a firmware project on disk, a state
// directory, and a mock runtime and executor installed as the default app.
type TestEnv struct {
	T           *testing.T
	TmpDir      string
	ProjectRoot string
	Paths       *config.Paths
	Runtime     *runtime.MockRuntime
	Executor    *system.MockExecutor
	App         *app.App
	cleanup     func()
}

// NewTestEnv creates a new test environment with a mock runtime. The
// project contains only a Cargo.toml.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()

	paths := &config.Paths{
		StateDir: filepath.Join(tmpDir, "state"),
	}
	projectRoot := filepath.Join(tmpDir, "fw")

	// Create directories
	for _, dir := range []string{paths.StateDir, projectRoot} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	mockRuntime := runtime.NewMockRuntime()
	mockExec := system.NewMockExecutor()

	testApp := app.New(
		app.WithPaths(paths),
		app.WithRuntime(mockRuntime),
		app.WithExecutor(mockExec),
	)

	// Save original default and set test app
	originalDefault := app.Default
	app.SetDefault(testApp)

	env := &TestEnv{
		T:           t,
		TmpDir:      tmpDir,
		ProjectRoot: projectRoot,
		Paths:       paths,
		Runtime:     mockRuntime,
		Executor:    mockExec,
		App:         testApp,
		cleanup: func() {
			app.SetDefault(originalDefault)
		},
	}
	env.WriteFile(config.ManifestFile, CargoManifest())

	return env
}

// Cleanup restores the original app default
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
	}
}

// WriteFile writes a file relative to the project root
func (e *TestEnv) WriteFile(rel string, data []byte) string {
	e.T.Helper()

	path := filepath.Join(e.ProjectRoot, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.T.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		e.T.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteConfig writes espbox.toml
func (e *TestEnv) WriteConfig(content string) {
	e.T.Helper()
	e.WriteFile(config.ConfigFile, []byte(content))
}

// WriteStamp writes the version stamp as if a sandbox of that version
// had been created
func (e *TestEnv) WriteStamp(version int) {
	e.T.Helper()
	e.WriteFile(config.StampFile, []byte(strconv.Itoa(version)+"\n"))
}

// Stamp returns the raw version stamp, or "" if there is none
func (e *TestEnv) Stamp() string {
	data, err := os.ReadFile(filepath.Join(e.ProjectRoot, config.StampFile))
	if err != nil {
		return ""
	}
	return string(data)
}

// AddSandbox adds a sandbox to the mock runtime and stamps the project
// with the current version
func (e *TestEnv) AddSandbox(name string, status runtime.ContainerStatus, device string) {
	e.T.Helper()

	e.Runtime.AddContainer(name, status, device)
	e.WriteStamp(config.CompatVersion)
}

// Mkdir creates a directory inside the project and returns its path
func (e *TestEnv) Mkdir(rel string) string {
	e.T.Helper()

	path := filepath.Join(e.ProjectRoot, rel)
	if err := os.MkdirAll(path, 0755); err != nil {
		e.T.Fatalf("Failed to create directory: %v", err)
	}
	return path
}

// Chdir changes into a project directory for the rest of the test
func (e *TestEnv) Chdir(rel string) {
	e.T.Helper()
	dir := filepath.Join(e.ProjectRoot, rel)
	wd, err := os.Getwd()
	if err != nil {
		e.T.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		e.T.Fatalf("Chdir: %v", err)
	}
	e.T.Cleanup(func() { _ = os.Chdir(wd) })
}
