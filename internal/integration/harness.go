package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firefly-engineering/espbox/internal/audit"
	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/orchestrator"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/stamp"
	"github.com/firefly-engineering/espbox/internal/system"
)

const (
	// EnvEnable turns integration tests on when set to 1.
	EnvEnable = "ESPBOX_INTEGRATION_TESTS"

	// EnvImage overrides the lightweight test image.
	EnvImage = "ESPBOX_TEST_IMAGE"

	// EnvIDFImage names an idf-rust image for toolchain tests.
	EnvIDFImage = "ESPBOX_TEST_IDF_IMAGE"

	// DefaultTestImage has tail and sh but no bash or toolchain.
	DefaultTestImage = "docker.io/library/alpine:3.20"

	sandboxPrefix = "espbox-it-"
)

const testManifest = `[package]
name = "espbox-it"
version = "0.1.0"
edition = "2021"
`

// TestHarness provides utilities for integration testing with real containers.
type TestHarness struct {
	t         *testing.T
	tempDir   string
	root      string
	stateDir  string
	rt        runtime.Runtime
	sandboxes []string // Track created sandboxes for cleanup
}

// NewHarness creates a new test harness.
// It will skip the test if ESPBOX_INTEGRATION_TESTS is not set to 1.
func NewHarness(t *testing.T) *TestHarness {
	t.Helper()

	if os.Getenv(EnvEnable) != "1" {
		t.Skipf("integration tests disabled (set %s=1 to enable)", EnvEnable)
	}

	rt, err := runtime.New(runtime.DefaultConfig())
	if err != nil {
		t.Skipf("no container runtime available: %v", err)
	}

	// Quick check that the runtime is responsive
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := rt.Inspect(ctx, sandboxPrefix+"probe"); err != nil {
		t.Skipf("%s not responsive: %v", rt.Name(), err)
	}

	tempDir := t.TempDir()
	h := &TestHarness{
		t:        t,
		tempDir:  tempDir,
		root:     filepath.Join(tempDir, "fw"),
		stateDir: filepath.Join(tempDir, "state"),
		rt:       rt,
	}

	for _, dir := range []string{h.root, h.stateDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(h.root, config.ManifestFile), []byte(testManifest), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	t.Cleanup(h.Cleanup)

	return h
}

// Root returns the test project root.
func (h *TestHarness) Root() string {
	return h.root
}

// Runtime returns the container runtime.
func (h *TestHarness) Runtime() runtime.Runtime {
	return h.rt
}

// Image returns the lightweight test image.
func (h *TestHarness) Image() string {
	if img := os.Getenv(EnvImage); img != "" {
		return img
	}
	return DefaultTestImage
}

// Stamps returns the version stamp store of the test project.
func (h *TestHarness) Stamps() *stamp.Store {
	return stamp.New(system.DefaultFS(), h.root, config.CompatVersion)
}

// Events returns the event log of the test state directory.
func (h *TestHarness) Events() *audit.Logger {
	return audit.NewLogger(h.stateDir)
}

// Orchestrator returns an orchestrator for the test project.
func (h *TestHarness) Orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Options{
		Runtime: h.rt,
		Project: orchestrator.Project{Root: h.root, Config: config.Default()},
		Events:  h.Events(),
	})
}

// SandboxName returns a unique sandbox name for this test and tracks it
// for cleanup. Leftovers from earlier runs are removed.
func (h *TestHarness) SandboxName(suffix string) string {
	name := sandboxPrefix + suffix
	h.removeSandbox(name)
	h.sandboxes = append(h.sandboxes, name)
	return name
}

// CreateSandbox creates and starts a sandbox straight through the runtime,
// bypassing the lifecycle manager.
func (h *TestHarness) CreateSandbox(name string) {
	h.t.Helper()

	ctx := context.Background()
	if err := h.rt.Pull(ctx, h.Image()); err != nil {
		h.t.Skipf("failed to pull %s: %v", h.Image(), err)
	}
	err := h.rt.Create(ctx, runtime.CreateOptions{
		Name:       name,
		Image:      h.Image(),
		Mounts:     []runtime.Mount{{Source: h.root, Target: config.MountPoint}},
		WorkingDir: config.MountPoint,
	})
	if err != nil {
		h.t.Fatalf("failed to create %s: %v", name, err)
	}
	if err := h.rt.Start(ctx, name); err != nil {
		h.t.Fatalf("failed to start %s: %v", name, err)
	}
}

// Status returns the runtime's view of a sandbox.
func (h *TestHarness) Status(name string) runtime.ContainerStatus {
	h.t.Helper()

	info, err := h.rt.Inspect(context.Background(), name)
	if err != nil {
		h.t.Fatalf("failed to inspect %s: %v", name, err)
	}
	return info.Status
}

// Cleanup removes all created sandboxes.
func (h *TestHarness) Cleanup() {
	for _, name := range h.sandboxes {
		h.removeSandbox(name)
	}
}

func (h *TestHarness) removeSandbox(name string) {
	ctx := context.Background()

	info, err := h.rt.Inspect(ctx, name)
	if err != nil || info.Status == runtime.StatusNotFound {
		return
	}
	if info.Status == runtime.StatusRunning {
		if err := h.rt.Stop(ctx, name); err != nil {
			h.t.Logf("Warning: failed to stop sandbox %s: %v", name, err)
		}
	}
	if err := h.rt.Remove(ctx, name); err != nil {
		h.t.Logf("Warning: failed to remove sandbox %s: %v", name, err)
	}
}
