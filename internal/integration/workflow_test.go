package integration

import (
	"context"
	"os"
	"testing"

	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/dispatch"
	"github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/sandbox"
	"github.com/firefly-engineering/espbox/internal/stamp"
	"github.com/firefly-engineering/espbox/internal/system"
)

// TestWorkflow_RollbackOnInstallFailure creates a sandbox from an image
// without the toolchain. Installing espflash fails, and the half-made
// sandbox must be gone along with its stamp.
func TestWorkflow_RollbackOnInstallFailure(t *testing.T) {
	h := NewHarness(t)
	if os.Getenv(EnvImage) != "" {
		t.Skip("needs an image without bash")
	}
	name := h.SandboxName("rollback")
	stamps := h.Stamps()

	mgr := sandbox.NewManager(h.Runtime(), stamps, sandbox.Config{
		ProjectRoot: h.Root(),
		TargetDir:   config.DefaultTargetDir,
		Events:      h.Events(),
	})

	_, err := mgr.EnsureReady(context.Background(), sandbox.Sandbox{Name: name, Image: h.Image()})
	if err == nil {
		t.Fatal("EnsureReady should fail without a toolchain")
	}

	if s := h.Status(name); s != runtime.StatusNotFound {
		t.Errorf("sandbox should be rolled back, status %v", s)
	}
	if _, ok, _ := stamps.Read(); ok {
		t.Error("stamp should be cleared by rollback")
	}
}

// TestWorkflow_StaleGate checks that a stale stamp blocks operations
// without touching a real sandbox.
func TestWorkflow_StaleGate(t *testing.T) {
	h := NewHarness(t)
	name := h.SandboxName("stale")
	h.CreateSandbox(name)

	stale := stamp.New(system.DefaultFS(), h.Root(), config.CompatVersion-1)
	if err := stale.Write(); err != nil {
		t.Fatalf("writing stamp: %v", err)
	}

	o := h.Orchestrator()
	err := o.Stop(context.Background(), name)
	if !errors.HasCode(err, errors.ExitStaleSandbox) {
		t.Fatalf("Stop() error = %v, want stale sandbox", err)
	}
	if s := h.Status(name); s != runtime.StatusRunning {
		t.Errorf("stale sandbox should be left running, status %v", s)
	}

	if err := o.Clean(context.Background(), name, sandbox.CleanTargets{Container: true}); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if s := h.Status(name); s != runtime.StatusNotFound {
		t.Errorf("sandbox should be removed, status %v", s)
	}
	if _, ok, _ := h.Stamps().Read(); ok {
		t.Error("stamp should be cleared")
	}

	events, err := h.Events().Events(name)
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(events) == 0 {
		t.Error("stale block and removal should be recorded")
	}
}

// TestWorkflow_Toolchain creates a real sandbox, installing espflash, and
// runs the toolchain in it. It takes minutes and needs an idf-rust image.
func TestWorkflow_Toolchain(t *testing.T) {
	h := NewHarness(t)
	image := os.Getenv(EnvIDFImage)
	if image == "" {
		t.Skipf("set %s to an idf-rust image to run toolchain tests", EnvIDFImage)
	}
	name := h.SandboxName("toolchain")
	ctx := context.Background()

	mgr := sandbox.NewManager(h.Runtime(), h.Stamps(), sandbox.Config{
		ProjectRoot: h.Root(),
		TargetDir:   config.DefaultTargetDir,
	})
	created, err := mgr.EnsureReady(ctx, sandbox.Sandbox{Name: name, Image: image})
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if !created {
		t.Error("sandbox should have been created")
	}
	if v, _, _ := h.Stamps().Read(); v != config.CompatVersion {
		t.Errorf("stamp = %d, want %d", v, config.CompatVersion)
	}

	d := dispatch.New(h.Runtime())
	for _, argv := range [][]string{{"cargo", "--version"}, {"espflash", "--version"}} {
		res, err := d.Exec(ctx, name, dispatch.Bootstrap(argv), config.MountPoint, dispatch.Wait)
		if err != nil {
			t.Fatalf("%v: %v", argv, err)
		}
		if !res.Success() {
			t.Errorf("%v exited with %d", argv, res.ExitCode)
		}
	}

	// A second call finds the sandbox ready and does nothing.
	created, err = mgr.EnsureReady(ctx, sandbox.Sandbox{Name: name, Image: image})
	if err != nil || created {
		t.Errorf("EnsureReady() = %v, %v; want false, nil", created, err)
	}
}
