package integration

import (
	"context"
	"testing"

	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/runtime"
)

// TestRuntime_ContainerLifecycle drives a container through every runtime
// operation espbox uses.
func TestRuntime_ContainerLifecycle(t *testing.T) {
	h := NewHarness(t)
	rt := h.Runtime()
	ctx := context.Background()
	name := h.SandboxName("lifecycle")

	t.Log("Creating container...")
	h.CreateSandbox(name)

	info, err := rt.Inspect(ctx, name)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Status != runtime.StatusRunning {
		t.Errorf("expected StatusRunning, got %v", info.Status)
	}
	if info.StartedAt == "" {
		t.Error("StartedAt should be set for a running container")
	}

	t.Log("Executing commands in container...")
	result, err := rt.Exec(ctx, name, []string{"test", "-f", "Cargo.toml"}, runtime.ExecOptions{
		WorkingDir: config.MountPoint,
	})
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("project should be mounted at %s, exit code %d", config.MountPoint, result.ExitCode)
	}

	result, err = rt.Exec(ctx, name, []string{"sh", "-c", "exit 3"}, runtime.ExecOptions{})
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}

	t.Log("Stopping container...")
	if err := rt.Stop(ctx, name); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s := h.Status(name); s != runtime.StatusStopped {
		t.Errorf("expected StatusStopped after Stop, got %v", s)
	}

	t.Log("Starting container...")
	if err := rt.Start(ctx, name); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s := h.Status(name); s != runtime.StatusRunning {
		t.Errorf("expected StatusRunning after Start, got %v", s)
	}

	t.Log("Removing container...")
	if err := rt.Stop(ctx, name); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := rt.Remove(ctx, name); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s := h.Status(name); s != runtime.StatusNotFound {
		t.Errorf("expected StatusNotFound after Remove, got %v", s)
	}
}

func TestRuntime_InspectNotFound(t *testing.T) {
	h := NewHarness(t)

	info, err := h.Runtime().Inspect(context.Background(), "espbox-it-does-not-exist")
	if err != nil {
		t.Fatalf("Inspect of a missing container should not fail: %v", err)
	}
	if info.Status != runtime.StatusNotFound {
		t.Errorf("expected StatusNotFound, got %v", info.Status)
	}
}

func TestRuntime_RemoveMissing(t *testing.T) {
	h := NewHarness(t)

	if err := h.Runtime().Remove(context.Background(), "espbox-it-does-not-exist"); err == nil {
		t.Error("Remove of a missing container should fail")
	}
}
