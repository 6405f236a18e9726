package sandbox

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/firefly-engineering/espbox/internal/audit"
	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/dispatch"
	espErrors "github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/stamp"
	"github.com/firefly-engineering/espbox/internal/system"
)

const projectRoot = "/home/user/fw"

var testSandbox = Sandbox{
	Name:   "espbox",
	Image:  "espressif/idf-rust:esp32_latest",
	Device: "/dev/ttyUSB0",
}

type recorder struct {
	events []audit.EventType
}

func (r *recorder) Record(t audit.EventType, _, _ string) {
	r.events = append(r.events, t)
}

type fixture struct {
	rt     *runtime.MockRuntime
	fs     *system.MockFS
	stamps *stamp.Store
	events *recorder
	mgr    *Manager
}

func newFixture() *fixture {
	f := &fixture{
		rt:     runtime.NewMockRuntime(),
		fs:     system.NewMockFS(),
		events: &recorder{},
	}
	f.stamps = stamp.New(f.fs, projectRoot, config.CompatVersion)
	f.mgr = NewManager(f.rt, f.stamps, Config{
		ProjectRoot: projectRoot,
		TargetDir:   "target",
		FS:          f.fs,
		Events:      f.events,
	})
	return f
}

func (f *fixture) stampValue(t *testing.T) (int, bool) {
	t.Helper()
	v, ok, err := f.stamps.Read()
	if err != nil {
		t.Fatalf("reading stamp: %v", err)
	}
	return v, ok
}

func installCalls(rt *runtime.MockRuntime) int {
	n := 0
	for _, call := range rt.GetCallsFor("Exec") {
		if reflect.DeepEqual(call.Args[1], dispatch.Bootstrap(InstallCommand)) {
			n++
		}
	}
	return n
}

func TestEnsureReady_Absent(t *testing.T) {
	f := newFixture()

	created, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if !created {
		t.Error("EnsureReady() should report creation")
	}

	if state, _ := f.mgr.Prober().Probe(context.Background(), "espbox"); state != Running {
		t.Errorf("state = %v, want running", state)
	}

	if v, ok := f.stampValue(t); !ok || v != config.CompatVersion {
		t.Errorf("stamp = (%d, %v), want (%d, true)", v, ok, config.CompatVersion)
	}

	if n := installCalls(f.rt); n != 1 {
		t.Errorf("dependency install ran %d times, want 1", n)
	}

	want := []string{"Inspect", "Pull", "Create", "Start", "Exec"}
	if got := f.rt.Methods(); !reflect.DeepEqual(got, want) {
		t.Errorf("runtime calls = %v, want %v", got, want)
	}
}

func TestEnsureReady_CreateOptions(t *testing.T) {
	f := newFixture()

	if _, err := f.mgr.EnsureReady(context.Background(), testSandbox); err != nil {
		t.Fatal(err)
	}

	opts := f.rt.GetCallsFor("Create")[0].Args[0].(runtime.CreateOptions)
	if opts.Name != "espbox" || opts.Image != testSandbox.Image || opts.Device != "/dev/ttyUSB0" {
		t.Errorf("CreateOptions = %+v", opts)
	}
	wantMounts := []runtime.Mount{{Source: projectRoot, Target: config.MountPoint}}
	if !reflect.DeepEqual(opts.Mounts, wantMounts) {
		t.Errorf("Mounts = %+v, want %+v", opts.Mounts, wantMounts)
	}
	if opts.WorkingDir != config.MountPoint {
		t.Errorf("WorkingDir = %q", opts.WorkingDir)
	}
}

func TestEnsureReady_Running(t *testing.T) {
	f := newFixture()
	f.rt.AddContainer("espbox", runtime.StatusRunning, "/dev/ttyUSB0")

	created, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if created {
		t.Error("EnsureReady() should not create a running sandbox")
	}

	if got := f.rt.Methods(); !reflect.DeepEqual(got, []string{"Inspect"}) {
		t.Errorf("runtime calls = %v, want only Inspect", got)
	}
	if _, ok := f.stampValue(t); ok {
		t.Error("EnsureReady() must not stamp an existing sandbox")
	}
}

func TestEnsureReady_Stopped(t *testing.T) {
	f := newFixture()
	f.rt.AddContainer("espbox", runtime.StatusStopped, "/dev/ttyUSB0")

	created, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if created {
		t.Error("EnsureReady() should not recreate a stopped sandbox")
	}

	if got := f.rt.Methods(); !reflect.DeepEqual(got, []string{"Inspect", "Start"}) {
		t.Errorf("runtime calls = %v, want [Inspect Start]", got)
	}
	if n := installCalls(f.rt); n != 0 {
		t.Errorf("dependency install ran %d times, want 0", n)
	}
}

func TestEnsureReady_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.mgr.EnsureReady(ctx, testSandbox); err != nil {
			t.Fatalf("EnsureReady() #%d error = %v", i, err)
		}
	}

	if n := len(f.rt.GetCallsFor("Create")); n != 1 {
		t.Errorf("Create called %d times, want 1", n)
	}
	if n := installCalls(f.rt); n != 1 {
		t.Errorf("dependency install ran %d times, want 1", n)
	}
}

func TestEnsureReady_InspectFailure(t *testing.T) {
	f := newFixture()
	f.rt.SetError("Inspect", errors.New("Cannot connect to the Docker daemon"))

	_, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if !espErrors.HasCode(err, espErrors.ExitRuntimeFailure) {
		t.Fatalf("EnsureReady() error = %v, want runtime failure", err)
	}
	if len(f.rt.GetCallsFor("Create")) != 0 {
		t.Error("an unreachable runtime must not lead to creation")
	}
}

func TestEnsureReady_CreateFailure(t *testing.T) {
	f := newFixture()
	f.rt.SetError("Create", errors.New("image not found"))

	if _, err := f.mgr.EnsureReady(context.Background(), testSandbox); err == nil {
		t.Fatal("EnsureReady() should fail")
	}
	if _, ok := f.stampValue(t); ok {
		t.Error("failed creation must leave no stamp")
	}
	if len(f.rt.Containers) != 0 {
		t.Error("failed creation must leave no sandbox")
	}
}

func TestEnsureReady_PullFailureUsesLocalImage(t *testing.T) {
	f := newFixture()
	f.rt.SetError("Pull", errors.New("dial tcp: lookup registry-1.docker.io: no such host"))

	created, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if !created {
		t.Error("EnsureReady() should report creation")
	}
	if info := f.rt.Containers["espbox"]; info == nil || info.Status != runtime.StatusRunning {
		t.Errorf("sandbox = %+v, want running", info)
	}
}

func TestEnsureReady_PullAndCreateFailure(t *testing.T) {
	f := newFixture()
	f.rt.SetError("Pull", errors.New("no such host"))
	f.rt.SetError("Create", errors.New("image not known"))

	_, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if !espErrors.HasCode(err, espErrors.ExitRuntimeFailure) {
		t.Fatalf("EnsureReady() error = %v, want runtime failure", err)
	}
	if !strings.Contains(err.Error(), "no such host") {
		t.Errorf("error %q should mention the pull failure", err)
	}
	if _, ok := f.stampValue(t); ok {
		t.Error("failed creation must leave no stamp")
	}
}

func TestEnsureReady_InstallFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.rt.SetExecResult("espbox", &runtime.ExecResult{ExitCode: 101})

	_, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if err == nil {
		t.Fatal("EnsureReady() should fail when the install fails")
	}
	if code := espErrors.GetExitCode(err); code != 101 {
		t.Errorf("exit code = %d, want 101", code)
	}

	if _, ok := f.stampValue(t); ok {
		t.Error("rollback must clear the stamp")
	}
	if len(f.rt.Containers) != 0 {
		t.Error("rollback must remove the sandbox")
	}
	if len(f.rt.GetCallsFor("Stop")) != 1 {
		t.Error("rollback should stop the started sandbox before removal")
	}

	// Retrying after the cause is fixed creates a fresh sandbox.
	f.rt.SetExecResult("espbox", &runtime.ExecResult{ExitCode: 0})
	created, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if err != nil || !created {
		t.Errorf("retry = (%v, %v), want (true, nil)", created, err)
	}
}

func TestEnsureReady_StampFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.fs.WriteFileErr = errors.New("read-only file system")

	_, err := f.mgr.EnsureReady(context.Background(), testSandbox)
	if !espErrors.HasCode(err, espErrors.ExitConfigError) {
		t.Fatalf("EnsureReady() error = %v, want config error", err)
	}
	if len(f.rt.Containers) != 0 {
		t.Error("rollback must remove the sandbox")
	}
	if len(f.rt.GetCallsFor("Start")) != 0 {
		t.Error("sandbox should not start after stamping failed")
	}
}

func TestEnsureReady_RecordsEvents(t *testing.T) {
	f := newFixture()

	if _, err := f.mgr.EnsureReady(context.Background(), testSandbox); err != nil {
		t.Fatal(err)
	}

	want := []audit.EventType{audit.EventCreate, audit.EventStart, audit.EventInstall}
	if !reflect.DeepEqual(f.events.events, want) {
		t.Errorf("events = %v, want %v", f.events.events, want)
	}
}

func TestStop(t *testing.T) {
	tests := []struct {
		name     string
		status   runtime.ContainerStatus
		wantStop bool
	}{
		{"running", runtime.StatusRunning, true},
		{"stopped", runtime.StatusStopped, false},
		{"absent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.status != "" {
				f.rt.AddContainer("espbox", tt.status)
			}

			if err := f.mgr.Stop(context.Background(), "espbox"); err != nil {
				t.Fatalf("Stop() error = %v", err)
			}
			if got := len(f.rt.GetCallsFor("Stop")) == 1; got != tt.wantStop {
				t.Errorf("runtime Stop called = %v, want %v", got, tt.wantStop)
			}
		})
	}
}

func TestStop_Failure(t *testing.T) {
	f := newFixture()
	f.rt.AddContainer("espbox", runtime.StatusRunning)
	f.rt.SetError("Stop", errors.New("timeout"))

	err := f.mgr.Stop(context.Background(), "espbox")
	if !espErrors.HasCode(err, espErrors.ExitRuntimeFailure) {
		t.Errorf("Stop() error = %v, want runtime failure", err)
	}
}
