package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/firefly-engineering/espbox/internal/audit"
	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/dispatch"
	espErrors "github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/logging"
	"github.com/firefly-engineering/espbox/internal/manifest"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/sandbox"
	"github.com/firefly-engineering/espbox/internal/stamp"
	"github.com/firefly-engineering/espbox/internal/system"
	"github.com/firefly-engineering/espbox/internal/workspace"
)

// Project is the firmware project an Orchestrator works on.
type Project struct {
	// Root is the host directory mounted at config.MountPoint
	Root string

	// Config is the project's espbox.toml merged over defaults
	Config *config.ProjectConfig
}

// Request describes one invocation. It is built by the CLI and discarded
// once the operation finishes.
type Request struct {
	Sandbox sandbox.Sandbox

	// WorkDir is a host directory inside the project; empty means the
	// project root.
	WorkDir string

	// Profile is the cargo build profile for build and flash.
	Profile string

	// Args are passed through to the command.
	Args []string
}

// Options configures an Orchestrator.
type Options struct {
	Runtime  runtime.Runtime
	FS       system.FileSystem
	Executor system.CommandExecutor
	Project  Project
	Events   audit.Recorder

	// CompatVersion defaults to config.CompatVersion.
	CompatVersion int
}

// Orchestrator composes the lifecycle, dispatch and path mapping into the
// user-facing operations.
type Orchestrator struct {
	rt        runtime.Runtime
	fs        system.FileSystem
	executor  system.CommandExecutor
	project   Project
	events    audit.Recorder
	stamps    *stamp.Store
	lifecycle *sandbox.Manager
	dispatch  *dispatch.Dispatcher
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.FS == nil {
		opts.FS = system.DefaultFS()
	}
	if opts.Executor == nil {
		opts.Executor = system.DefaultExecutor()
	}
	if opts.Events == nil {
		opts.Events = audit.Discard
	}
	if opts.CompatVersion == 0 {
		opts.CompatVersion = config.CompatVersion
	}
	if opts.Project.Config == nil {
		opts.Project.Config = config.Default()
	}

	stamps := stamp.New(opts.FS, opts.Project.Root, opts.CompatVersion)
	return &Orchestrator{
		rt:       opts.Runtime,
		fs:       opts.FS,
		executor: opts.Executor,
		project:  opts.Project,
		events:   opts.Events,
		stamps:   stamps,
		lifecycle: sandbox.NewManager(opts.Runtime, stamps, sandbox.Config{
			ProjectRoot: opts.Project.Root,
			TargetDir:   opts.Project.Config.Build.TargetDir,
			FS:          opts.FS,
			Events:      opts.Events,
		}),
		dispatch: dispatch.New(opts.Runtime),
	}
}

// Stamps returns the project's version stamp store.
func (o *Orchestrator) Stamps() *stamp.Store {
	return o.stamps
}

// CheckStale fails if the project's sandbox was stamped by another
// compatibility version. Every gated operation runs it first; callers may
// also run it before prompting the user for anything.
func (o *Orchestrator) CheckStale(name string) error {
	stale, err := o.stamps.IsStale()
	if err != nil {
		return espErrors.ConfigError("failed to check version stamp", err)
	}
	if !stale {
		return nil
	}

	v, _, err := o.stamps.Read()
	o.events.Record(audit.EventStale, name, fmt.Sprintf("stamp=%d current=%d", v, o.stamps.Current()))
	if errors.Is(err, stamp.ErrCorrupt) {
		return espErrors.CorruptStamp(name, o.stamps.Path())
	}
	return espErrors.StaleSandbox(name, v, o.stamps.Current())
}

// prepare runs the stale gate, maps the working directory and brings the
// sandbox up. It returns the working directory inside the sandbox.
func (o *Orchestrator) prepare(ctx context.Context, req Request, checkDevice bool) (string, error) {
	if err := o.CheckStale(req.Sandbox.Name); err != nil {
		return "", err
	}

	dir, err := workspace.Map(o.project.Root, config.MountPoint, req.WorkDir)
	if err != nil {
		return "", err
	}

	if checkDevice {
		if err := o.checkDevice(ctx, req.Sandbox); err != nil {
			return "", err
		}
	}

	if _, err := o.lifecycle.EnsureReady(ctx, req.Sandbox); err != nil {
		return "", err
	}
	return dir, nil
}

// checkDevice rejects a request for a device other than the one an
// existing sandbox was created with. It runs before the sandbox is
// started so a mismatch changes nothing.
func (o *Orchestrator) checkDevice(ctx context.Context, sb sandbox.Sandbox) error {
	prober := o.lifecycle.Prober()

	state, err := prober.Probe(ctx, sb.Name)
	if err != nil {
		return err
	}
	if state == sandbox.Absent {
		return nil
	}

	bound, err := prober.DeviceOf(ctx, sb.Name)
	if err != nil {
		return err
	}
	if bound != sb.Device {
		o.events.Record(audit.EventDeviceMismatch, sb.Name, fmt.Sprintf("bound=%s requested=%s", bound, sb.Device))
		return espErrors.DeviceMismatch(sb.Name, bound, sb.Device)
	}
	return nil
}

// Exec replaces espbox with req.Args run inside the sandbox.
func (o *Orchestrator) Exec(ctx context.Context, req Request) error {
	if len(req.Args) == 0 {
		return espErrors.ValidationError("exec needs a command to run")
	}

	dir, err := o.prepare(ctx, req, false)
	if err != nil {
		return err
	}

	_, err = o.dispatch.Exec(ctx, req.Sandbox.Name, req.Args, dir, dispatch.Replace)
	return o.replaceErr(req.Sandbox.Name, err)
}

// Cargo replaces espbox with cargo run inside the sandbox.
func (o *Orchestrator) Cargo(ctx context.Context, req Request) error {
	dir, err := o.prepare(ctx, req, false)
	if err != nil {
		return err
	}

	_, err = o.dispatch.Cargo(ctx, req.Sandbox.Name, req.Args, dir, dispatch.Replace)
	return o.replaceErr(req.Sandbox.Name, err)
}

// Build replaces espbox with cargo build for req.Profile.
func (o *Orchestrator) Build(ctx context.Context, req Request) error {
	profile := o.profile(req)
	dir, err := o.prepare(ctx, req, false)
	if err != nil {
		return err
	}

	logging.Info("building firmware", "sandbox", req.Sandbox.Name, "profile", profile, "dir", dir)
	_, err = o.dispatch.Cargo(ctx, req.Sandbox.Name, append(dispatch.BuildArgs(profile), req.Args...), dir, dispatch.Replace)
	return o.replaceErr(req.Sandbox.Name, err)
}

// Flash builds the firmware, waits for the build, then replaces espbox
// with espflash writing the artifact to the device.
func (o *Orchestrator) Flash(ctx context.Context, req Request) error {
	profile := o.profile(req)
	dir, err := o.prepare(ctx, req, true)
	if err != nil {
		return err
	}

	res, err := o.dispatch.Build(ctx, req.Sandbox.Name, profile, dir, dispatch.Wait)
	if err != nil {
		return espErrors.RuntimeFailed("exec", req.Sandbox.Name, err)
	}
	if !res.Success() {
		return espErrors.SubprocessFailed(req.Sandbox.Name, "cargo build", res.ExitCode)
	}

	artifact, err := o.artifactPath(req.WorkDir, profile)
	if err != nil {
		return err
	}

	logging.UserInfo("Flashing %s to %s", artifact, req.Sandbox.Device)
	args := append([]string{"flash", "-p", req.Sandbox.Device}, req.Args...)
	args = append(args, artifact)
	_, err = o.dispatch.Espflash(ctx, req.Sandbox.Name, args, dir, dispatch.Replace)
	return o.replaceErr(req.Sandbox.Name, err)
}

// Monitor replaces espbox with espflash's serial monitor on the device.
func (o *Orchestrator) Monitor(ctx context.Context, req Request) error {
	dir, err := o.prepare(ctx, req, true)
	if err != nil {
		return err
	}

	args := append([]string{"monitor", "-p", req.Sandbox.Device}, req.Args...)
	_, err = o.dispatch.Espflash(ctx, req.Sandbox.Name, args, dir, dispatch.Replace)
	return o.replaceErr(req.Sandbox.Name, err)
}

// Stop stops the sandbox if it is running.
func (o *Orchestrator) Stop(ctx context.Context, name string) error {
	if err := o.CheckStale(name); err != nil {
		return err
	}
	return o.lifecycle.Stop(ctx, name)
}

// Clean removes the selected targets. It is not gated, since it is how a
// stale sandbox gets cleared.
func (o *Orchestrator) Clean(ctx context.Context, name string, targets sandbox.CleanTargets) error {
	return o.lifecycle.Clean(ctx, name, targets)
}

func (o *Orchestrator) profile(req Request) string {
	if req.Profile != "" {
		return req.Profile
	}
	return o.project.Config.Build.Profile
}

// artifactPath returns the sandbox path of the firmware image cargo built
// in workDir for profile.
func (o *Orchestrator) artifactPath(workDir, profile string) (string, error) {
	hostDir := o.project.Root
	if workDir != "" {
		rel, err := workspace.Rel(o.project.Root, workDir)
		if err != nil {
			return "", err
		}
		hostDir = filepath.Join(o.project.Root, rel)
	}

	crate, err := manifest.FindCrate(o.fs, hostDir, o.project.Root)
	if err != nil {
		return "", espErrors.ConfigError("cannot determine firmware artifact", err)
	}
	p, err := manifest.ArtifactPath(o.project.Root, crate, o.project.Config.Build.TargetDir, profile)
	if err != nil {
		return "", espErrors.ConfigError("cannot determine firmware artifact", err)
	}
	return p, nil
}

// replaceErr wraps a failure to hand the process over to the sandbox.
func (o *Orchestrator) replaceErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return espErrors.RuntimeFailed("exec", name, err)
}
