package sandbox

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/espbox/internal/audit"
	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/dispatch"
	"github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/logging"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/stamp"
	"github.com/firefly-engineering/espbox/internal/system"
)

// InstallCommand installs the sandbox-local tools espbox needs. It runs once,
// right after the sandbox is created.
var InstallCommand = []string{"cargo", "install", "espflash", "--locked"}

// Manager creates, starts, stops and removes sandboxes.
type Manager struct {
	rt     runtime.Runtime
	prober *Prober
	stamps *stamp.Store
	cfg    Config
}

// NewManager creates a Manager for one project.
func NewManager(rt runtime.Runtime, stamps *stamp.Store, cfg Config) *Manager {
	if cfg.FS == nil {
		cfg.FS = system.DefaultFS()
	}
	if cfg.Events == nil {
		cfg.Events = audit.Discard
	}
	if cfg.TargetDir == "" {
		cfg.TargetDir = config.DefaultTargetDir
	}
	return &Manager{
		rt:     rt,
		prober: NewProber(rt),
		stamps: stamps,
		cfg:    cfg,
	}
}

// Prober returns the Prober the Manager uses.
func (m *Manager) Prober() *Prober {
	return m.prober
}

// EnsureReady brings the sandbox to Running, creating it if absent.
// created reports whether a new sandbox was made.
func (m *Manager) EnsureReady(ctx context.Context, sb Sandbox) (created bool, err error) {
	state, err := m.prober.Probe(ctx, sb.Name)
	if err != nil {
		return false, err
	}
	logging.Debug("sandbox state", "name", sb.Name, "state", state)

	switch state {
	case Absent:
		if err := m.create(ctx, sb); err != nil {
			return false, err
		}
		return true, nil
	case Stopped:
		if err := m.start(ctx, sb.Name); err != nil {
			return false, err
		}
	}

	return false, nil
}

// create makes a new sandbox, stamps it, starts it and installs its tools.
// Any failure after the container exists rolls the creation back.
func (m *Manager) create(ctx context.Context, sb Sandbox) (err error) {
	logging.Info("creating sandbox", "name", sb.Name, "image", sb.Image, "device", sb.Device)

	// Create can still use a local image when the pull fails.
	pullErr := m.rt.Pull(ctx, sb.Image)
	if pullErr != nil {
		logging.UserWarning("Could not pull %s, trying a local copy: %v", sb.Image, pullErr)
	}

	opts := runtime.CreateOptions{
		Name:  sb.Name,
		Image: sb.Image,
		Mounts: []runtime.Mount{{
			Source: m.cfg.ProjectRoot,
			Target: config.MountPoint,
		}},
		Device:     sb.Device,
		WorkingDir: config.MountPoint,
	}
	if err := m.rt.Create(ctx, opts); err != nil {
		if pullErr != nil {
			err = fmt.Errorf("%w (pull failed: %v)", err, pullErr)
		}
		return errors.RuntimeFailed("create", sb.Name, err)
	}
	m.cfg.Events.Record(audit.EventCreate, sb.Name, fmt.Sprintf("image=%s device=%s", sb.Image, sb.Device))

	defer func() {
		if err != nil {
			m.rollback(ctx, sb.Name)
		}
	}()

	if err := m.stamps.Write(); err != nil {
		return errors.ConfigError("failed to stamp new sandbox", err)
	}

	if err := m.start(ctx, sb.Name); err != nil {
		return err
	}

	logging.UserInfo("Installing espflash into sandbox %s (first run only)...", sb.Name)
	res, err := m.rt.Exec(ctx, sb.Name, dispatch.Bootstrap(InstallCommand), runtime.ExecOptions{
		WorkingDir: config.MountPoint,
	})
	if err != nil {
		return errors.RuntimeFailed("exec", sb.Name, err)
	}
	if res.ExitCode != 0 {
		return errors.SubprocessFailed(sb.Name, "dependency install", res.ExitCode)
	}
	m.cfg.Events.Record(audit.EventInstall, sb.Name, "espflash")

	return nil
}

// rollback removes a half-created sandbox and its stamp. Failures are only
// logged so the original error reaches the user.
func (m *Manager) rollback(ctx context.Context, name string) {
	logging.Warn("rolling back sandbox creation", "name", name)
	m.cfg.Events.Record(audit.EventRollback, name, "")

	if state, err := m.prober.Probe(ctx, name); err == nil && state == Running {
		if err := m.rt.Stop(ctx, name); err != nil {
			logging.Debug("stop during rollback", "name", name, "error", err)
		}
	}
	if err := m.rt.Remove(ctx, name); err != nil {
		logging.Warn("failed to remove sandbox during rollback", "name", name, "error", err)
	}
	if err := m.stamps.Clear(); err != nil {
		logging.Warn("failed to clear version stamp during rollback", "error", err)
	}
}

func (m *Manager) start(ctx context.Context, name string) error {
	logging.Debug("starting sandbox", "name", name)
	if err := m.rt.Start(ctx, name); err != nil {
		return errors.RuntimeFailed("start", name, err)
	}
	m.cfg.Events.Record(audit.EventStart, name, "")
	return nil
}

// Stop stops the sandbox if it is running. Stopping a stopped or absent
// sandbox does nothing.
func (m *Manager) Stop(ctx context.Context, name string) error {
	state, err := m.prober.Probe(ctx, name)
	if err != nil {
		return err
	}
	if state != Running {
		logging.Debug("sandbox not running, nothing to stop", "name", name, "state", state)
		return nil
	}

	if err := m.rt.Stop(ctx, name); err != nil {
		return errors.RuntimeFailed("stop", name, err)
	}
	m.cfg.Events.Record(audit.EventStop, name, "")
	return nil
}
