package sandbox

import (
	"context"
	"fmt"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/espbox/internal/audit"
	"github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/logging"
)

// Remove stops and removes the sandbox, then clears the version stamp.
// The stamp is cleared even when the sandbox is already absent, so a
// leftover stamp never outlives its sandbox.
func (m *Manager) Remove(ctx context.Context, name string) error {
	state, err := m.prober.Probe(ctx, name)
	if err != nil {
		return err
	}

	if state == Running {
		logging.Debug("stopping sandbox before removal", "name", name)
		if err := m.rt.Stop(ctx, name); err != nil {
			return errors.RuntimeFailed("stop", name, err)
		}
		m.cfg.Events.Record(audit.EventStop, name, "")
	}

	if state != Absent {
		logging.Debug("removing sandbox", "name", name)
		if err := m.rt.Remove(ctx, name); err != nil {
			return errors.RuntimeFailed("remove", name, err)
		}
		m.cfg.Events.Record(audit.EventRemove, name, "")
	}

	if err := m.stamps.Clear(); err != nil {
		return errors.ConfigError("failed to clear version stamp", err)
	}
	return nil
}

// BuildOutputDir returns the host build-output directory. It is confined
// to the project root even if target_dir contains ".." or symlinks.
func (m *Manager) BuildOutputDir() (string, error) {
	dir, err := securejoin.SecureJoin(m.cfg.ProjectRoot, m.cfg.TargetDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve build output directory: %w", err)
	}
	return dir, nil
}

// Clean removes the selected targets. Selecting nothing is an error.
func (m *Manager) Clean(ctx context.Context, name string, targets CleanTargets) error {
	if targets.Empty() {
		return errors.NoCleanupTarget()
	}

	if targets.Container {
		if err := m.Remove(ctx, name); err != nil {
			return err
		}
		logging.UserSuccess("Removed sandbox %s", name)
	}

	if targets.BuildOutput {
		dir, err := m.BuildOutputDir()
		if err != nil {
			return err
		}
		if dir == m.cfg.ProjectRoot {
			return errors.ValidationError("build output directory resolves to the project root; refusing to delete it")
		}
		logging.Debug("removing build output", "path", dir)
		if err := m.cfg.FS.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		logging.UserSuccess("Removed build output %s", dir)
	}

	m.cfg.Events.Record(audit.EventClean, name,
		fmt.Sprintf("container=%t build_output=%t", targets.Container, targets.BuildOutput))
	return nil
}
