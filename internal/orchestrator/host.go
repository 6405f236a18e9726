package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/device"
	espErrors "github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/health"
	"github.com/firefly-engineering/espbox/internal/logging"
	"github.com/firefly-engineering/espbox/internal/manifest"
)

// Edit opens the firmware config file in editor on the host, seeding it
// with empty settings first if it does not exist. It is not gated and
// never touches the sandbox.
func (o *Orchestrator) Edit(ctx context.Context, editor string) error {
	p, crate, err := o.firmwareConfig()
	if err != nil {
		return err
	}

	seeded, err := manifest.SeedFirmwareConfig(o.fs, p, crate)
	if err != nil {
		return espErrors.ConfigError("failed to seed firmware config", err)
	}
	if seeded {
		logging.UserInfo("Created %s", p)
	}

	argv, err := shellquote.Split(editor)
	if err != nil || len(argv) == 0 {
		return espErrors.ValidationError(fmt.Sprintf("invalid editor command %q", editor))
	}
	argv = append(argv, p)

	logging.Debug("opening editor", "argv", argv)
	if err := o.executor.ExecuteInteractive(ctx, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("editor %s failed: %w", argv[0], err)
	}
	return nil
}

// firmwareConfig returns the host path of the firmware config file and the
// table name the firmware reads its settings from.
func (o *Orchestrator) firmwareConfig() (path, crate string, err error) {
	path, err = manifest.FirmwareConfigPath(o.project.Root, o.project.Config.Firmware.Config)
	if err != nil {
		return "", "", espErrors.ConfigError("invalid firmware config path", err)
	}

	crate, err = manifest.PackageName(o.fs, o.project.Root)
	if err != nil {
		crate = filepath.Base(o.project.Root)
		logging.Debug("no package name, using directory name", "crate", crate, "error", err)
	}
	return path, crate, nil
}

// Status reports the sandbox's state without changing it. It is not
// gated so a stale sandbox can still be inspected.
func (o *Orchestrator) Status(ctx context.Context, name, dev string) (*health.CheckResult, error) {
	result, err := health.Check(ctx, name, health.CheckOptions{
		Runtime: o.rt,
		Stamps:  o.stamps,
		FS:      o.fs,
		Device:  dev,
	})
	if err != nil {
		return nil, err
	}

	p, crate, err := o.firmwareConfig()
	if err != nil {
		return nil, err
	}
	result.FirmwareConfig = p
	settings, ok, err := manifest.LoadFirmwareSettings(o.fs, p, crate)
	if err != nil {
		logging.Warn("cannot read firmware config", "path", p, "error", err)
	}
	result.FirmwareConfigured = ok && settings.WifiSSID != ""
	return result, nil
}

// Devices lists the serial devices attached to the host.
func (o *Orchestrator) Devices() ([]device.Device, error) {
	return device.Discover(o.fs)
}

// ResolveDevice decides which host device a sandbox should use. An explicit
// flag wins, then espbox.toml, then discovery; with nothing attached the
// built-in default is used.
func (o *Orchestrator) ResolveDevice(flag string, interactive bool, pick device.Picker) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if o.project.Config.Sandbox.Device != "" {
		return o.project.Config.Sandbox.Device, nil
	}

	devices, err := device.Discover(o.fs)
	if err != nil {
		logging.Debug("device discovery failed", "error", err)
		devices = nil
	}

	dev, err := device.Select(devices, config.DefaultDevice, interactive, pick)
	if errors.Is(err, device.ErrCancelled) {
		return "", espErrors.ValidationError("no device selected")
	}
	return dev, err
}
