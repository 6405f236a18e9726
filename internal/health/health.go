package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firefly-engineering/espbox/internal/device"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/sandbox"
	"github.com/firefly-engineering/espbox/internal/stamp"
	"github.com/firefly-engineering/espbox/internal/system"
)

// Status summarizes whether a sandbox is usable.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusStale    Status = "stale"
	StatusNoDevice Status = "no-device"
	StatusStopped  Status = "stopped"
	StatusAbsent   Status = "absent"
)

// CheckOptions holds what Check inspects.
type CheckOptions struct {
	Runtime runtime.Runtime
	Stamps  *stamp.Store
	FS      system.FileSystem

	// Device is the device the caller would use; it is checked for
	// presence on the host.
	Device string
}

// CheckResult contains the results of health checks
type CheckResult struct {
	Sandbox       string        `json:"sandbox"`
	State         sandbox.State `json:"-"`
	StateName     string        `json:"state"`
	BoundDevice   string        `json:"bound_device,omitempty"`
	Uptime        string        `json:"uptime,omitempty"`
	Stamp         int           `json:"stamp,omitempty"`
	StampPresent  bool          `json:"stamp_present"`
	StampCorrupt  bool          `json:"stamp_corrupt,omitempty"`
	CompatVersion int           `json:"compat_version"`
	Stale         bool          `json:"stale"`
	Device        string        `json:"device"`
	DevicePresent bool          `json:"device_present"`
	Status        Status        `json:"status"`

	// FirmwareConfig is the host path of the toml_cfg file. The firmware
	// counts as configured once its table there names a WiFi network.
	FirmwareConfig     string `json:"firmware_config,omitempty"`
	FirmwareConfigured bool   `json:"firmware_configured"`
}

// Check gathers everything `espbox status` reports. It never changes the
// sandbox. Runtime failures are returned; stamp corruption is reported in
// the result.
func Check(ctx context.Context, name string, opts CheckOptions) (*CheckResult, error) {
	result := &CheckResult{
		Sandbox:       name,
		CompatVersion: opts.Stamps.Current(),
		Device:        opts.Device,
	}

	info, err := opts.Runtime.Inspect(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect sandbox %s: %w", name, err)
	}

	switch info.Status {
	case runtime.StatusNotFound:
		result.State = sandbox.Absent
	case runtime.StatusRunning:
		result.State = sandbox.Running
		result.Uptime = uptime(info.StartedAt, time.Now())
	default:
		result.State = sandbox.Stopped
	}
	result.StateName = result.State.String()
	if len(info.Devices) > 0 {
		result.BoundDevice = info.Devices[0]
	}

	v, ok, err := opts.Stamps.Read()
	switch {
	case errors.Is(err, stamp.ErrCorrupt):
		result.StampPresent = true
		result.StampCorrupt = true
	case err != nil:
		return nil, err
	default:
		result.Stamp = v
		result.StampPresent = ok
	}
	result.Stale = result.StampCorrupt || (result.StampPresent && result.Stamp != result.CompatVersion)

	if opts.Device != "" && opts.FS != nil {
		result.DevicePresent = device.Exists(opts.FS, opts.Device)
	}

	result.Status = summarize(result)
	return result, nil
}

func summarize(r *CheckResult) Status {
	switch {
	case r.Stale:
		return StatusStale
	case r.State == sandbox.Absent:
		return StatusAbsent
	case r.State == sandbox.Stopped:
		return StatusStopped
	case !r.DevicePresent:
		return StatusNoDevice
	default:
		return StatusHealthy
	}
}

// uptime formats the time since startedAt, or "unknown" if it cannot be
// parsed.
func uptime(startedAt string, now time.Time) string {
	if startedAt == "" {
		return "unknown"
	}

	// Try common timestamp formats
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999 -0700 MST",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, startedAt); err == nil {
			return formatDuration(now.Sub(t))
		}
	}

	return "unknown"
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
