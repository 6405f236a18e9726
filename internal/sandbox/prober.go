package sandbox

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/runtime"
)

// State is the lifecycle state of a sandbox.
type State int

const (
	Absent State = iota
	Stopped
	Running
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Prober queries the runtime for sandbox state.
type Prober struct {
	rt runtime.Runtime
}

// NewProber creates a Prober backed by rt.
func NewProber(rt runtime.Runtime) *Prober {
	return &Prober{rt: rt}
}

// Probe returns the state of the named sandbox.
func (p *Prober) Probe(ctx context.Context, name string) (State, error) {
	info, err := p.rt.Inspect(ctx, name)
	if err != nil {
		return Absent, errors.RuntimeFailed("inspect", name, err)
	}

	switch info.Status {
	case runtime.StatusNotFound:
		return Absent, nil
	case runtime.StatusRunning:
		return Running, nil
	default:
		return Stopped, nil
	}
}

// DeviceOf returns the host device the named sandbox was created with, or
// "" if it has none. The sandbox must exist.
func (p *Prober) DeviceOf(ctx context.Context, name string) (string, error) {
	info, err := p.rt.Inspect(ctx, name)
	if err != nil {
		return "", errors.RuntimeFailed("inspect", name, err)
	}
	if info.Status == runtime.StatusNotFound {
		return "", fmt.Errorf("sandbox %s does not exist", name)
	}
	if len(info.Devices) == 0 {
		return "", nil
	}
	return info.Devices[0], nil
}
