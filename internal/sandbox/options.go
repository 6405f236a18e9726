package sandbox

import (
	"github.com/firefly-engineering/espbox/internal/audit"
	"github.com/firefly-engineering/espbox/internal/system"
)

// Sandbox identifies the container an operation targets. It is built per
// invocation from flags and espbox.toml and passed explicitly to every
// lifecycle call.
type Sandbox struct {
	// Name is the container name
	Name string

	// Image is the image the container is created from
	Image string

	// Device is the host serial device mapped into the container
	Device string
}

// Config holds the project-level settings a Manager works with.
type Config struct {
	// ProjectRoot is the host directory mounted into the sandbox
	ProjectRoot string

	// TargetDir is the build-output directory, relative to ProjectRoot
	TargetDir string

	// FS is used to delete build output. Defaults to system.DefaultFS().
	FS system.FileSystem

	// Events receives lifecycle events. Defaults to audit.Discard.
	Events audit.Recorder
}

// CleanTargets selects what Clean removes.
type CleanTargets struct {
	// Container removes the sandbox and its version stamp
	Container bool

	// BuildOutput deletes the build-output directory on the host
	BuildOutput bool
}

// Empty reports whether no target is selected.
func (t CleanTargets) Empty() bool {
	return !t.Container && !t.BuildOutput
}
