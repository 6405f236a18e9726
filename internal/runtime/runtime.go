// Package runtime defines the container runtime interface for espbox.
// The sandbox lifecycle logic only talks to this interface, so the docker
// and podman CLIs and the test mock are interchangeable.
package runtime

import (
	"context"
)

// ContainerStatus represents the state of a container
type ContainerStatus string

const (
	StatusRunning  ContainerStatus = "running"
	StatusStopped  ContainerStatus = "stopped"
	StatusNotFound ContainerStatus = "not-found"
)

// ContainerInfo holds information about a container
type ContainerInfo struct {
	Name      string
	Status    ContainerStatus
	Image     string
	Devices   []string // host device paths mapped into the container
	StartedAt string
}

// ExecResult holds the result of a blocking command inside a container.
// A non-zero ExitCode is a normal result, not an error.
type ExecResult struct {
	ExitCode int
}

// Mount represents a bind mount from the host into a container
type Mount struct {
	// Source is the host path
	Source string

	// Target is the path inside the container
	Target string

	// ReadOnly makes the mount read-only
	ReadOnly bool
}

// CreateOptions holds options for creating a container
type CreateOptions struct {
	Name       string
	Image      string
	Mounts     []Mount
	Device     string // host device node, mapped to the same path inside
	WorkingDir string
}

// ExecOptions holds options for executing a command in a container
type ExecOptions struct {
	WorkingDir  string
	Env         []string
	Interactive bool // Allocate a TTY and keep stdin open
}

// Runtime is the interface that container backends must implement.
//
// Inspect reports a missing container as StatusNotFound with a nil error;
// an error always means the runtime itself could not be asked.
type Runtime interface {
	// Name returns the runtime identifier (e.g., "docker", "podman")
	Name() string

	// Pull fetches an image so creation does not stall on a silent download
	Pull(ctx context.Context, image string) error

	// Create creates a new container but does not start it
	Create(ctx context.Context, opts CreateOptions) error

	// Start starts an existing container
	Start(ctx context.Context, name string) error

	// Stop stops a running container
	Stop(ctx context.Context, name string) error

	// Remove removes a stopped container
	Remove(ctx context.Context, name string) error

	// Inspect returns the container's state and device bindings
	Inspect(ctx context.Context, name string) (*ContainerInfo, error)

	// Exec runs a command inside a running container and waits for it,
	// with the caller's standard streams attached
	Exec(ctx context.Context, name string, command []string, opts ExecOptions) (*ExecResult, error)

	// ExecReplace replaces the current process with the command running
	// inside the container. It only returns on failure to start.
	ExecReplace(ctx context.Context, name string, command []string, opts ExecOptions) error
}
