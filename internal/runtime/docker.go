package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/firefly-engineering/espbox/internal/logging"
	"github.com/firefly-engineering/espbox/internal/system"
)

// DockerRuntime implements the Runtime interface using the Docker or Podman
// CLI. Both accept the same subset of flags espbox relies on.
type DockerRuntime struct {
	// Command is the container command to use (docker or podman)
	Command string

	// Executor runs the CLI. Defaults to system.DefaultExecutor().
	Executor system.CommandExecutor
}

// NewDockerRuntime creates a runtime driving the given CLI command.
func NewDockerRuntime(command string) *DockerRuntime {
	return &DockerRuntime{
		Command:  command,
		Executor: system.DefaultExecutor(),
	}
}

// Name returns the runtime identifier
func (r *DockerRuntime) Name() string {
	return r.Command
}

// runCmd executes a docker/podman command and returns its output
func (r *DockerRuntime) runCmd(ctx context.Context, args ...string) (string, error) {
	output, err := r.Executor.Execute(ctx, r.Command, args...)
	if err != nil {
		return string(output), fmt.Errorf("%s %s failed: %s: %w", r.Command, args[0], strings.TrimSpace(string(output)), err)
	}
	return string(output), nil
}

// isNoSuchContainer reports whether CLI output says the container is missing.
// Docker prints "No such container", podman "no such container" or
// "no such object".
func isNoSuchContainer(output string) bool {
	return strings.Contains(strings.ToLower(output), "no such")
}

// Pull fetches an image
func (r *DockerRuntime) Pull(ctx context.Context, image string) error {
	logging.Debug("pulling image", "image", image, "runtime", r.Command)
	return r.Executor.ExecuteInteractive(ctx, r.Command, "pull", image)
}

// Create creates a container that idles until commands are exec'd into it
func (r *DockerRuntime) Create(ctx context.Context, opts CreateOptions) error {
	logging.Debug("creating container", "name", opts.Name, "image", opts.Image, "runtime", r.Command)

	args := []string{"create", "--name", opts.Name}

	for _, m := range opts.Mounts {
		spec := m.Source + ":" + m.Target
		if m.ReadOnly {
			spec += ":ro"
		}
		args = append(args, "-v", spec)
	}

	if opts.WorkingDir != "" {
		args = append(args, "-w", opts.WorkingDir)
	}

	if opts.Device != "" {
		args = append(args, "--device", opts.Device+":"+opts.Device)
	}

	// Keep the container alive without depending on the image's entrypoint.
	args = append(args, "--entrypoint", "tail", opts.Image, "-f", "/dev/null")

	_, err := r.runCmd(ctx, args...)
	return err
}

// Start starts an existing container
func (r *DockerRuntime) Start(ctx context.Context, name string) error {
	logging.Debug("starting container", "container", name)

	_, err := r.runCmd(ctx, "start", name)
	return err
}

// Stop stops a running container
func (r *DockerRuntime) Stop(ctx context.Context, name string) error {
	logging.Debug("stopping container", "container", name)

	_, err := r.runCmd(ctx, "stop", name)
	return err
}

// Remove removes a container
func (r *DockerRuntime) Remove(ctx context.Context, name string) error {
	logging.Debug("removing container", "container", name)

	_, err := r.runCmd(ctx, "rm", name)
	return err
}

// dockerInspect holds the relevant fields from docker inspect
type dockerInspect struct {
	State struct {
		Status    string `json:"Status"`
		Running   bool   `json:"Running"`
		StartedAt string `json:"StartedAt"`
	} `json:"State"`
	Config struct {
		Image string `json:"Image"`
	} `json:"Config"`
	HostConfig struct {
		Devices []struct {
			PathOnHost      string `json:"PathOnHost"`
			PathInContainer string `json:"PathInContainer"`
		} `json:"Devices"`
	} `json:"HostConfig"`
}

// Inspect returns the state and device bindings of a container.
// A missing container is StatusNotFound; any other failure is an error.
func (r *DockerRuntime) Inspect(ctx context.Context, name string) (*ContainerInfo, error) {
	info := &ContainerInfo{
		Name:   name,
		Status: StatusNotFound,
	}

	output, err := r.runCmd(ctx, "inspect", "--type", "container", name)
	if err != nil {
		if isNoSuchContainer(output) {
			return info, nil
		}
		return nil, err
	}

	var inspects []dockerInspect
	if err := json.Unmarshal([]byte(output), &inspects); err != nil {
		return nil, fmt.Errorf("failed to parse %s inspect output: %w", r.Command, err)
	}

	if len(inspects) == 0 {
		return info, nil
	}

	inspect := inspects[0]
	if inspect.State.Running || inspect.State.Status == "running" {
		info.Status = StatusRunning
	} else {
		info.Status = StatusStopped
	}

	info.StartedAt = inspect.State.StartedAt
	info.Image = inspect.Config.Image
	for _, d := range inspect.HostConfig.Devices {
		info.Devices = append(info.Devices, d.PathOnHost)
	}

	return info, nil
}

// execArgs builds the argument list for docker exec. keepStdin forwards
// stdin to the command even when no TTY is allocated.
func (r *DockerRuntime) execArgs(name string, command []string, opts ExecOptions, keepStdin bool) []string {
	args := []string{"exec"}

	switch {
	case opts.Interactive:
		args = append(args, "-it")
	case keepStdin:
		args = append(args, "-i")
	}

	if opts.WorkingDir != "" {
		args = append(args, "-w", opts.WorkingDir)
	}

	for _, env := range opts.Env {
		args = append(args, "-e", env)
	}

	args = append(args, name)
	return append(args, command...)
}

// Exec runs a command inside a container with the caller's standard streams
// attached and waits for it to finish
func (r *DockerRuntime) Exec(ctx context.Context, name string, command []string, opts ExecOptions) (*ExecResult, error) {
	args := r.execArgs(name, command, opts, false)
	logging.Debug("exec in container", "container", name, "args", args)

	err := r.Executor.ExecuteInteractive(ctx, r.Command, args...)
	if err != nil {
		if code, ok := system.ExitStatus(err); ok {
			return &ExecResult{ExitCode: code}, nil
		}
		return nil, fmt.Errorf("%s exec failed: %w", r.Command, err)
	}

	return &ExecResult{ExitCode: 0}, nil
}

// ExecReplace replaces the current process with `docker exec`. The command
// owns all standard streams, so stdin stays open even without a TTY.
func (r *DockerRuntime) ExecReplace(ctx context.Context, name string, command []string, opts ExecOptions) error {
	args := r.execArgs(name, command, opts, true)
	logging.Debug("replacing process with container exec", "container", name, "args", args)

	if err := r.Executor.ReplaceProcess(r.Command, args...); err != nil {
		return fmt.Errorf("failed to exec %s: %w", r.Command, err)
	}
	return nil
}

// Ensure DockerRuntime implements Runtime
var _ Runtime = (*DockerRuntime)(nil)
