// Package runtime provides the container runtime interface espbox drives.
//
// Supported runtimes:
//   - podman: preferred when present
//   - docker: Docker Engine or Docker Desktop
//
// Both are driven through their CLI by DockerRuntime, which shells out via
// system.CommandExecutor. Detection can be overridden with ESPBOX_RUNTIME.
//
// # Runtime Interface
//
// The Runtime interface is the capability set the sandbox lifecycle needs:
//   - Pull, Create, Start, Stop, Remove: container lifecycle
//   - Inspect: state (running, stopped, not found) and bound devices
//   - Exec: blocking command with inherited standard streams
//   - ExecReplace: replace the current process with the command
//
// Inspect distinguishes a missing container (StatusNotFound, nil error) from
// a runtime that could not be reached (non-nil error).
//
// # Mock Runtime
//
// For testing, use NewMockRuntime() to create a mock implementation that can
// be configured with expected responses and used to verify command execution.
package runtime
