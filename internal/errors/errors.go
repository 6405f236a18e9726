package errors

import (
	"errors"
	"fmt"
)

// Exit codes for espbox
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitStaleSandbox       = 2
	ExitDeviceMismatch     = 3
	ExitPathOutsideProject = 4
	ExitRuntimeFailure     = 5
	ExitConfigError        = 6
	ExitNoCleanupTarget    = 7
)

// EspboxError is the base error type for espbox
type EspboxError struct {
	Code    int
	Message string
	Cause   error
}

func (e *EspboxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *EspboxError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *EspboxError) ExitCode() int {
	return e.Code
}

// New creates a new EspboxError
func New(code int, message string) *EspboxError {
	return &EspboxError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an EspboxError
func Wrap(code int, message string, cause error) *EspboxError {
	return &EspboxError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// StaleSandbox returns an error for a sandbox configured by another
// orchestrator compatibility version.
func StaleSandbox(name string, stamped, current int) *EspboxError {
	return New(ExitStaleSandbox, fmt.Sprintf(
		"sandbox %s was set up by compatibility version %d, this espbox expects %d; run 'espbox clean --container' first",
		name, stamped, current))
}

// CorruptStamp returns an error for a version stamp that cannot be parsed.
// It is treated like a stale sandbox.
func CorruptStamp(name, path string) *EspboxError {
	return New(ExitStaleSandbox, fmt.Sprintf(
		"version stamp %s of sandbox %s is unreadable; run 'espbox clean --container' first",
		path, name))
}

// DeviceMismatch returns an error when a sandbox is bound to a different device
func DeviceMismatch(name, bound, requested string) *EspboxError {
	return New(ExitDeviceMismatch, fmt.Sprintf(
		"sandbox %s is bound to device %s, not %s; run 'espbox clean --container' to rebind",
		name, bound, requested))
}

// PathOutsideProject returns an error for a working directory outside the project root
func PathOutsideProject(path, root string) *EspboxError {
	return New(ExitPathOutsideProject, fmt.Sprintf("path %s is outside the project root %s", path, root))
}

// RuntimeFailed returns an error for container runtime failures
func RuntimeFailed(op, name string, cause error) *EspboxError {
	return Wrap(ExitRuntimeFailure, fmt.Sprintf("container %s of %s failed", op, name), cause)
}

// SubprocessFailed returns an error for an in-sandbox command that exited
// non-zero. The exit status becomes the program's exit code.
func SubprocessFailed(name, command string, status int) *EspboxError {
	code := status
	if code <= 0 {
		code = ExitGeneralError
	}
	return New(code, fmt.Sprintf("%s in sandbox %s exited with status %d", command, name, status))
}

// NoCleanupTarget returns an error for a clean with nothing selected
func NoCleanupTarget() *EspboxError {
	return New(ExitNoCleanupTarget, "nothing to clean: select --container and/or --target")
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *EspboxError {
	return Wrap(ExitConfigError, message, cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *EspboxError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var espErr *EspboxError
	if errors.As(err, &espErr) {
		return espErr.ExitCode()
	}
	return ExitGeneralError
}

// HasCode reports whether err carries the given exit code
func HasCode(err error, code int) bool {
	var espErr *EspboxError
	return errors.As(err, &espErr) && espErr.Code == code
}
