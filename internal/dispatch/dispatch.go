// Package dispatch runs commands inside a running sandbox.
//
// Every command runs in one of two modes. Wait runs the command to
// completion with the caller's standard streams attached and returns its
// exit status as a Result. Replace hands the process over to the command:
// on success control never comes back and the command's exit status
// becomes espbox's own.
package dispatch

import (
	"context"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/logging"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/terminal"
)

// Mode selects how a command is dispatched.
type Mode int

const (
	// Wait runs the command and returns its exit status.
	Wait Mode = iota

	// Replace replaces the current process with the command.
	Replace
)

func (m Mode) String() string {
	if m == Replace {
		return "replace"
	}
	return "wait"
}

// Result is the outcome of a command dispatched in Wait mode. A non-zero
// ExitCode is a normal result; only failures to run the command at all are
// returned as errors.
type Result struct {
	ExitCode int
}

// Success reports whether the command exited zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Dispatcher runs commands in sandboxes through a container runtime.
type Dispatcher struct {
	rt          runtime.Runtime
	interactive func() bool
}

// New creates a Dispatcher. Replaced commands get a TTY when stdin is one.
func New(rt runtime.Runtime) *Dispatcher {
	return &Dispatcher{
		rt:          rt,
		interactive: terminal.IsInteractive,
	}
}

// Exec runs argv in the named sandbox with dir as working directory.
// In Replace mode the returned Result is nil and a nil error means the
// process has been handed over.
func (d *Dispatcher) Exec(ctx context.Context, name string, argv []string, dir string, mode Mode) (*Result, error) {
	logging.Debug("dispatching command",
		"sandbox", name,
		"dir", dir,
		"mode", mode,
		"command", shellquote.Join(argv...))

	if mode == Replace {
		return nil, d.rt.ExecReplace(ctx, name, argv, runtime.ExecOptions{
			WorkingDir:  dir,
			Interactive: d.interactive(),
		})
	}

	res, err := d.rt.Exec(ctx, name, argv, runtime.ExecOptions{WorkingDir: dir})
	if err != nil {
		return nil, err
	}
	return &Result{ExitCode: res.ExitCode}, nil
}

// Cargo runs cargo with args under the toolchain bootstrap script.
func (d *Dispatcher) Cargo(ctx context.Context, name string, args []string, dir string, mode Mode) (*Result, error) {
	return d.Exec(ctx, name, Bootstrap(append([]string{"cargo"}, args...)), dir, mode)
}

// Build runs `cargo build`, adding --release for the release profile.
func (d *Dispatcher) Build(ctx context.Context, name, profile, dir string, mode Mode) (*Result, error) {
	return d.Cargo(ctx, name, BuildArgs(profile), dir, mode)
}

// Espflash runs espflash with args under the toolchain bootstrap script.
func (d *Dispatcher) Espflash(ctx context.Context, name string, args []string, dir string, mode Mode) (*Result, error) {
	return d.Exec(ctx, name, Bootstrap(append([]string{"espflash"}, args...)), dir, mode)
}

// BuildArgs returns the cargo arguments building the given profile.
func BuildArgs(profile string) []string {
	args := []string{"build"}
	if profile == config.ProfileRelease {
		args = append(args, "--release")
	}
	return args
}

// Bootstrap wraps argv so it runs after sourcing the toolchain environment
// script inside the sandbox. The script puts the Xtensa Rust toolchain
// and ESP-IDF tools on PATH; without it cargo cannot find the target.
func Bootstrap(argv []string) []string {
	return []string{
		"bash", "-c",
		". " + config.BootstrapScript + " && exec " + shellquote.Join(argv...),
	}
}
