// Package app provides the application context for espbox.
// It allows dependency injection for testing.
package app

import (
	"github.com/firefly-engineering/espbox/internal/audit"
	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/logging"
	"github.com/firefly-engineering/espbox/internal/orchestrator"
	"github.com/firefly-engineering/espbox/internal/runtime"
	"github.com/firefly-engineering/espbox/internal/system"
)

// App holds the application dependencies
type App struct {
	// Paths holds the configured paths
	Paths *config.Paths

	// Runtime is the container runtime; nil if none could be found
	Runtime runtime.Runtime

	// FS is the host filesystem
	FS system.FileSystem

	// Executor runs host commands such as the editor
	Executor system.CommandExecutor

	// runtimeErr records why Runtime is nil
	runtimeErr error
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithRuntime sets a custom runtime
func WithRuntime(r runtime.Runtime) Option {
	return func(a *App) {
		a.Runtime = r
	}
}

// WithFS sets a custom filesystem
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(e system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = e
	}
}

// New creates a new App with the given options.
// If runtime is not provided via WithRuntime, it will be auto-detected.
func New(opts ...Option) *App {
	app := &App{
		Paths: config.DefaultPaths(),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.FS == nil {
		app.FS = system.DefaultFS()
	}
	if app.Executor == nil {
		app.Executor = system.DefaultExecutor()
	}

	// Initialize runtime if not provided
	if app.Runtime == nil {
		rt, err := runtime.New(runtime.DefaultConfig())
		if err != nil {
			logging.Debug("failed to initialize runtime", "error", err)
			app.runtimeErr = err
		} else {
			app.Runtime = rt
		}
	}

	return app
}

// RequireRuntime returns an error if no container runtime is available.
func (a *App) RequireRuntime() error {
	if a.Runtime != nil {
		return nil
	}
	return errors.Wrap(errors.ExitRuntimeFailure, "no container runtime available", a.runtimeErr)
}

// Events returns the lifecycle event log under the state directory.
func (a *App) Events() *audit.Logger {
	return audit.NewLogger(a.Paths.StateDir)
}

// Orchestrator returns an orchestrator for project using the app's
// dependencies.
func (a *App) Orchestrator(project orchestrator.Project) *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Options{
		Runtime:  a.Runtime,
		FS:       a.FS,
		Executor: a.Executor,
		Project:  project,
		Events:   a.Events(),
	})
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
