// Package app provides the application context for espbox.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Paths    *config.Paths          // Host state locations
//	    Runtime  runtime.Runtime        // Container runtime
//	    FS       system.FileSystem      // Host filesystem
//	    Executor system.CommandExecutor // Host commands
//	}
//
// # Creating an App
//
// Use New with functional options:
//
//	// Production usage
//	a := app.New()
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithPaths(testPaths),
//	    app.WithRuntime(mockRuntime),
//	    app.WithFS(mockFS),
//	)
//
// # Available Options
//
//	WithPaths(paths)     // Custom path configuration
//	WithRuntime(runtime) // Custom container runtime
//	WithFS(fs)           // Custom filesystem
//	WithExecutor(exec)   // Custom command executor
package app
