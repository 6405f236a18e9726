// Package errors provides typed errors with exit codes for espbox.
//
// # Error Types
//
// EspboxError is the base error type that wraps an error with an exit code:
//
//	type EspboxError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess            = 0  // Success
//	ExitGeneralError       = 1  // Validation and unknown errors
//	ExitStaleSandbox       = 2  // Version stamp does not match
//	ExitDeviceMismatch     = 3  // Sandbox bound to another device
//	ExitPathOutsideProject = 4  // Working directory escapes project root
//	ExitRuntimeFailure     = 5  // Container runtime unreachable or failed
//	ExitConfigError        = 6  // espbox.toml, Cargo.toml or stamp unreadable
//	ExitNoCleanupTarget    = 7  // clean invoked with nothing selected
//
// A command that fails inside the sandbox during a blocking dispatch
// (SubprocessFailed) uses the command's own exit status as the code.
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
