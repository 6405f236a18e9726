// Package logging provides logging utilities for espbox.
//
// Two kinds of output are kept apart:
//   - Debug logging: structured slog records, shown with --verbose
//     (text) or --json (JSON lines), written to stderr
//   - User output: short status lines for the person at the terminal
//
// Every container runtime call is logged at debug level with its argv, so
// `espbox -v build` shows exactly what was sent to docker or podman.
//
// User output helpers prepend a status indicator:
//
//	logging.UserInfo("Creating sandbox %s...", name)     // ℹ, stdout
//	logging.UserSuccess("Sandbox %s ready", name)         // ✓, stdout
//	logging.UserWarning("device %s not present", dev)     // ⚠, stderr
//	logging.UserError("flash failed: %v", err)            // ✗, stderr
package logging
