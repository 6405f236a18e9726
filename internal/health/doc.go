// Package health gathers the diagnostics shown by `espbox status`.
//
// Check combines the sandbox state from the runtime, the version stamp
// and the presence of the serial device into one CheckResult:
//
//	result, err := health.Check(ctx, "espbox", health.CheckOptions{
//	    Runtime: rt,
//	    Stamps:  stamps,
//	    FS:      fs,
//	    Device:  "/dev/ttyUSB0",
//	})
//
// # Health Status
//
//	StatusHealthy  - running, stamp current, device plugged in
//	StatusStale    - stamp from another compatibility version (or corrupt)
//	StatusNoDevice - running but the device node is missing on the host
//	StatusStopped  - created but not running
//	StatusAbsent   - no sandbox yet
//
// Check is read-only and is not subject to the stale gate, since it is how
// a user finds out a sandbox is stale.
package health
