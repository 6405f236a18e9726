// Package sandbox provides sandbox lifecycle management for espbox.
//
// A sandbox is one long-lived container per project, bound at creation to
// an image, a serial device and the project root mounted at /project.
//
// # Prober
//
// Prober maps the runtime's inspect result onto three states: Absent,
// Stopped and Running. A runtime that cannot be reached is an error, never
// Absent, so an outage is not mistaken for "needs creation".
//
// # Manager
//
// Manager.EnsureReady drives a sandbox to Running:
//
//	mgr := sandbox.NewManager(rt, stamps, sandbox.Config{ProjectRoot: root})
//	created, err := mgr.EnsureReady(ctx, sandbox.Sandbox{
//	    Name:   "espbox",
//	    Image:  "espressif/idf-rust:esp32_latest",
//	    Device: "/dev/ttyUSB0",
//	})
//
// # Creation Flow
//
// For an absent sandbox EnsureReady:
//  1. Pulls the image
//  2. Creates the container with the project mount and device mapping
//  3. Writes the version stamp
//  4. Starts the container
//  5. Installs espflash through the toolchain bootstrap script
//
// On failure after step 2 the container is removed and the stamp cleared,
// so a failed creation leaves nothing behind and can simply be retried.
// Stopped sandboxes are started; running sandboxes are left alone. The
// dependency install never runs again for an existing sandbox.
//
// # Concurrency
//
// There is no locking between espbox invocations. Two invocations against
// the same sandbox name race on runtime state: both may observe Absent and
// both attempt creation, in which case the runtime rejects the second
// create and that invocation fails. Re-running it is safe.
package sandbox
