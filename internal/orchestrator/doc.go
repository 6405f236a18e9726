// Package orchestrator implements the espbox operations invoked by the CLI:
// exec, cargo, build, flash, monitor, stop, clean and edit, plus the
// read-only status, devices and events.
//
// # Stale Gate
//
// Every operation except clean, edit and the read-only ones first checks
// the project's version stamp. A stamp from another compatibility version
// (or an unreadable one) aborts the operation before the runtime is
// touched, telling the user to run `espbox clean --container`.
//
// # Operations
//
//	exec     gate, map dir, ensure ready, replace with argv
//	cargo    gate, map dir, ensure ready, replace with cargo argv
//	build    gate, map dir, ensure ready, replace with cargo build
//	flash    gate, map dir, check device, ensure ready, wait for cargo
//	         build, replace with espflash flash -p DEV ARTIFACT
//	monitor  gate, map dir, check device, ensure ready, replace with
//	         espflash monitor -p DEV
//	stop     gate, stop if running
//	clean    remove sandbox and/or build output
//	edit     seed and open the firmware cfg.toml on the host
//
// Replaced commands take over the process; their exit status becomes
// espbox's. The build step of flash waits instead, and a failing build
// stops the flash with the build's exit status.
package orchestrator
