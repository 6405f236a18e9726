// Package config provides configuration types and loading for espbox.
//
// # Project Configuration
//
// An optional espbox.toml at the project root overrides the built-in
// defaults. Command-line flags override both.
//
//	[sandbox]
//	name = "espbox"
//	image = "espressif/idf-rust:esp32_latest"
//	device = "/dev/ttyUSB0"
//
//	[build]
//	profile = "release"
//	target_dir = "target"  # under the crate or workspace being built
//
//	[firmware]
//	config = "cfg.toml"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
//
// # Constants
//
// CompatVersion is compiled in and stamped into .espbox-version whenever a
// sandbox is created. MountPoint, TargetTriple and BootstrapScript describe
// the layout inside the sandbox image.
//
// # Paths
//
// Paths.StateDir ($XDG_STATE_HOME/espbox) holds lifecycle event logs. The
// version stamp lives in the project, not here.
package config
