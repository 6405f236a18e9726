// Package testutil provides test fixtures and utilities.
//
// # Fixtures
//
// TOML fixtures are embedded using go:embed:
//
//	fixtures/valid_espbox.toml
//	fixtures/invalid_espbox.toml
//	fixtures/cargo_manifest.toml
//
// Helper functions load and parse them:
//
//	cfg, err := testutil.ValidProjectConfig()
//	cfg, err := testutil.InvalidProjectConfig()
//	data := testutil.CargoManifest()
//
// # Test Environment
//
// NewTestEnv builds a firmware project in a temporary directory and
// installs an app whose runtime and executor are mocks:
//
//	func TestBuild(t *testing.T) {
//	    env := testutil.NewTestEnv(t)
//	    defer env.Cleanup()
//	    env.Chdir("")
//
//	    env.AddSandbox("espbox", runtime.StatusRunning, "/dev/ttyUSB0")
//	    // run the command, then inspect env.Runtime.CallLog
//	}
package testutil
