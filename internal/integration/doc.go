// Package integration provides a test harness for integration tests
// that require a real container runtime.
//
// Integration tests are skipped unless ESPBOX_INTEGRATION_TESTS=1 is set.
// They require docker or podman (ESPBOX_RUNTIME selects one) and network
// access to pull the test image.
//
// # Test Harness
//
// TestHarness manages test environments:
//
//	func TestMyIntegration(t *testing.T) {
//	    h := integration.NewHarness(t) // Skips if env var not set
//
//	    name := h.SandboxName("mine") // tracked for cleanup
//	    o := h.Orchestrator()
//
//	    // Run lifecycle operations against the project at h.Root()...
//
//	    // Cleanup is automatic via t.Cleanup
//	}
//
// # Images
//
// Most tests use a small image (ESPBOX_TEST_IMAGE, default alpine) that
// lacks the ESP toolchain, which is enough for the runtime and lifecycle
// paths and makes dependency installation fail on purpose. Tests needing
// the real toolchain run only when ESPBOX_TEST_IDF_IMAGE names an
// idf-rust image.
//
// # Running Integration Tests
//
//	ESPBOX_INTEGRATION_TESTS=1 go test -v ./internal/integration/...
package integration
