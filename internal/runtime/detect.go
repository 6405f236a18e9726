package runtime

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/firefly-engineering/espbox/internal/logging"
)

// RuntimeType identifies which container runtime to use
type RuntimeType string

const (
	RuntimeDocker RuntimeType = "docker"
	RuntimePodman RuntimeType = "podman"
	RuntimeAuto   RuntimeType = "auto"
)

// EnvRuntime overrides auto-detection when set to docker or podman.
const EnvRuntime = "ESPBOX_RUNTIME"

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Config holds runtime configuration
type Config struct {
	// Type specifies which runtime to use (or "auto" for auto-detection)
	Type RuntimeType
}

// DefaultConfig returns the runtime configuration from the environment.
func DefaultConfig() *Config {
	t := RuntimeType(os.Getenv(EnvRuntime))
	if t == "" {
		t = RuntimeAuto
	}
	return &Config{Type: t}
}

// Detect determines which container runtime is available on the system.
// Podman is preferred since it runs rootless and needs no daemon.
func Detect() (RuntimeType, error) {
	if _, err := lookPath("podman"); err == nil {
		logging.Debug("detected podman")
		return RuntimePodman, nil
	}

	if _, err := lookPath("docker"); err == nil {
		logging.Debug("detected docker")
		return RuntimeDocker, nil
	}

	return "", fmt.Errorf("no supported container runtime found (tried: podman, docker)")
}

// New creates a new Runtime based on the configuration.
// If Type is RuntimeAuto, it auto-detects the runtime.
func New(cfg *Config) (Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	runtimeType := cfg.Type
	if runtimeType == RuntimeAuto {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		runtimeType = detected
	}

	logging.Debug("creating runtime", "type", runtimeType)

	switch runtimeType {
	case RuntimeDocker, RuntimePodman:
		if _, err := lookPath(string(runtimeType)); err != nil {
			return nil, fmt.Errorf("%s not found in PATH: %w", runtimeType, err)
		}
		return NewDockerRuntime(string(runtimeType)), nil
	default:
		return nil, fmt.Errorf("unknown runtime type: %s (must be docker or podman)", runtimeType)
	}
}
