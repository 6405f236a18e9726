package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// CompatVersion is the orchestrator compatibility version stamped into every
// sandbox at creation. Bump it whenever the sandbox layout espbox expects
// changes (mounts, installed tools, bootstrap script); existing sandboxes
// then become stale and must be cleaned before use.
const CompatVersion = 3

const (
	ConfigFile       = "espbox.toml"
	StampFile        = ".espbox-version"
	ManifestFile     = "Cargo.toml"
	MountPoint       = "/project"
	TargetTriple     = "xtensa-esp32-espidf"
	BootstrapScript  = "/home/esp/export-esp.sh"
	DefaultName      = "espbox"
	DefaultImage     = "espressif/idf-rust:esp32_latest"
	DefaultDevice    = "/dev/ttyUSB0"
	DefaultProfile   = ProfileRelease
	DefaultTargetDir = "target"
	DefaultFirmware  = "cfg.toml"
)

// Build profiles
const (
	ProfileDebug   = "debug"
	ProfileRelease = "release"
)

// sandboxNameRegex validates sandbox names.
// Docker accepts [a-zA-Z0-9][a-zA-Z0-9_.-]+; espbox keeps names lowercase.
var sandboxNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,62}$`)

// ValidateSandboxName checks if a sandbox name is valid.
// Valid names:
//   - Start with a lowercase letter or digit
//   - Contain only lowercase letters, digits, underscores, dots, or hyphens
//   - Are between 1 and 63 characters long
func ValidateSandboxName(name string) error {
	if name == "" {
		return fmt.Errorf("sandbox name cannot be empty")
	}

	if !sandboxNameRegex.MatchString(name) {
		return fmt.Errorf("invalid sandbox name %q: must start with a lowercase letter or digit, contain only lowercase letters, digits, underscores, dots, or hyphens, and be at most 63 characters", name)
	}

	return nil
}

// ValidateProfile checks that profile names a cargo build profile espbox knows.
func ValidateProfile(profile string) error {
	switch profile {
	case ProfileDebug, ProfileRelease:
		return nil
	default:
		return fmt.Errorf("invalid profile %q (must be %s or %s)", profile, ProfileDebug, ProfileRelease)
	}
}

// ProjectConfig is the optional espbox.toml at the project root.
type ProjectConfig struct {
	Sandbox  SandboxConfig  `toml:"sandbox"`
	Build    BuildConfig    `toml:"build"`
	Firmware FirmwareConfig `toml:"firmware"`
}

type SandboxConfig struct {
	Name   string `toml:"name"`
	Image  string `toml:"image"`
	Device string `toml:"device"`
}

type BuildConfig struct {
	Profile   string `toml:"profile"`
	TargetDir string `toml:"target_dir"`
}

type FirmwareConfig struct {
	// Config is the toml_cfg file compiled into the firmware, relative to
	// the project root.
	Config string `toml:"config"`
}

// Default returns the configuration used when espbox.toml is absent.
// Device is left empty so callers can tell "not configured" apart from the
// built-in fallback and offer device discovery.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Sandbox: SandboxConfig{
			Name:  DefaultName,
			Image: DefaultImage,
		},
		Build: BuildConfig{
			Profile:   DefaultProfile,
			TargetDir: DefaultTargetDir,
		},
		Firmware: FirmwareConfig{
			Config: DefaultFirmware,
		},
	}
}

// Validate checks that the ProjectConfig is valid.
func (c *ProjectConfig) Validate() error {
	if err := ValidateSandboxName(c.Sandbox.Name); err != nil {
		return err
	}
	if c.Sandbox.Image == "" {
		return fmt.Errorf("sandbox.image is required")
	}
	if c.Sandbox.Device != "" && !filepath.IsAbs(c.Sandbox.Device) {
		return fmt.Errorf("sandbox.device must be an absolute path (got %q)", c.Sandbox.Device)
	}
	if err := ValidateProfile(c.Build.Profile); err != nil {
		return fmt.Errorf("build.profile: %w", err)
	}
	for key, p := range map[string]string{
		"build.target_dir": c.Build.TargetDir,
		"firmware.config":  c.Firmware.Config,
	} {
		if p == "" {
			return fmt.Errorf("%s is required", key)
		}
		if filepath.IsAbs(p) {
			return fmt.Errorf("%s must be a relative path (got %q)", key, p)
		}
	}
	return nil
}

// Load reads espbox.toml from projectRoot, layering it over Default.
// A missing file is not an error.
func Load(projectRoot string) (*ProjectConfig, error) {
	cfg := Default()

	path := filepath.Join(projectRoot, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s in %s", undecoded[0], path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return cfg, nil
}

// Paths holds host-side locations espbox writes to outside the project.
type Paths struct {
	// StateDir holds per-sandbox event logs.
	StateDir string
}

// DefaultPaths returns the default path configuration, following the XDG
// base directory convention.
func DefaultPaths() *Paths {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			stateHome = filepath.Join(home, ".local", "state")
		} else {
			stateHome = os.TempDir()
		}
	}
	return &Paths{
		StateDir: filepath.Join(stateHome, "espbox"),
	}
}
