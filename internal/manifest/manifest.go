// Package manifest reads the firmware project's Cargo.toml and manages the
// toml_cfg file the firmware compiles its settings from.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/system"
)

// cargoManifest holds the parts of Cargo.toml espbox reads.
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// PackageName returns package.name from the Cargo.toml in dir.
func PackageName(fsys system.FileSystem, dir string) (string, error) {
	m, _, err := readManifest(fsys, dir)
	if err != nil {
		return "", err
	}
	if m.Package.Name == "" {
		return "", fmt.Errorf("%s has no [package] name", filepath.Join(dir, config.ManifestFile))
	}
	return m.Package.Name, nil
}

func readManifest(fsys system.FileSystem, dir string) (cargoManifest, toml.MetaData, error) {
	var m cargoManifest
	p := filepath.Join(dir, config.ManifestFile)
	data, err := fsys.ReadFile(p)
	if err != nil {
		return m, toml.MetaData{}, err
	}

	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return m, md, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	return m, md, nil
}

// Crate is the crate cargo builds when run in some directory.
type Crate struct {
	Name string
	// Dir holds the crate's Cargo.toml.
	Dir string
	// BuildDir is the directory cargo puts the target dir in: the enclosing
	// workspace root if there is one, otherwise Dir.
	BuildDir string
}

// FindCrate locates the crate cargo builds from workDir by searching upward
// for a Cargo.toml, then continues upward to find an enclosing workspace.
// The search never leaves root. An empty workDir means root.
func FindCrate(fsys system.FileSystem, workDir, root string) (Crate, error) {
	root = filepath.Clean(root)
	dir := root
	if workDir != "" {
		dir = filepath.Clean(workDir)
	}
	if rel, err := filepath.Rel(root, dir); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		dir = root
	}

	var crate Crate
	for {
		m, md, err := readManifest(fsys, dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Crate{}, err
		case crate.Name == "":
			if m.Package.Name == "" {
				return Crate{}, fmt.Errorf("%s has no [package] name", filepath.Join(dir, config.ManifestFile))
			}
			crate = Crate{Name: m.Package.Name, Dir: dir, BuildDir: dir}
			if md.IsDefined("workspace") {
				return crate, nil
			}
		case md.IsDefined("workspace"):
			crate.BuildDir = dir
			return crate, nil
		}

		if dir == root {
			break
		}
		dir = filepath.Dir(dir)
	}

	if crate.Name == "" {
		return Crate{}, fmt.Errorf("no %s found between %s and %s", config.ManifestFile, workDir, root)
	}
	return crate, nil
}

// ArtifactPath returns the sandbox path of the firmware image cargo builds
// for crate and profile. targetDir is relative to crate.BuildDir, and root
// is the host directory mounted at the sandbox mount point.
func ArtifactPath(root string, crate Crate, targetDir, profile string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(root), crate.BuildDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("crate %s is outside %s", crate.Dir, root)
	}
	return path.Join(config.MountPoint, filepath.ToSlash(rel), filepath.ToSlash(targetDir), config.TargetTriple, profile, crate.Name), nil
}

// FirmwareSettings are the values the firmware's toml_cfg Config expects.
type FirmwareSettings struct {
	WifiSSID string `toml:"wifi_ssid"`
	WifiPSK  string `toml:"wifi_psk"`
	WifiAP   bool   `toml:"wifi_ap"`
}

// FirmwareConfigPath returns the host path of the firmware config file,
// confined to the project root.
func FirmwareConfigPath(root, rel string) (string, error) {
	p, err := securejoin.SecureJoin(root, rel)
	if err != nil {
		return "", fmt.Errorf("failed to resolve firmware config path: %w", err)
	}
	return p, nil
}

// SeedFirmwareConfig writes a firmware config with empty settings under a
// table named after crate, unless the file already exists. It reports
// whether a file was written.
func SeedFirmwareConfig(fsys system.FileSystem, p, crate string) (bool, error) {
	if fsys.Exists(p) {
		return false, nil
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(map[string]FirmwareSettings{crate: {}}); err != nil {
		return false, fmt.Errorf("failed to encode firmware config: %w", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(p), err)
	}
	// The file ends up holding WiFi credentials.
	if err := fsys.WriteFile(p, buf.Bytes(), 0600); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", p, err)
	}
	return true, nil
}

// LoadFirmwareSettings reads the settings for crate from the firmware
// config at p. ok is false when the file or the crate's table is missing.
func LoadFirmwareSettings(fsys system.FileSystem, p, crate string) (settings FirmwareSettings, ok bool, err error) {
	data, err := fsys.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, false, nil
		}
		return settings, false, err
	}

	var tables map[string]FirmwareSettings
	if _, err := toml.Decode(string(data), &tables); err != nil {
		return settings, false, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	settings, ok = tables[crate]
	return settings, ok, nil
}
