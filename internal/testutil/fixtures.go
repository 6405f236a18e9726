package testutil

import (
	"embed"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/espbox/internal/config"
)

//go:embed fixtures/*.toml
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadProjectConfigFixture decodes an espbox.toml fixture over the
// defaults without validating it.
func LoadProjectConfigFixture(name string) (*config.ProjectConfig, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	cfg := config.Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidProjectConfig returns the valid espbox.toml fixture.
func ValidProjectConfig() (*config.ProjectConfig, error) {
	return LoadProjectConfigFixture("valid_espbox.toml")
}

// InvalidProjectConfig returns the invalid espbox.toml fixture.
func InvalidProjectConfig() (*config.ProjectConfig, error) {
	return LoadProjectConfigFixture("invalid_espbox.toml")
}

// CargoManifest returns a firmware crate's Cargo.toml.
func CargoManifest() []byte {
	data, err := LoadFixture("cargo_manifest.toml")
	if err != nil {
		panic(err)
	}
	return data
}
