package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/firefly-engineering/espbox/internal/system"
)

const cargoToml = `[package]
name = "esp-http-server"
version = "0.1.0"
edition = "2021"

[dependencies]
toml-cfg = "0.1"
`

func TestPackageName(t *testing.T) {
	fsys := system.NewMockFS()
	fsys.AddFile("/fw/Cargo.toml", []byte(cargoToml), 0644)

	name, err := PackageName(fsys, "/fw")
	if err != nil {
		t.Fatalf("PackageName() error = %v", err)
	}
	if name != "esp-http-server" {
		t.Errorf("PackageName() = %q", name)
	}
}

func TestPackageName_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"virtual workspace", "[workspace]\nmembers = [\"app\"]\n"},
		{"invalid toml", "[package\nname ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := system.NewMockFS()
			fsys.AddFile("/fw/Cargo.toml", []byte(tt.content), 0644)

			if _, err := PackageName(fsys, "/fw"); err == nil {
				t.Error("PackageName() should fail")
			}
		})
	}
}

func TestFindCrate(t *testing.T) {
	fsys := system.NewMockFS()
	fsys.AddFile("/fw/Cargo.toml", []byte(cargoToml), 0644)
	fsys.AddFile("/fw/app/Cargo.toml", []byte("[package]\nname = \"app\"\n"), 0644)
	fsys.AddFile("/ws/Cargo.toml", []byte("[workspace]\nmembers = [\"app\"]\n"), 0644)
	fsys.AddFile("/ws/app/Cargo.toml", []byte("[package]\nname = \"blinky\"\n"), 0644)

	tests := []struct {
		name    string
		workDir string
		root    string
		want    Crate
	}{
		{"standalone crate in subdir", "/fw/app", "/fw", Crate{Name: "app", Dir: "/fw/app", BuildDir: "/fw/app"}},
		{"source dir of subdir crate", "/fw/app/src", "/fw", Crate{Name: "app", Dir: "/fw/app", BuildDir: "/fw/app"}},
		{"dir without manifest", "/fw/docs", "/fw", Crate{Name: "esp-http-server", Dir: "/fw", BuildDir: "/fw"}},
		{"project root", "", "/fw", Crate{Name: "esp-http-server", Dir: "/fw", BuildDir: "/fw"}},
		{"workspace member", "/ws/app", "/ws", Crate{Name: "blinky", Dir: "/ws/app", BuildDir: "/ws"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindCrate(fsys, tt.workDir, tt.root)
			if err != nil {
				t.Fatalf("FindCrate(%q) error = %v", tt.workDir, err)
			}
			if got != tt.want {
				t.Errorf("FindCrate(%q) = %+v, want %+v", tt.workDir, got, tt.want)
			}
		})
	}
}

func TestFindCrate_Errors(t *testing.T) {
	virtual := system.NewMockFS()
	virtual.AddFile("/ws/Cargo.toml", []byte("[workspace]\nmembers = [\"app\"]\n"), 0644)

	unreadable := system.NewMockFS()
	unreadable.ReadFileErr = errors.New("permission denied")

	tests := []struct {
		name    string
		fsys    *system.MockFS
		workDir string
		root    string
	}{
		{"no manifest", system.NewMockFS(), "/fw", "/fw"},
		{"virtual workspace root", virtual, "/ws", "/ws"},
		{"read error", unreadable, "/fw/app", "/fw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FindCrate(tt.fsys, tt.workDir, tt.root); err == nil {
				t.Error("FindCrate() should fail")
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name      string
		crate     Crate
		targetDir string
		profile   string
		want      string
	}{
		{
			name:      "crate at root",
			crate:     Crate{Name: "esp-http-server", Dir: "/fw", BuildDir: "/fw"},
			targetDir: "target",
			profile:   "release",
			want:      "/project/target/xtensa-esp32-espidf/release/esp-http-server",
		},
		{
			name:      "crate in subdir",
			crate:     Crate{Name: "app", Dir: "/fw/app", BuildDir: "/fw/app"},
			targetDir: "target",
			profile:   "release",
			want:      "/project/app/target/xtensa-esp32-espidf/release/app",
		},
		{
			name:      "custom target dir",
			crate:     Crate{Name: "fw", Dir: "/fw", BuildDir: "/fw"},
			targetDir: "build/out",
			profile:   "debug",
			want:      "/project/build/out/xtensa-esp32-espidf/debug/fw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ArtifactPath("/fw", tt.crate, tt.targetDir, tt.profile)
			if err != nil {
				t.Fatalf("ArtifactPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ArtifactPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArtifactPath_OutsideRoot(t *testing.T) {
	if _, err := ArtifactPath("/fw", Crate{Name: "x", Dir: "/other", BuildDir: "/other"}, "target", "release"); err == nil {
		t.Error("ArtifactPath() should reject a crate outside the root")
	}
}

func TestFirmwareConfigPath(t *testing.T) {
	got, err := FirmwareConfigPath("/home/user/fw", "../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "/home/user/fw/") {
		t.Errorf("FirmwareConfigPath() = %q, should stay under the root", got)
	}
}

func TestSeedFirmwareConfig(t *testing.T) {
	fsys := system.NewMockFS()

	created, err := SeedFirmwareConfig(fsys, "/fw/cfg.toml", "esp-http-server")
	if err != nil {
		t.Fatalf("SeedFirmwareConfig() error = %v", err)
	}
	if !created {
		t.Error("SeedFirmwareConfig() should create a missing file")
	}

	settings, ok, err := LoadFirmwareSettings(fsys, "/fw/cfg.toml", "esp-http-server")
	if err != nil || !ok {
		t.Fatalf("LoadFirmwareSettings() = (%v, %v)", ok, err)
	}
	if settings != (FirmwareSettings{}) {
		t.Errorf("seeded settings = %+v, want empty", settings)
	}

	data, _ := fsys.GetFile("/fw/cfg.toml")
	for _, key := range []string{"[esp-http-server]", "wifi_ssid", "wifi_psk", "wifi_ap = false"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("seeded file should contain %q:\n%s", key, data)
		}
	}
}

func TestSeedFirmwareConfig_KeepsExisting(t *testing.T) {
	fsys := system.NewMockFS()
	existing := "[fw]\nwifi_ssid = \"home\"\nwifi_psk = \"secret\"\nwifi_ap = false\n"
	fsys.AddFile("/fw/cfg.toml", []byte(existing), 0600)

	created, err := SeedFirmwareConfig(fsys, "/fw/cfg.toml", "fw")
	if err != nil || created {
		t.Fatalf("SeedFirmwareConfig() = (%v, %v), want (false, nil)", created, err)
	}

	data, _ := fsys.GetFile("/fw/cfg.toml")
	if string(data) != existing {
		t.Errorf("existing file was modified:\n%s", data)
	}

	settings, ok, _ := LoadFirmwareSettings(fsys, "/fw/cfg.toml", "fw")
	if !ok || settings.WifiSSID != "home" {
		t.Errorf("LoadFirmwareSettings() = (%+v, %v)", settings, ok)
	}
}

func TestLoadFirmwareSettings_Missing(t *testing.T) {
	_, ok, err := LoadFirmwareSettings(system.NewMockFS(), "/fw/cfg.toml", "fw")
	if err != nil || ok {
		t.Errorf("LoadFirmwareSettings() = (%v, %v), want (false, nil)", ok, err)
	}
}
