// Package device discovers USB serial devices on the host that an ESP32
// board may be attached to.
package device

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	espErrors "github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/system"
)

// Directories scanned for serial devices.
const (
	DevDir  = "/dev"
	ByIDDir = "/dev/serial/by-id"
)

// prefixes of device nodes created by the USB-UART bridges (CP210x, CH340,
// FTDI) and native USB-CDC found on ESP32 boards.
var prefixes = []string{"ttyUSB", "ttyACM"}

// Device is a candidate serial device.
type Device struct {
	// Path is the device node, e.g. /dev/ttyUSB0
	Path string

	// ID is the stable /dev/serial/by-id name, if udev created one
	ID string
}

// Discover lists serial devices sorted by path.
func Discover(fsys system.FileSystem) ([]Device, error) {
	entries, err := fsys.ReadDir(DevDir)
	if err != nil {
		return nil, err
	}

	ids := byID(fsys)

	var devices []Device
	for _, e := range entries {
		if e.IsDir() || !isSerial(e.Name()) {
			continue
		}
		p := filepath.Join(DevDir, e.Name())
		devices = append(devices, Device{Path: p, ID: ids[p]})
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Path < devices[j].Path })
	return devices, nil
}

func isSerial(name string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// byID maps device nodes to their by-id names. A missing by-id directory
// (no udev, containers, macOS) yields an empty map.
func byID(fsys system.FileSystem) map[string]string {
	ids := make(map[string]string)

	entries, err := fsys.ReadDir(ByIDDir)
	if err != nil {
		return ids
	}
	for _, e := range entries {
		link := filepath.Join(ByIDDir, e.Name())
		target, err := fsys.Readlink(link)
		if err != nil {
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(ByIDDir, target)
		}
		ids[filepath.Clean(target)] = e.Name()
	}
	return ids
}

// Picker lets the user choose among several devices.
type Picker func(devices []Device) (Device, error)

// ErrCancelled is returned by a Picker when the user backs out.
var ErrCancelled = errors.New("device selection cancelled")

// Select picks the device to use when none was configured. No candidates
// falls back to fallback; one candidate is used as is; several need the
// picker, which is only offered when interactive.
func Select(devices []Device, fallback string, interactive bool, pick Picker) (string, error) {
	switch len(devices) {
	case 0:
		return fallback, nil
	case 1:
		return devices[0].Path, nil
	}

	if !interactive || pick == nil {
		paths := make([]string, len(devices))
		for i, d := range devices {
			paths[i] = d.Path
		}
		return "", espErrors.ValidationError(
			"several serial devices found (" + strings.Join(paths, ", ") + "); choose one with --device")
	}

	d, err := pick(devices)
	if err != nil {
		return "", err
	}
	return d.Path, nil
}

// Exists reports whether a device node is present on the host.
func Exists(fsys system.FileSystem, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
