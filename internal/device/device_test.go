package device

import (
	"errors"
	"reflect"
	"testing"

	espErrors "github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/system"
)

func devFS() *system.MockFS {
	fsys := system.NewMockFS()
	fsys.AddDir("/dev")
	for _, n := range []string{"ttyUSB1", "ttyUSB0", "ttyACM0", "tty0", "ttyS0", "null"} {
		fsys.AddFile("/dev/"+n, nil, 0660)
	}
	fsys.AddSymlink("/dev/serial/by-id/usb-Silicon_Labs_CP2102_0001-if00-port0", "../../ttyUSB0")
	fsys.AddSymlink("/dev/serial/by-id/usb-Espressif_USB_JTAG_serial_debug_unit-if00", "/dev/ttyACM0")
	return fsys
}

func TestDiscover(t *testing.T) {
	got, err := Discover(devFS())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []Device{
		{Path: "/dev/ttyACM0", ID: "usb-Espressif_USB_JTAG_serial_debug_unit-if00"},
		{Path: "/dev/ttyUSB0", ID: "usb-Silicon_Labs_CP2102_0001-if00-port0"},
		{Path: "/dev/ttyUSB1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %+v\nwant %+v", got, want)
	}
}

func TestDiscover_NoByID(t *testing.T) {
	fsys := system.NewMockFS()
	fsys.AddFile("/dev/ttyUSB0", nil, 0660)

	got, err := Discover(fsys)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "" {
		t.Errorf("Discover() = %+v", got)
	}
}

func TestDiscover_NoDev(t *testing.T) {
	if _, err := Discover(system.NewMockFS()); err == nil {
		t.Error("Discover() should fail when /dev cannot be read")
	}
}

func TestSelect(t *testing.T) {
	two := []Device{{Path: "/dev/ttyACM0"}, {Path: "/dev/ttyUSB0"}}
	pickSecond := func(d []Device) (Device, error) { return d[1], nil }

	tests := []struct {
		name        string
		devices     []Device
		interactive bool
		pick        Picker
		want        string
		wantCode    int
	}{
		{"none falls back", nil, true, pickSecond, "/dev/ttyUSB0", 0},
		{"single", []Device{{Path: "/dev/ttyACM0"}}, false, nil, "/dev/ttyACM0", 0},
		{"several interactive", two, true, pickSecond, "/dev/ttyUSB0", 0},
		{"several non-interactive", two, false, pickSecond, "", espErrors.ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.devices, "/dev/ttyUSB0", tt.interactive, tt.pick)
			if tt.wantCode != 0 {
				if !espErrors.HasCode(err, tt.wantCode) {
					t.Fatalf("Select() error = %v, want code %d", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelect_Cancelled(t *testing.T) {
	two := []Device{{Path: "/dev/ttyACM0"}, {Path: "/dev/ttyUSB0"}}
	cancel := func([]Device) (Device, error) { return Device{}, ErrCancelled }

	if _, err := Select(two, "/dev/ttyUSB0", true, cancel); !errors.Is(err, ErrCancelled) {
		t.Errorf("Select() error = %v, want ErrCancelled", err)
	}
}

func TestExists(t *testing.T) {
	fsys := devFS()
	if !Exists(fsys, "/dev/ttyUSB0") {
		t.Error("Exists(/dev/ttyUSB0) = false")
	}
	if Exists(fsys, "/dev/ttyUSB9") {
		t.Error("Exists(/dev/ttyUSB9) = true")
	}
}
