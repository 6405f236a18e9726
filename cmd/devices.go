package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/espbox/internal/app"
	"github.com/firefly-engineering/espbox/internal/device"
	"github.com/firefly-engineering/espbox/internal/logging"
	"github.com/firefly-engineering/espbox/internal/tui"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List serial devices attached to the host",
	Long: `Devices lists the USB serial adapters (/dev/ttyUSB*, /dev/ttyACM*) a
board can be flashed through. The device the sandbox is bound to is marked.`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	devices, err := device.Discover(app.Default.FS)
	if err != nil {
		logging.Debug("device discovery failed", "error", err)
		devices = nil
	}

	fmt.Fprint(cmd.OutOrStdout(), tui.DeviceList(devices, boundDevice()))
	return nil
}

// boundDevice returns the device the project's sandbox is bound to, or ""
// when there is no project, runtime or sandbox to ask.
func boundDevice() string {
	if app.Default.Runtime == nil {
		return ""
	}
	p, err := loadProject()
	if err != nil {
		return ""
	}
	res, err := p.orch.Status(context.Background(), p.cfg.Sandbox.Name, "")
	if err != nil {
		return ""
	}
	return res.BoundDevice
}
