package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var flashCmd = &cobra.Command{
	Use:   "flash [-- espflash-args...]",
	Short: "Build the firmware and flash it to the board",
	Long: `Flash builds the firmware, then writes it to the serial device with
espflash. A failing build stops the flash with the build's exit status.

The sandbox is bound to the device it was created with. Flashing another
device fails until the sandbox is recreated (espbox clean --container).

Examples:
  espbox flash
  espbox flash -d /dev/ttyACM0 --profile debug
  espbox flash -- --monitor`,
	RunE: runFlash,
}

var flashProfile string

func init() {
	flashCmd.Flags().StringVar(&flashProfile, "profile", "", "Build profile: debug or release (default: from espbox.toml, else release)")
	rootCmd.AddCommand(flashCmd)
}

func runFlash(cmd *cobra.Command, args []string) error {
	p, err := loadRuntimeProject()
	if err != nil {
		return err
	}

	req, err := p.request(args, flashProfile, true)
	if err != nil {
		return err
	}

	return p.orch.Flash(context.Background(), req)
}
