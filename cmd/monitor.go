package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [-- espflash-args...]",
	Short: "Open the serial monitor",
	Long: `Monitor attaches espflash's serial monitor to the device the sandbox is
bound to. Press Ctrl+R to reset the board and Ctrl+C to exit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	p, err := loadRuntimeProject()
	if err != nil {
		return err
	}

	req, err := p.request(args, "", true)
	if err != nil {
		return err
	}

	return p.orch.Monitor(context.Background(), req)
}
