package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the sandbox",
	Long: `Stop stops the project's sandbox if it is running. The sandbox and its
installed tools are kept; the next command starts it again.`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	p, err := loadRuntimeProject()
	if err != nil {
		return err
	}

	name := p.cfg.Sandbox.Name
	logInfo("Stopping sandbox %s...", name)
	if err := p.orch.Stop(context.Background(), name); err != nil {
		return err
	}

	logSuccess("Stopped sandbox %s", name)
	return nil
}
