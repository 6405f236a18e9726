package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/espbox/internal/sandbox"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the sandbox and/or build output",
	Long: `Clean removes the sandbox container (--container), the build output
directory (--target), or both. At least one must be selected.

Removing the container also clears the version stamp, so the next command
creates a fresh sandbox. This is how a stale sandbox is recovered.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

var (
	cleanContainer bool
	cleanTarget    bool
)

func init() {
	cleanCmd.Flags().BoolVarP(&cleanContainer, "container", "c", false, "Remove the sandbox container")
	cleanCmd.Flags().BoolVarP(&cleanTarget, "target", "t", false, "Remove the build output directory")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	targets := sandbox.CleanTargets{
		Container:   cleanContainer,
		BuildOutput: cleanTarget,
	}

	var (
		p   *project
		err error
	)
	if targets.Container {
		p, err = loadRuntimeProject()
	} else {
		p, err = loadProject()
	}
	if err != nil {
		return err
	}

	return p.orch.Clean(context.Background(), p.cfg.Sandbox.Name, targets)
}
