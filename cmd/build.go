package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [-- cargo-args...]",
	Short: "Build the firmware inside the sandbox",
	Long: `Build runs cargo build inside the sandbox, creating and starting the
sandbox first if needed. --profile release (the default) adds --release.
Extra arguments are passed to cargo.`,
	RunE: runBuild,
}

var buildProfile string

func init() {
	buildCmd.Flags().StringVar(&buildProfile, "profile", "", "Build profile: debug or release (default: from espbox.toml, else release)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := loadRuntimeProject()
	if err != nil {
		return err
	}

	req, err := p.request(args, buildProfile, false)
	if err != nil {
		return err
	}

	return p.orch.Build(context.Background(), req)
}
