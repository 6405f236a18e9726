package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var cargoCmd = &cobra.Command{
	Use:   "cargo [args...]",
	Short: "Run cargo inside the sandbox",
	Long: `Cargo runs cargo with the given arguments inside the sandbox, with the
ESP toolchain environment loaded.

Examples:
  espbox cargo check
  espbox cargo -- clippy --all-targets`,
	RunE: runCargo,
}

func init() {
	cargoCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(cargoCmd)
}

func runCargo(cmd *cobra.Command, args []string) error {
	argv, err := splitCommand(args)
	if err != nil {
		return err
	}

	p, err := loadRuntimeProject()
	if err != nil {
		return err
	}

	req, err := p.request(argv, "", false)
	if err != nil {
		return err
	}

	return p.orch.Cargo(context.Background(), req)
}
