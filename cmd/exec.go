package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Run a command inside the sandbox",
	Long: `Exec runs a command inside the sandbox in place of espbox. Its exit
status becomes espbox's. The toolchain environment is not loaded; use
cargo for toolchain commands.

Examples:
  espbox exec ls -la
  espbox exec "ls -la target"
  espbox exec -- bash`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
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

	return p.orch.Exec(context.Background(), req)
}
