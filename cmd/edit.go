package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/espbox/internal/terminal"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the firmware configuration",
	Long: `Edit opens the firmware's cfg.toml (WiFi credentials and access point
mode) in $VISUAL or $EDITOR, creating it with empty settings if it does
not exist. The file is read when the firmware is built.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	return p.orch.Edit(context.Background(), terminal.Editor())
}
