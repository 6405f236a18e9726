package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/espbox/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sandbox's state",
	Long: `Status reports whether the sandbox exists and is running, the device it
is bound to, and whether its version stamp matches this espbox. It never
changes anything and works on stale sandboxes.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := loadRuntimeProject()
	if err != nil {
		return err
	}

	sb, err := p.sandbox(false)
	if err != nil {
		return err
	}

	result, err := p.orch.Status(context.Background(), sb.Name, sb.Device)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printStatus(out, p.root, result)
	return nil
}

func printStatus(w io.Writer, root string, r *health.CheckResult) {
	fmt.Fprintf(w, "Sandbox: %s\n", r.Sandbox)
	fmt.Fprintf(w, "Project: %s\n", root)
	fmt.Fprintf(w, "State: %s\n", r.StateName)
	if r.Uptime != "" {
		fmt.Fprintf(w, "Uptime: %s\n", r.Uptime)
	}
	if r.BoundDevice != "" {
		fmt.Fprintf(w, "Bound device: %s\n", r.BoundDevice)
	}

	switch {
	case r.StampCorrupt:
		fmt.Fprintf(w, "Stamp: unreadable (espbox %d)\n", r.CompatVersion)
	case r.StampPresent:
		fmt.Fprintf(w, "Stamp: %d (espbox %d)\n", r.Stamp, r.CompatVersion)
	default:
		fmt.Fprintf(w, "Stamp: none (espbox %d)\n", r.CompatVersion)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Checks:")
	fmt.Fprintf(w, "  Up to date: %s\n", boolStatus(!r.Stale))
	fmt.Fprintf(w, "  Device %s: %s\n", r.Device, boolStatus(r.DevicePresent))
	if r.FirmwareConfig != "" {
		fmt.Fprintf(w, "  Firmware config %s: %s\n", r.FirmwareConfig, boolStatus(r.FirmwareConfigured))
	}
	fmt.Fprintf(w, "Status: %s\n", r.Status)

	if r.Stale {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recreate the sandbox with: espbox clean --container")
	}
}

func boolStatus(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
