package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/espbox/internal/app"
	"github.com/firefly-engineering/espbox/internal/config"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the sandbox's lifecycle events",
	Long: `Events prints when the sandbox was created, started, stopped and removed,
and which commands were refused because it was stale or bound to another
device.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

var (
	eventsJSON  bool
	eventsLimit int
)

func init() {
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output events as JSON lines")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "l", 0, "Show only the last N events (0 for all)")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	name := nameFlag
	if name == "" {
		p, err := loadProject()
		if err != nil {
			return err
		}
		name = p.cfg.Sandbox.Name
	} else if err := config.ValidateSandboxName(name); err != nil {
		return err
	}

	events, err := app.Default.Events().Tail(name, eventsLimit)
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}

	if len(events) == 0 {
		logInfo("No events found for sandbox %s", name)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, e := range events {
		if eventsJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
		} else {
			ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
			if e.Details != "" {
				fmt.Fprintf(out, "[%s] %-15s %s (%s)\n", ts, e.Type, e.Sandbox, e.Details)
			} else {
				fmt.Fprintf(out, "[%s] %-15s %s\n", ts, e.Type, e.Sandbox)
			}
		}
	}

	return nil
}
