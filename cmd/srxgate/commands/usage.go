package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/srxgate/cmd/srxgate/handlers"
)

// Usage returns the command that reads the traffic counters.
//
// Flags:
//
//	--config, -c: Path to configuration YAML file (default: srxgate.yaml)
//	--watch, -w: Keep polling on the configured interval
//	--json: Output in JSON format
func Usage() *cobra.Command {
	var (
		configPath string
		watch      bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show per-address and per-VLAN traffic counters",
		Long: `Poll the usage counters once and print them.

With --watch on a terminal, a live view refreshes on the configured
poll interval and shows transfer rates. Without a terminal, or with
--json, one line is printed per poll.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Usage(cmd.Context(), configPath, watch, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: srxgate.yaml)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Continuously watch usage")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
