package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/srxgate/cmd/srxgate/handlers"
)

// Doctor returns the command for diagnosing appliance connectivity.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: srxgate.yaml)
//	--json: Output in JSON format
func Doctor() *cobra.Command {
	var (
		configPath string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and appliance connectivity",
		Long: `Diagnose the srxgate configuration and appliance connectivity.

Checks, run concurrently:
  - The appliance port accepts connections
  - The command session logs in
  - A candidate configuration can be opened and discarded
  - The usage session reads the accounting counters
  - The archive bucket is reachable (when configured)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: srxgate.yaml)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
