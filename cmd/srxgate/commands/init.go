package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/srxgate/cmd/srxgate/handlers"
	"github.com/imamik/srxgate/internal/config"
)

// Init returns the command for interactively creating a configuration file.
//
// Flags:
//
//	--output, -o: Path to output file (default "srxgate.yaml")
//	--advanced, -a: Show advanced configuration options
//	--full, -f: Output full YAML with all options (default: minimal output)
func Init() *cobra.Command {
	var (
		outputPath string
		advanced   bool
		fullOutput bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration file",
		Long: `Interactively create a srxgate configuration file.

The wizard asks about:

  - The appliance address, transport and login
  - Public and private interfaces
  - Security zones
  - Retry policy
  - Optional S3-compatible archive for usage snapshots

Use --advanced for NAT rule set names, accounting filters,
poll interval, timeouts and the VPN DNS server.

Passwords and archive keys are never written to the file; they are
read from SRXGATE_APPLIANCE_PASSWORD, SRXGATE_ARCHIVE_ACCESS_KEY
and SRXGATE_ARCHIVE_SECRET_KEY.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, advanced, fullOutput)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultConfigFilename, "Output file path")
	cmd.Flags().BoolVarP(&advanced, "advanced", "a", false, "Show advanced configuration options")
	cmd.Flags().BoolVarP(&fullOutput, "full", "f", false, "Output full YAML with all options")

	return cmd
}
