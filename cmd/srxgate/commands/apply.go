package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/srxgate/cmd/srxgate/handlers"
)

// Apply returns the command that executes command documents once.
//
// Flags:
//
//	--config, -c: Path to configuration YAML file (default: srxgate.yaml)
//	--file, -f: Command documents, YAML or JSON, "-" for stdin (required)
//	--json: Print answers as JSON
func Apply() *cobra.Command {
	var (
		configPath   string
		commandsPath string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute command documents against the appliance",
		Long: `Execute one or more command documents against the appliance.

Documents are separated by "---" lines and executed in order. Each command
is committed as a single transaction; a failed command is rolled back and
the remaining commands still run.

Examples:
  # Associate a public IP with a guest network
  srxgate apply -f associate.yaml

  # Pipe commands in and read the answers as JSON
  cat commands.yaml | srxgate apply -f - --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), configPath, commandsPath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: srxgate.yaml)")
	cmd.Flags().StringVarP(&commandsPath, "file", "f", "", "Command documents to execute (\"-\" for stdin)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output answers in JSON format")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
