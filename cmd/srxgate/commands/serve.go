package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/imamik/srxgate/cmd/srxgate/handlers"
)

// Serve returns the command that runs the driver behind an HTTP endpoint.
//
// Flags:
//
//	--config, -c: Path to configuration YAML file (default: srxgate.yaml)
//	--listen: HTTP listen address (default ":9480")
//	--wait: Wait up to this long for the appliance port before serving
func Serve() *cobra.Command {
	var (
		configPath string
		listen     string
		wait       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve commands over HTTP and poll usage in the background",
		Long: `Run the driver as a long-lived service.

Endpoints:
  POST /v1/commands   execute one JSON command, respond with its answer
  GET  /v1/usage      latest usage snapshot
  GET  /healthz       login round trip against the appliance
  GET  /metrics       Prometheus metrics

The usage poller runs alongside on the configured poll interval.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), configPath, listen, wait)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: srxgate.yaml)")
	cmd.Flags().StringVar(&listen, "listen", ":9480", "HTTP listen address")
	cmd.Flags().DurationVar(&wait, "wait", 0, "Wait for the appliance port before serving (0 disables)")

	return cmd
}
