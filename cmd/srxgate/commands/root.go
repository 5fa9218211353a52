// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/imamik/srxgate/internal/logging"
)

// Root returns the root command for the srxgate CLI.
//
// The root command owns the logging flags. Its PersistentPreRunE builds the
// logger, stores it in the command context and cancels that context on
// SIGINT or SIGTERM.
func Root() *cobra.Command {
	var (
		logLevel  string
		logFormat string
		flush     func()
		stop      context.CancelFunc
	)

	cmd := &cobra.Command{
		Use:           "srxgate",
		Short:         "Drive a Junos SRX gateway for a cloud orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbosity, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			if err := logging.ValidateFormat(logFormat); err != nil {
				return err
			}

			var log logr.Logger
			log, flush = logging.Must(logging.Options{Verbosity: verbosity, Format: logFormat})

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			cmd.SetContext(logr.NewContext(ctx, log))
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if stop != nil {
				stop()
			}
			if flush != nil {
				flush()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: info, debug or trace")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatAuto, "Log format: auto, json or console")

	// Core commands
	cmd.AddCommand(Init())
	cmd.AddCommand(Apply())
	cmd.AddCommand(Serve())
	cmd.AddCommand(Usage())
	cmd.AddCommand(Doctor())

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
