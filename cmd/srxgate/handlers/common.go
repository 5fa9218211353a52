package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/driver"
	"github.com/imamik/srxgate/internal/usage"
)

// loadConfig loads path, or srxgate.yaml in the working directory when path
// is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultConfigFilename
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("no config file found: %s\nRun 'srxgate init' to create one", path)
		}
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newDriver builds the command driver and the usage poller over one dialer.
func newDriver(ctx context.Context, cfg *config.Config) (*driver.Driver, *usage.Poller, error) {
	log := logr.FromContextOrDiscard(ctx)

	dialer, err := driver.NewDialer(cfg)
	if err != nil {
		return nil, nil, err
	}

	poller, err := usage.NewPollerFromConfig(cfg, dialer, log)
	if err != nil {
		return nil, nil, err
	}

	d, err := driver.New(cfg,
		driver.WithLogger(log.WithName("driver")),
		driver.WithDialer(dialer),
		driver.WithUsage(poller),
	)
	if err != nil {
		return nil, nil, err
	}
	return d, poller, nil
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
