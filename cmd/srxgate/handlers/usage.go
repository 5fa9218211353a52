package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/srxgate/internal/ui/tui"
	"github.com/imamik/srxgate/internal/usage"
)

// Usage polls the usage counters once, or keeps polling with watch.
func Usage(ctx context.Context, configPath string, watch, jsonOutput bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	_, poller, err := newDriver(ctx, cfg)
	if err != nil {
		return err
	}

	if watch {
		// Use TUI for interactive terminals (unless JSON output requested)
		if !jsonOutput && isInteractiveTTY() {
			return tui.RunUsageTUI(ctx, poller, cfg.Appliance.Address, cfg.Usage.PollInterval)
		}
		return usageWatch(ctx, os.Stdout, poller, cfg.Appliance.Address, cfg.Usage.PollInterval, jsonOutput)
	}

	return usageShow(ctx, os.Stdout, poller, cfg.Appliance.Address, jsonOutput)
}

func usageShow(ctx context.Context, w io.Writer, src tui.SnapshotSource, appliance string, jsonOutput bool) error {
	snap, err := src.Poll(ctx)
	if err != nil {
		return err
	}
	return printSnapshot(w, appliance, snap, jsonOutput)
}

// usageWatch prints one snapshot per interval until ctx is done. Failed
// polls are logged and do not end the watch.
func usageWatch(ctx context.Context, w io.Writer, src tui.SnapshotSource, appliance string, interval time.Duration, jsonOutput bool) error {
	log := logr.FromContextOrDiscard(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := usageShow(ctx, w, src, appliance, jsonOutput); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error(err, "usage poll failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printSnapshot(w io.Writer, appliance string, snap *usage.Snapshot, jsonOutput bool) error {
	if jsonOutput {
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			return fmt.Errorf("failed to encode usage: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprint(w, tui.RenderUsage(appliance, snap))
	return err
}
