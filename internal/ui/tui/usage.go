package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/srxgate/internal/usage"
)

// SnapshotSource polls the usage counters. *usage.Poller implements it.
type SnapshotSource interface {
	Poll(ctx context.Context) (*usage.Snapshot, error)
}

// RunUsageTUI polls src every interval and shows the counters until the
// user quits or ctx is cancelled.
func RunUsageTUI(ctx context.Context, src SnapshotSource, appliance string, interval time.Duration) error {
	m := NewUsageModel(appliance, interval)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.Send(poll(ctx, src, interval))

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Send(poll(ctx, src, interval))
			}
		}
	}()

	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	return fm.Err
}

func poll(ctx context.Context, src SnapshotSource, timeout time.Duration) SnapshotMsg {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	snap, err := src.Poll(pollCtx)
	return SnapshotMsg{Snapshot: snap, Err: err}
}
