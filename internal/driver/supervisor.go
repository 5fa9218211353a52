package driver

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/util/retry"
)

const maxRetryDelayFactor = 8

// transaction is one attempt at a command inside an open candidate.
type transaction func(ctx context.Context, exec junos.Executor) ([]string, error)

// supervise runs fn in a candidate transaction. Every failed attempt is
// rolled back; before the next attempt the session is re-established. A
// reconnect failure ends supervision with that error.
func (d *Driver) supervise(ctx context.Context, kind v1alpha1.CommandKind, fn transaction) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log := logr.FromContextOrDiscard(ctx)
	var details []string

	attempt := func() error {
		if d.client.State() == junos.StateDisconnected {
			if err := d.client.Connect(ctx); err != nil {
				return err
			}
		}
		if err := d.client.OpenConfiguration(ctx); err != nil {
			return err
		}

		out, err := fn(ctx, d.client)
		if err == nil {
			err = d.client.Commit(ctx)
		}
		if err != nil {
			d.client.Rollback(ctx)
			return err
		}
		details = out
		return nil
	}

	delay := d.cfg.Retry.Delay
	err := retry.WithExponentialBackoff(ctx, attempt,
		retry.WithMaxRetries(d.cfg.Retry.Retries()),
		retry.WithInitialDelay(delay),
		retry.WithMaxDelay(delay*maxRetryDelayFactor),
		retry.WithOnRetry(func(n int, err error) error {
			commandRetries.WithLabelValues(string(kind)).Inc()
			log.Info("attempt failed, reconnecting", "attempt", n, "error", err.Error())
			if cerr := d.client.Connect(ctx); cerr != nil {
				return retry.Fatal(fmt.Errorf("failed to reconnect: %w", cerr))
			}
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return details, nil
}
