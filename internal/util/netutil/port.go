// Package netutil provides TCP reachability checks.
package netutil

import (
	"context"
	"fmt"
	"net"
	"time"
)

// ProbeTimeout bounds a single connection attempt.
const ProbeTimeout = 2 * time.Second

// Probe dials address once.
func Probe(ctx context.Context, address string) error {
	d := net.Dialer{Timeout: ProbeTimeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return conn.Close()
}

// WaitForPort waits for address to accept TCP connections.
// It retries every second until the port is accessible or the timeout is reached.
func WaitForPort(ctx context.Context, address string, timeout time.Duration) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if Probe(ctx, address) == nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
			if Probe(ctx, address) == nil {
				return nil
			}
		}
	}
}
