package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/util/netutil"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP API and the usage poller until ctx is cancelled.
func Serve(ctx context.Context, configPath, listen string, wait time.Duration) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if wait > 0 {
		logr.FromContextOrDiscard(ctx).Info("waiting for appliance", "endpoint", cfg.Appliance.Endpoint(), "timeout", wait.String())
		if err := netutil.WaitForPort(ctx, cfg.Appliance.Endpoint(), wait); err != nil {
			return fmt.Errorf("appliance not reachable: %w", err)
		}
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listen, err)
	}
	return serve(ctx, cfg, ln)
}

// serve owns ln and closes it on return.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	log := logr.FromContextOrDiscard(ctx)

	d, poller, err := newDriver(ctx, cfg)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Error(err, "failed to close appliance session")
		}
	}()

	srv := &http.Server{
		Handler:           newServer(d, poller, log.WithName("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(gctx)
	})

	g.Go(func() error {
		log.Info("serving", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
