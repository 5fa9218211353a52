package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/orchestration"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/usage"
)

// ErrUsageDisabled is returned for GetUsage when no poller is attached.
var ErrUsageDisabled = errors.New("usage accounting is not configured")

// UsageSource answers GetUsage. *usage.Poller implements it.
type UsageSource interface {
	Poll(ctx context.Context) (*usage.Snapshot, error)
}

// Driver executes commands against one appliance.
type Driver struct {
	cfg    *config.Config
	log    logr.Logger
	dialer junos.Dialer
	orch   *orchestration.Orchestrator
	usage  UsageSource

	// mu guards the primary session: one candidate configuration at a time.
	mu     sync.Mutex
	client *junos.Client
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(d *Driver) {
		d.log = log
	}
}

// WithDialer replaces the dialer derived from the configuration.
func WithDialer(dialer junos.Dialer) Option {
	return func(d *Driver) {
		d.dialer = dialer
	}
}

// WithUsage attaches the source answering GetUsage.
func WithUsage(u UsageSource) Option {
	return func(d *Driver) {
		d.usage = u
	}
}

// New returns a driver. The primary session is opened by the first command.
func New(cfg *config.Config, opts ...Option) (*Driver, error) {
	d := &Driver{
		cfg:  cfg,
		log:  logr.Discard(),
		orch: orchestration.New(cfg),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.dialer == nil {
		dialer, err := NewDialer(cfg)
		if err != nil {
			return nil, err
		}
		d.dialer = dialer
	}
	d.client = d.newClient("primary")
	return d, nil
}

// Dialer returns the dialer sessions are opened with.
func (d *Driver) Dialer() junos.Dialer {
	return d.dialer
}

func (d *Driver) newClient(name string) *junos.Client {
	return junos.NewClient(d.dialer,
		junos.WithCredentials(d.cfg.Appliance.Username, d.cfg.Appliance.Password),
		junos.WithReadTimeout(d.cfg.Timeouts.Read),
		junos.WithLogger(d.log),
		junos.WithName(name),
	)
}

// Execute runs cmd and reports the outcome. It never returns a partial
// success: either the whole command is committed or nothing is.
func (d *Driver) Execute(ctx context.Context, cmd v1alpha1.Command) v1alpha1.Answer {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	log := d.log.WithValues("command", string(cmd.Kind), "id", cmd.ID)
	ctx = logr.NewContext(ctx, log)
	start := time.Now()

	answer := d.execute(ctx, &cmd)
	recordCommand(string(cmd.Kind), answer.Success)

	if answer.Success {
		log.Info("command succeeded", "duration", time.Since(start).String(), "details", len(answer.Details))
	} else {
		log.Info("command failed", "duration", time.Since(start).String(), "error", answer.Error)
	}
	return answer
}

func (d *Driver) execute(ctx context.Context, cmd *v1alpha1.Command) v1alpha1.Answer {
	if err := cmd.Validate(); err != nil {
		return v1alpha1.Failed(cmd.ID, fmt.Errorf("invalid command: %w", err))
	}

	if cmd.Kind == v1alpha1.KindGetUsage {
		if d.usage == nil {
			return v1alpha1.Failed(cmd.ID, ErrUsageDisabled)
		}
		s, err := d.usage.Poll(ctx)
		if err != nil {
			return v1alpha1.Failed(cmd.ID, err)
		}
		a := v1alpha1.Succeeded(cmd.ID)
		a.Usage = s.Usage
		return a
	}

	details, err := d.supervise(ctx, cmd.Kind, func(ctx context.Context, exec junos.Executor) ([]string, error) {
		return d.dispatch(ctx, exec, cmd)
	})
	if err != nil {
		return v1alpha1.Failed(cmd.ID, err)
	}
	return v1alpha1.Succeeded(cmd.ID, details...)
}

// Ping logs in on a fresh session and ends it again.
func (d *Driver) Ping(ctx context.Context) error {
	c := d.newClient("ping")
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Close()
}

// Close ends the primary session.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.client.Close()
}
