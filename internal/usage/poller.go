package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/platform/junos"
)

const countersRPC = "<get-firewall-filter-information/>"

// Snapshot is the result of one poll.
type Snapshot struct {
	Time  time.Time `json:"time"`
	Usage Totals    `json:"usage"`
}

// Caller runs operational RPCs. *junos.Client implements it.
type Caller interface {
	Connect(ctx context.Context) error
	Call(ctx context.Context, op, body string) (string, error)
	Close() error
}

// Poller reads the usage counters over its own session.
type Poller struct {
	client   Caller
	interval time.Duration
	archive  Archiver
	log      logr.Logger
	now      func() time.Time

	// mu serializes polls on the session.
	mu     sync.Mutex
	latest *Snapshot
	latMu  sync.RWMutex
}

// Option configures a Poller.
type Option func(*Poller)

// WithArchive stores every successful snapshot.
func WithArchive(a Archiver) Option {
	return func(p *Poller) {
		p.archive = a
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(p *Poller) {
		p.log = log
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}

// NewPoller returns a poller over client.
func NewPoller(client Caller, interval time.Duration, opts ...Option) *Poller {
	p := &Poller{
		client:   client,
		interval: interval,
		log:      logr.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPollerFromConfig builds the usage session and the optional archive.
func NewPollerFromConfig(cfg *config.Config, dialer junos.Dialer, log logr.Logger) (*Poller, error) {
	client := junos.NewClient(dialer,
		junos.WithCredentials(cfg.Appliance.Username, cfg.Appliance.Password),
		junos.WithReadTimeout(cfg.Timeouts.Read),
		junos.WithLogger(log),
		junos.WithName("usage"),
	)
	archive, err := NewArchiveFromConfig(cfg.Usage.Archive)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage archive: %w", err)
	}
	opts := []Option{WithLogger(log.WithName("usage"))}
	if archive != nil {
		opts = append(opts, WithArchive(archive))
	}
	return NewPoller(client, cfg.Usage.PollInterval, opts...), nil
}

// Poll opens the session, reads every counter and closes the session again.
// Archive failures are logged; the snapshot is still returned.
func (p *Poller) Poll(ctx context.Context) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	totals, err := p.read(ctx)
	recordPoll(totals, err)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{Time: p.now().UTC(), Usage: totals}
	p.latMu.Lock()
	p.latest = s
	p.latMu.Unlock()

	if p.archive != nil {
		if err := p.archive.Archive(ctx, s); err != nil {
			p.log.Error(err, "failed to archive usage snapshot")
		}
	}
	p.log.V(1).Info("usage polled", "keys", len(totals))
	return s, nil
}

func (p *Poller) read(ctx context.Context) (Totals, error) {
	if err := p.client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to open usage session: %w", err)
	}
	defer func() { _ = p.client.Close() }()

	reply, err := p.client.Call(ctx, "counters", countersRPC)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage counters: %w", err)
	}
	return Parse(reply, p.log)
}

// Latest returns the last successful snapshot, or nil before the first.
func (p *Poller) Latest() *Snapshot {
	p.latMu.RLock()
	defer p.latMu.RUnlock()
	return p.latest
}

// Run polls immediately and then on every interval until ctx is done.
// Failed polls are logged and retried at the next tick.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.Poll(ctx); err != nil {
			p.log.Error(err, "usage poll failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
