package junos

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// State is the RPC envelope state.
type State int

const (
	StateDisconnected State = iota
	StateLoggedIn
	StateConfigOpen
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateLoggedIn:
		return "logged-in"
	case StateConfigOpen:
		return "config-open"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Client is the RPC envelope over one Session. It is not safe for concurrent
// use; callers serialize access (the candidate configuration is a
// session-wide critical section anyway).
type Client struct {
	dialer      Dialer
	username    string
	password    string
	readTimeout time.Duration
	log         logr.Logger
	name        string

	session *Session
	state   State
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the login credentials.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithReadTimeout sets the per-read timeout of the session.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.readTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithName labels the session in logs ("primary", "usage").
func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

// NewClient returns a disconnected client.
func NewClient(dialer Dialer, opts ...Option) *Client {
	c := &Client{
		dialer:      dialer,
		readTimeout: DefaultReadTimeout,
		log:         logr.Discard(),
		name:        "primary",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithValues("session", c.name)
	return c
}

// State returns the current envelope state.
func (c *Client) State() State {
	return c.state
}

// Connect opens a fresh session and logs in. Any previous session is closed
// first, so Connect doubles as reconnect.
func (c *Client) Connect(ctx context.Context) error {
	c.drop()

	session, err := Open(ctx, c.dialer, c.readTimeout)
	if err != nil {
		return err
	}
	c.session = session

	if err := c.login(ctx); err != nil {
		c.drop()
		return err
	}
	c.log.V(1).Info("logged in", "user", c.username)
	return nil
}

func (c *Client) login(ctx context.Context) error {
	resp, err := c.send(ctx, "login", loginRequest(c.username, c.password))
	if err != nil {
		return err
	}
	if !contains(resp, markerLoginSuccess) {
		return &ExecutionError{Op: "login", Message: errorMessage(resp)}
	}
	c.state = StateLoggedIn
	return nil
}

// OpenConfiguration opens a private candidate configuration.
func (c *Client) OpenConfiguration(ctx context.Context) error {
	switch c.state {
	case StateDisconnected:
		return ErrNotConnected
	case StateConfigOpen:
		return ErrConfigAlreadyOpen
	}

	resp, err := c.send(ctx, "open", openConfigurationRequest())
	if err != nil {
		return err
	}
	if hasError(resp) {
		return &ExecutionError{Op: "open-configuration", Message: errorMessage(resp)}
	}
	c.state = StateConfigOpen
	return nil
}

// Load merges a configuration fragment into the open candidate.
func (c *Client) Load(ctx context.Context, config string) error {
	if c.state != StateConfigOpen {
		return ErrConfigNotOpen
	}

	resp, err := c.send(ctx, "load", loadRequest(config))
	if err != nil {
		return err
	}
	if hasError(resp) || !contains(resp, markerLoadSuccess) {
		return &ExecutionError{Op: "load-configuration", Message: errorMessage(resp)}
	}
	return nil
}

// Get returns the candidate configuration matching filter.
func (c *Client) Get(ctx context.Context, filter string) (string, error) {
	if c.state == StateDisconnected {
		return "", ErrNotConnected
	}

	resp, err := c.send(ctx, "get", getConfigurationRequest(filter))
	if err != nil {
		return "", err
	}
	if hasError(resp) {
		return "", &ExecutionError{Op: "get-configuration", Message: errorMessage(resp)}
	}
	return resp, nil
}

// Call sends an arbitrary operational RPC body (without the <rpc> wrapper).
func (c *Client) Call(ctx context.Context, op, body string) (string, error) {
	if c.state == StateDisconnected {
		return "", ErrNotConnected
	}

	resp, err := c.send(ctx, op, rpc(body))
	if err != nil {
		return "", err
	}
	if hasError(resp) {
		return "", &ExecutionError{Op: op, Message: errorMessage(resp)}
	}
	return resp, nil
}

// Commit commits the candidate and closes it. On failure the candidate stays
// open and the caller must Rollback.
func (c *Client) Commit(ctx context.Context) error {
	if c.state != StateConfigOpen {
		return ErrConfigNotOpen
	}

	resp, err := c.send(ctx, "commit", commitRequest())
	if err != nil {
		return err
	}
	if hasError(resp) || !contains(resp, markerCommitSuccess) {
		return &ExecutionError{Op: "commit", Message: errorMessage(resp)}
	}

	return c.closeConfiguration(ctx)
}

// Rollback discards the open candidate. It never fails: errors are logged
// because the caller is already unwinding from an earlier one.
func (c *Client) Rollback(ctx context.Context) {
	if c.state != StateConfigOpen {
		return
	}
	if err := c.closeConfiguration(ctx); err != nil {
		c.log.Error(err, "rollback failed")
		if c.state == StateConfigOpen {
			c.state = StateLoggedIn
		}
	}
}

func (c *Client) closeConfiguration(ctx context.Context) error {
	resp, err := c.send(ctx, "close", closeConfigurationRequest())
	if err != nil {
		return err
	}
	c.state = StateLoggedIn
	if hasError(resp) {
		return &ExecutionError{Op: "close-configuration", Message: errorMessage(resp)}
	}
	return nil
}

// Close ends the session politely when possible.
func (c *Client) Close() error {
	if c.session == nil {
		return nil
	}
	c.Rollback(context.Background())
	if c.session == nil {
		return nil
	}
	if c.state != StateDisconnected {
		_, _ = c.session.Send(context.Background(), "end-session", endSessionRequest())
	}
	err := c.session.Close()
	c.session = nil
	c.state = StateDisconnected
	return err
}

func (c *Client) drop() {
	if c.session != nil {
		_ = c.session.Close()
		c.session = nil
	}
	c.state = StateDisconnected
}

// send performs one round trip, recording metrics. Transport failures leave
// the client disconnected.
func (c *Client) send(ctx context.Context, op, request string) (string, error) {
	if c.session == nil {
		return "", &TransportError{Op: op, Err: ErrNotConnected}
	}

	start := time.Now()
	resp, err := c.session.Send(ctx, op, request)
	recordRPC(op, err, time.Since(start))
	if err != nil {
		c.drop()
		return "", err
	}
	c.log.V(2).Info("rpc", "op", op, "request", redact(request), "response", redact(resp))
	return resp, nil
}
