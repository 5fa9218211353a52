package ssh

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/srxgate/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 2
	defaultRetryDelay  = time.Second
	defaultMaxDelay    = 5 * time.Second
	defaultCommand     = "junoscript"
)

// Config holds SSH transport configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string

	// PrivateKey is an optional PEM key tried before the password.
	PrivateKey []byte

	// DialTimeout bounds the TCP connect and SSH handshake.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the number of additional connection attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback verifies the appliance host key.
	// If nil, ssh.InsecureIgnoreHostKey() is used; see HostKeyCallback.
	HostKeyCallback ssh.HostKeyCallback

	// Command is the remote command starting the RPC shell.
	// If empty, "junoscript" is used.
	Command string
}

// Dialer opens junoscript channels. It implements junos.Dialer.
type Dialer struct {
	config *Config
	auth   []ssh.AuthMethod
}

// NewDialer validates cfg and returns a dialer.
func NewDialer(cfg *Config) (*Dialer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if cfg.Password == "" && len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config needs a password or a private key")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Pinning is opt-in via ssh_host_key
	}
	if configCopy.Command == "" {
		configCopy.Command = defaultCommand
	}

	var auth []ssh.AuthMethod
	if len(configCopy.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if configCopy.Password != "" {
		password := configCopy.Password
		auth = append(auth,
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	return &Dialer{config: &configCopy, auth: auth}, nil
}

// HostKeyCallback pins the host key given in authorized_keys format. An empty
// key disables verification.
func HostKeyCallback(authorizedKey string) (ssh.HostKeyCallback, error) {
	if authorizedKey == "" {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // Explicitly unpinned
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(authorizedKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse host key: %w", err)
	}
	return ssh.FixedHostKey(pub), nil
}

// Dial connects, authenticates and starts the RPC shell.
func (d *Dialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	client, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}

	ch, err := d.startShell(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return ch, nil
}

// connect establishes the SSH connection with retry logic.
func (d *Dialer) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User:            d.config.User,
		Auth:            d.auth,
		HostKeyCallback: d.config.HostKeyCallback,
		Timeout:         d.config.DialTimeout,
	}

	addr := net.JoinHostPort(d.config.Host, strconv.Itoa(d.config.Port))
	var client *ssh.Client

	err := retry.WithExponentialBackoff(ctx, func() error {
		nd := net.Dialer{Timeout: d.config.DialTimeout}
		conn, err := nd.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		_ = conn.SetDeadline(time.Now().Add(d.config.DialTimeout))
		c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
		if err != nil {
			_ = conn.Close()
			return err
		}
		_ = conn.SetDeadline(time.Time{})
		client = ssh.NewClient(c, chans, reqs)
		return nil
	},
		retry.WithMaxRetries(d.config.MaxRetries),
		retry.WithInitialDelay(d.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return client, nil
}

func (d *Dialer) startShell(client *ssh.Client) (*channel, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH session on %s: %w", d.config.Host, err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to open stdin: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to open stdout: %w", err)
	}

	if err := session.Start(d.config.Command); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to start %q on %s: %w", d.config.Command, d.config.Host, err)
	}

	return &channel{client: client, session: session, stdin: stdin, stdout: stdout}, nil
}

// channel is the RPC shell's stdin/stdout as one stream.
type channel struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader
}

func (c *channel) Read(p []byte) (int, error) {
	return c.stdout.Read(p)
}

func (c *channel) Write(p []byte) (int, error) {
	return c.stdin.Write(p)
}

func (c *channel) Close() error {
	_ = c.stdin.Close()
	_ = c.session.Close()
	return c.client.Close()
}
