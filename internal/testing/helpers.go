package testing

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/testing/appliance"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestLogger returns a logger writing through t.Log.
func TestLogger(t *testing.T) logr.Logger {
	return testr.NewWithOptions(t, testr.Options{Verbosity: 1})
}

// ApplianceFixture is a fake appliance reached over in-memory pipes.
type ApplianceFixture struct {
	Server *appliance.Server
}

// NewApplianceFixture starts a fake appliance that is closed with the test.
func NewApplianceFixture(t *testing.T) *ApplianceFixture {
	t.Helper()
	srv := appliance.New()
	t.Cleanup(func() { _ = srv.Close() })
	return &ApplianceFixture{Server: srv}
}

// Dialer returns a dialer handing out a fresh pipe per connection.
func (f *ApplianceFixture) Dialer() junos.Dialer {
	return junos.DialerFunc(func(context.Context) (io.ReadWriteCloser, error) {
		client, server := net.Pipe()
		go f.Server.Serve(server)
		return client, nil
	})
}

// Client returns a logged-in client closed with the test.
func (f *ApplianceFixture) Client(t *testing.T, opts ...junos.Option) *junos.Client {
	t.Helper()
	opts = append([]junos.Option{
		junos.WithCredentials("admin", "secret"),
		junos.WithReadTimeout(2 * time.Second),
	}, opts...)
	c := junos.NewClient(f.Dialer(), opts...)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Transaction returns a client holding an open candidate configuration.
func (f *ApplianceFixture) Transaction(t *testing.T) *junos.Client {
	t.Helper()
	c := f.Client(t)
	require.NoError(t, c.OpenConfiguration(context.Background()))
	return c
}
